package vibrator_test

import (
	"testing"

	"github.com/micro-nova/hapticd/internal/vibrator"
)

func TestStrengthMagnitude(t *testing.T) {
	tests := []struct {
		s    vibrator.Strength
		want int16
	}{
		{vibrator.StrengthLight, vibrator.LightMagnitude},
		{vibrator.StrengthMedium, vibrator.MediumMagnitude},
		{vibrator.StrengthStrong, vibrator.StrongMagnitude},
		{vibrator.Strength(3), 0},
		{vibrator.Strength(255), 0},
	}
	for _, tt := range tests {
		if got := tt.s.Magnitude(); got != tt.want {
			t.Errorf("%v.Magnitude() = %#x, want %#x", tt.s, got, tt.want)
		}
	}
	if !(vibrator.LightMagnitude < vibrator.MediumMagnitude && vibrator.MediumMagnitude < vibrator.StrongMagnitude) {
		t.Error("strength magnitudes are not increasing")
	}
}

func TestParseStrength(t *testing.T) {
	for _, name := range []string{"light", "Medium", "STRONG"} {
		s, ok := vibrator.ParseStrength(name)
		if !ok {
			t.Errorf("ParseStrength(%q) not ok", name)
			continue
		}
		if _, ok := vibrator.ParseStrength(s.String()); !ok {
			t.Errorf("String() of %q does not parse back", name)
		}
	}
	if _, ok := vibrator.ParseStrength("extreme"); ok {
		t.Error("ParseStrength(extreme) ok, want false")
	}
}

func TestCatalogRanges(t *testing.T) {
	tests := []struct {
		c        vibrator.Catalog
		min, max int16
	}{
		{vibrator.CatalogV1_0, 0, 1},
		{vibrator.CatalogV1_1, 0, 2},
		{vibrator.CatalogV1_2, 0, 20},
	}
	for _, tt := range tests {
		if tt.c.Min != tt.min || tt.c.Max != tt.max {
			t.Errorf("catalog %s = [%d, %d], want [%d, %d]", tt.c.Name, tt.c.Min, tt.c.Max, tt.min, tt.max)
		}
		if tt.c.Contains(tt.min-1) || tt.c.Contains(tt.max+1) {
			t.Errorf("catalog %s contains ids outside its range", tt.c.Name)
		}
		if !tt.c.Contains(tt.min) || !tt.c.Contains(tt.max) {
			t.Errorf("catalog %s does not contain its bounds", tt.c.Name)
		}
	}
}

func TestCatalogByName(t *testing.T) {
	c, ok := vibrator.CatalogByName("1.1")
	if !ok || c != vibrator.CatalogV1_1 {
		t.Errorf("CatalogByName(1.1) = %+v, %v", c, ok)
	}
	c, ok = vibrator.CatalogByName("")
	if !ok || c != vibrator.CatalogV1_2 {
		t.Errorf("CatalogByName(\"\") = %+v, want latest", c)
	}
	if _, ok := vibrator.CatalogByName("2.0"); ok {
		t.Error("CatalogByName(2.0) ok, want false")
	}
}

func TestAmplitudeToMagnitude_Bounds(t *testing.T) {
	if got := vibrator.AmplitudeToMagnitude(255); got != vibrator.StrongMagnitude {
		t.Errorf("AmplitudeToMagnitude(255) = %d, want %d", got, vibrator.StrongMagnitude)
	}
	prev := vibrator.AmplitudeToMagnitude(1)
	for a := 2; a <= 255; a++ {
		got := vibrator.AmplitudeToMagnitude(uint8(a))
		if got < prev {
			t.Fatalf("AmplitudeToMagnitude(%d) = %d < previous %d", a, got, prev)
		}
		prev = got
	}
}
