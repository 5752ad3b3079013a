package vibrator

import "strings"

// Hardware magnitude range. Strength levels and the amplitude mapping both
// land in [LightMagnitude, StrongMagnitude].
const (
	LightMagnitude  int16 = 0x3fff
	MediumMagnitude int16 = 0x5fff
	StrongMagnitude int16 = 0x7fff
)

// Strength is the requested intensity of a predefined effect.
type Strength uint8

const (
	StrengthLight Strength = iota
	StrengthMedium
	StrengthStrong
)

// Magnitude resolves s to a hardware magnitude. Unknown strengths resolve
// to 0, which is always rejected.
func (s Strength) Magnitude() int16 {
	switch s {
	case StrengthLight:
		return LightMagnitude
	case StrengthMedium:
		return MediumMagnitude
	case StrengthStrong:
		return StrongMagnitude
	}
	return 0
}

func (s Strength) String() string {
	switch s {
	case StrengthLight:
		return "light"
	case StrengthMedium:
		return "medium"
	case StrengthStrong:
		return "strong"
	}
	return "unknown"
}

// ParseStrength maps a name to a Strength. ok is false for unknown names.
func ParseStrength(name string) (Strength, bool) {
	switch strings.ToLower(name) {
	case "light":
		return StrengthLight, true
	case "medium":
		return StrengthMedium, true
	case "strong":
		return StrengthStrong, true
	}
	return 0, false
}

// Predefined effect ids understood by the kernel driver.
const (
	EffectClick int16 = iota
	EffectDoubleClick
	EffectTick
	EffectThud
	EffectPop
	EffectHeavyClick
	EffectRingtone1
	EffectRingtone2
	EffectRingtone3
	EffectRingtone4
	EffectRingtone5
	EffectRingtone6
	EffectRingtone7
	EffectRingtone8
	EffectRingtone9
	EffectRingtone10
	EffectRingtone11
	EffectRingtone12
	EffectRingtone13
	EffectRingtone14
	EffectRingtone15
)

// Catalog is one revision of the predefined effect library. Revisions only
// differ in the range of valid effect ids.
type Catalog struct {
	Name     string
	Min, Max int16
}

// Contains reports whether id is a valid effect in c.
func (c Catalog) Contains(id int16) bool {
	return id >= c.Min && id <= c.Max
}

var (
	CatalogV1_0 = Catalog{Name: "1.0", Min: EffectClick, Max: EffectDoubleClick}
	CatalogV1_1 = Catalog{Name: "1.1", Min: EffectClick, Max: EffectTick}
	CatalogV1_2 = Catalog{Name: "1.2", Min: EffectClick, Max: EffectRingtone15}
)

// Catalogs lists the supported revisions, oldest first.
var Catalogs = []Catalog{CatalogV1_0, CatalogV1_1, CatalogV1_2}

// CatalogByName returns the revision with the given name. An empty name
// selects the latest revision.
func CatalogByName(name string) (Catalog, bool) {
	if name == "" {
		return Catalogs[len(Catalogs)-1], true
	}
	for _, c := range Catalogs {
		if c.Name == name {
			return c, true
		}
	}
	return Catalog{}, false
}

// AmplitudeToMagnitude maps an 8-bit amplitude linearly onto the magnitude
// range. Amplitude 0 has no representation and must be rejected by callers.
func AmplitudeToMagnitude(amplitude uint8) int16 {
	span := int(StrongMagnitude) - int(LightMagnitude)
	return LightMagnitude + int16(int(amplitude)*span/255)
}
