package hardware_test

import (
	"context"
	"errors"
	"testing"

	"github.com/micro-nova/hapticd/internal/hardware"
)

var fullCaps = hardware.Capabilities{AmplitudeControl: true, PredefinedEffects: true}

func TestMock_InstallAssignsIncreasingIDs(t *testing.T) {
	m := hardware.NewMock(fullCaps)
	ctx := context.Background()

	id1, err := m.InstallOrUpdate(ctx, hardware.ConstantEffect(100, 10))
	if err != nil {
		t.Fatalf("InstallOrUpdate: %v", err)
	}
	id2, err := m.InstallOrUpdate(ctx, hardware.ConstantEffect(100, 10))
	if err != nil {
		t.Fatalf("InstallOrUpdate: %v", err)
	}
	if id1 == hardware.NoSlot || id2 == id1 {
		t.Errorf("ids = %d, %d; want distinct valid ids", id1, id2)
	}
	if n := len(m.Installed()); n != 2 {
		t.Errorf("Installed() = %d slots, want 2", n)
	}
}

func TestMock_UpdateInPlace(t *testing.T) {
	m := hardware.NewMock(fullCaps)
	ctx := context.Background()

	id, _ := m.InstallOrUpdate(ctx, hardware.ConstantEffect(100, 10))
	eff := hardware.ConstantEffect(200, 20)
	eff.ID = id
	got, err := m.InstallOrUpdate(ctx, eff)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got != id {
		t.Errorf("update returned %d, want %d", got, id)
	}
	if n := len(m.Installed()); n != 1 {
		t.Errorf("Installed() = %d slots, want 1", n)
	}

	eff = hardware.ConstantEffect(200, 20)
	eff.ID = 42
	if _, err := m.InstallOrUpdate(ctx, eff); !errors.Is(err, hardware.ErrUnknownSlot) {
		t.Errorf("update unknown slot err = %v, want ErrUnknownSlot", err)
	}
}

func TestMock_WritesPlayLength(t *testing.T) {
	m := hardware.NewMock(fullCaps)
	m.SetPlayLength(2500)

	eff := hardware.PredefinedEffect(1, 0x5fff)
	if _, err := m.InstallOrUpdate(context.Background(), eff); err != nil {
		t.Fatalf("InstallOrUpdate: %v", err)
	}
	if got := eff.Custom.PlayLength(); got != 2500 {
		t.Errorf("PlayLength() = %d, want 2500", got)
	}
	// The recorded call keeps the payload as sent.
	calls := m.Calls()
	if calls[0].Effect.Custom.PlayLength() != 0 {
		t.Errorf("recorded payload was modified: %v", *calls[0].Effect.Custom)
	}
}

func TestMock_RemoveUnknownSlot(t *testing.T) {
	m := hardware.NewMock(fullCaps)
	err := m.Remove(context.Background(), 3)
	if !errors.Is(err, hardware.ErrUnknownSlot) {
		t.Fatalf("Remove(unknown) err = %v, want ErrUnknownSlot", err)
	}
	var devErr *hardware.DeviceError
	if !errors.As(err, &devErr) || devErr.Op != "remove" {
		t.Errorf("Remove(unknown) err = %#v, want *DeviceError{Op: remove}", err)
	}
}

func TestMock_TriggerAndRemove(t *testing.T) {
	m := hardware.NewMock(fullCaps)
	ctx := context.Background()

	id, _ := m.InstallOrUpdate(ctx, hardware.ConstantEffect(100, 10))
	if err := m.Trigger(ctx, id); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if !m.Playing(id) {
		t.Error("Playing() = false after Trigger")
	}
	if err := m.Remove(ctx, id); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if m.Playing(id) {
		t.Error("Playing() = true after Remove")
	}
	if err := m.Trigger(ctx, id); !errors.Is(err, hardware.ErrUnknownSlot) {
		t.Errorf("Trigger(removed) err = %v, want ErrUnknownSlot", err)
	}
}

func TestMock_FailInjection(t *testing.T) {
	m := hardware.NewMock(fullCaps)
	ctx := context.Background()

	m.SetFail(hardware.OpGain, true)
	if err := m.SetGain(ctx, 10); !errors.Is(err, hardware.ErrInjected) {
		t.Errorf("SetGain err = %v, want ErrInjected", err)
	}
	if m.Gain() != 0 {
		t.Errorf("Gain() = %d after failed SetGain, want 0", m.Gain())
	}

	m.SetFail(hardware.OpGain, false)
	if err := m.SetGain(ctx, 10); err != nil {
		t.Errorf("SetGain after clearing failure: %v", err)
	}
	if m.Gain() != 10 {
		t.Errorf("Gain() = %d, want 10", m.Gain())
	}
	if n := m.CallCount(hardware.OpGain); n != 2 {
		t.Errorf("CallCount(gain) = %d, want 2", n)
	}

	m.ResetCalls()
	if n := len(m.Calls()); n != 0 {
		t.Errorf("Calls() after ResetCalls = %d, want 0", n)
	}
}

func TestMock_IsReal(t *testing.T) {
	m := hardware.NewMock(hardware.Capabilities{})
	if m.IsReal() {
		t.Error("Mock.IsReal() = true, want false")
	}
	if m.Capabilities() != (hardware.Capabilities{}) {
		t.Errorf("Capabilities() = %+v", m.Capabilities())
	}
}
