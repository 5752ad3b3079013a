// Package hardware provides the device channel for the haptic actuator.
// It defines the Channel interface and the effect descriptors used by both
// the real evdev channel and the mock channel.
package hardware

import "context"

// SlotID identifies an effect slot installed in the kernel driver.
type SlotID int16

// NoSlot marks the absence of an installed slot. Passing it to
// InstallOrUpdate asks the driver to allocate a new slot.
const NoSlot SlotID = -1

// EffectKind selects how an effect is encoded for the driver.
type EffectKind int

const (
	// EffectConstant is a fixed-magnitude, fixed-duration vibration.
	EffectConstant EffectKind = iota
	// EffectPredefined is a driver-defined waveform selected by catalog id.
	// The driver reports its real duration through the custom data.
	EffectPredefined
)

func (k EffectKind) String() string {
	switch k {
	case EffectConstant:
		return "constant"
	case EffectPredefined:
		return "predefined"
	}
	return "unknown"
}

// Effect describes one effect to program into the hardware.
type Effect struct {
	ID        SlotID // slot to update, or NoSlot for a new one
	Kind      EffectKind
	Magnitude int16
	LengthMs  uint32      // constant effects only
	Custom    *CustomData // predefined effects only; written back by the driver
}

// ConstantEffect builds a constant-force effect descriptor.
func ConstantEffect(magnitude int16, lengthMs uint32) *Effect {
	return &Effect{
		ID:        NoSlot,
		Kind:      EffectConstant,
		Magnitude: magnitude,
		LengthMs:  lengthMs,
	}
}

// PredefinedEffect builds a custom-waveform effect descriptor carrying the
// catalog id in its custom data.
func PredefinedEffect(effectID, magnitude int16) *Effect {
	return &Effect{
		ID:        NoSlot,
		Kind:      EffectPredefined,
		Magnitude: magnitude,
		Custom:    NewCustomData(effectID),
	}
}

// Capabilities are discovered once when the channel is opened.
type Capabilities struct {
	AmplitudeControl  bool // FF_GAIN
	PredefinedEffects bool // FF_CUSTOM
}

// Channel is the only way to issue control requests to the actuator.
// Errors are returned as *DeviceError and never retried by the channel
// beyond the EINTR retry at the syscall boundary.
type Channel interface {
	// InstallOrUpdate programs eff into the hardware and returns the slot id
	// assigned or updated by the driver. For predefined effects the driver
	// writes the play length back into eff.Custom.
	InstallOrUpdate(ctx context.Context, eff *Effect) (SlotID, error)

	// Remove releases a previously installed slot. Unknown ids are an error.
	Remove(ctx context.Context, id SlotID) error

	// Trigger starts playback of an installed slot.
	Trigger(ctx context.Context, id SlotID) error

	// SetGain sets the channel-wide gain, independent of any slot.
	SetGain(ctx context.Context, gain uint16) error

	// Capabilities returns the capability flags discovered at open time.
	Capabilities() Capabilities

	// IsReal returns true for a real device, false for a mock.
	IsReal() bool
}
