// Package vibrator implements the effect controller: the state machine that
// owns the single hardware effect slot of a vibrator and turns on/off,
// amplitude and predefined-effect requests into device channel operations.
//
// A controller is either Idle (no slot installed) or Playing (a slot has
// been installed and triggered). Every device failure collapses it back to
// Idle, so after any call returns either a slot is cleanly installed and
// triggered or none is.
package vibrator

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/micro-nova/hapticd/internal/config"
	"github.com/micro-nova/hapticd/internal/events"
	"github.com/micro-nova/hapticd/internal/hardware"
	"github.com/micro-nova/hapticd/internal/models"
)

// Version is reported in the state info.
const Version = "1.2.0"

// noEffect marks an empty pending effect.
const noEffect int16 = -1

// predefinedDuration is passed to play for predefined effects. Any non-zero
// value works: the length comes back from the driver.
const predefinedDuration uint32 = math.MaxUint32

// Controller drives one haptic actuator. All public operations are
// serialized by mu and run to completion before the next one starts.
// Cancellation of the caller's context is not passed on to the channel: a
// device call abandoned halfway would leave a kernel slot the controller
// no longer tracks.
type Controller struct {
	mu    sync.Mutex
	ch    hardware.Channel
	caps  hardware.Capabilities
	store config.Store
	bus   *events.Bus
	info  models.Info

	slot          hardware.SlotID
	pendingEffect int16
	magnitude     int16
	amplitude     uint8
	playLengthMs  int64
}

// Option configures a Controller.
type Option func(*Controller)

// WithStore persists the amplitude set by clients and restores it at startup.
func WithStore(store config.Store) Option {
	return func(c *Controller) { c.store = store }
}

// WithBus publishes a state snapshot after every operation.
func WithBus(bus *events.Bus) Option {
	return func(c *Controller) { c.bus = bus }
}

// WithDevice records the device node in the state info.
func WithDevice(path string) Option {
	return func(c *Controller) { c.info.Device = path }
}

// New creates a controller for ch. Capabilities are read once and never
// change afterwards. When a store holds a saved amplitude it is programmed
// into the device; failing to do so is not fatal.
func New(ctx context.Context, ch hardware.Channel, opts ...Option) (*Controller, error) {
	c := &Controller{
		ch:            ch,
		caps:          ch.Capabilities(),
		slot:          hardware.NoSlot,
		pendingEffect: noEffect,
		magnitude:     StrongMagnitude,
		info:          models.Info{Version: Version, Mock: !ch.IsReal()},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.store != nil {
		settings, err := c.store.Load()
		if err != nil {
			return nil, err
		}
		if settings.Amplitude != 0 && c.caps.AmplitudeControl {
			c.mu.Lock()
			err := c.applyAmplitude(context.WithoutCancel(ctx), settings.Amplitude)
			c.mu.Unlock()
			if err != nil {
				slog.Warn("vibrator: could not restore amplitude", "amplitude", settings.Amplitude, "err", err)
			}
		}
	}
	return c, nil
}

// State returns a snapshot of the actuator state.
func (c *Controller) State() models.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Controller) snapshot() models.State {
	return models.State{
		Playing:          c.slot != hardware.NoSlot,
		Slot:             int(c.slot),
		PendingEffect:    int(c.pendingEffect),
		Magnitude:        int(c.magnitude),
		Amplitude:        int(c.amplitude),
		LastPlayLengthMs: c.playLengthMs,
		Capabilities: models.Capabilities{
			AmplitudeControl:  c.caps.AmplitudeControl,
			PredefinedEffects: c.caps.PredefinedEffects,
		},
		Info: c.info,
	}
}

// publish must be called with mu held.
func (c *Controller) publish() {
	if c.bus != nil {
		c.bus.Publish(c.snapshot())
	}
}

// On plays a constant effect for durationMs at the current magnitude.
// A zero duration stops playback, like Off.
func (c *Controller) On(ctx context.Context, durationMs uint32) *models.AppError {
	ctx = context.WithoutCancel(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.publish()

	if err := c.play(ctx, durationMs); err != nil {
		slog.Error("vibrator: on failed", "duration_ms", durationMs, "err", err)
		return models.ErrUnsupported("vibrator: on failed").Wrap(err)
	}
	return nil
}

// Off stops playback. It is a no-op when nothing is playing.
func (c *Controller) Off(ctx context.Context) *models.AppError {
	ctx = context.WithoutCancel(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.publish()

	if err := c.play(ctx, 0); err != nil {
		slog.Error("vibrator: off failed", "err", err)
		return models.ErrUnsupported("vibrator: off failed").Wrap(err)
	}
	return nil
}

// SupportsAmplitudeControl reports whether SetAmplitude can succeed.
func (c *Controller) SupportsAmplitudeControl() bool {
	return c.caps.AmplitudeControl
}

// SetAmplitude sets the channel gain from an 8-bit level. The resulting
// magnitude is used by every later play.
func (c *Controller) SetAmplitude(ctx context.Context, amplitude uint8) *models.AppError {
	if !c.caps.AmplitudeControl {
		return models.ErrUnsupported("vibrator: amplitude control not supported")
	}
	if amplitude == 0 {
		return models.ErrInvalidArgument("amplitude", "amplitude must be in [1, 255]")
	}
	ctx = context.WithoutCancel(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.applyAmplitude(ctx, amplitude); err != nil {
		slog.Error("vibrator: set gain failed", "amplitude", amplitude, "err", err)
		return models.ErrUnsupported("vibrator: set amplitude failed").Wrap(err)
	}
	if c.store != nil {
		if err := c.store.Save(&models.Settings{Amplitude: amplitude}); err != nil {
			slog.Warn("vibrator: failed to save amplitude", "err", err)
		}
	}
	c.publish()
	return nil
}

// applyAmplitude programs the gain for amplitude and records it. It does
// not persist anything. Must be called with mu held.
func (c *Controller) applyAmplitude(ctx context.Context, amplitude uint8) error {
	magnitude := AmplitudeToMagnitude(amplitude)
	if err := c.ch.SetGain(ctx, uint16(magnitude)); err != nil {
		return err
	}
	c.magnitude = magnitude
	c.amplitude = amplitude
	return nil
}

// Perform plays predefined effect from catalog at strength and returns the
// play length reported by the driver, in milliseconds. The strength's
// magnitude replaces the current magnitude for later plays as well, since
// the hardware has a single magnitude register.
func (c *Controller) Perform(ctx context.Context, catalog Catalog, effect int16, strength Strength) (int64, *models.AppError) {
	if !c.caps.PredefinedEffects {
		return 0, models.ErrUnsupported("vibrator: predefined effects not supported")
	}
	magnitude := strength.Magnitude()
	if !catalog.Contains(effect) {
		return 0, models.ErrInvalidArgument("effect", "effect id out of range for catalog "+catalog.Name)
	}
	if magnitude == 0 {
		return 0, models.ErrInvalidArgument("strength", "unknown effect strength")
	}
	ctx = context.WithoutCancel(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.publish()

	c.pendingEffect = effect
	c.magnitude = magnitude
	if err := c.play(ctx, predefinedDuration); err != nil {
		slog.Error("vibrator: perform failed",
			"catalog", catalog.Name,
			"effect", effect,
			"strength", strength,
			"err", err,
		)
		return 0, models.ErrUnsupported("vibrator: perform failed").Wrap(err)
	}
	return c.playLengthMs, nil
}

// play is the single transition used by every public operation. A zero
// duration stops playback; anything else replaces the installed slot with a
// new effect and triggers it. With a pending effect the duration is ignored
// and the length reported by the driver is recorded instead. Must be called
// with mu held.
func (c *Controller) play(ctx context.Context, durationMs uint32) error {
	if durationMs == 0 {
		return c.stop(ctx)
	}

	// The channel holds one slot at a time.
	if c.slot != hardware.NoSlot {
		if err := c.ch.Remove(ctx, c.slot); err != nil {
			c.resetToIdle()
			return err
		}
		c.slot = hardware.NoSlot
	}

	var eff *hardware.Effect
	if c.pendingEffect != noEffect {
		eff = hardware.PredefinedEffect(c.pendingEffect, c.magnitude)
	} else {
		eff = hardware.ConstantEffect(c.magnitude, durationMs)
	}

	id, err := c.ch.InstallOrUpdate(ctx, eff)
	if err != nil {
		c.resetToIdle()
		return err
	}
	c.slot = id
	if eff.Kind == hardware.EffectPredefined {
		c.playLengthMs = eff.Custom.PlayLength()
		c.pendingEffect = noEffect
	}

	if err := c.ch.Trigger(ctx, id); err != nil {
		if rmErr := c.ch.Remove(ctx, id); rmErr != nil {
			slog.Error("vibrator: remove after failed trigger", "slot", id, "err", rmErr)
		}
		c.resetToIdle()
		return err
	}
	return nil
}

func (c *Controller) stop(ctx context.Context) error {
	if c.slot == hardware.NoSlot {
		return nil
	}
	if err := c.ch.Remove(ctx, c.slot); err != nil {
		c.resetToIdle()
		return err
	}
	c.slot = hardware.NoSlot
	c.playLengthMs = 0
	return nil
}

// resetToIdle forgets the slot, the pending effect and the play length. The
// device state after a failure is unknown and is treated as empty.
func (c *Controller) resetToIdle() {
	c.slot = hardware.NoSlot
	c.pendingEffect = noEffect
	c.playLengthMs = 0
}
