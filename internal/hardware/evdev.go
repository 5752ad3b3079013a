//go:build linux

package hardware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"
)

const (
	maxOpsPerSec = 1000
	opsBurst     = 16
)

// EvdevChannel is the real device channel for a force-feedback input device
// (/dev/input/eventN), driven with EVIOCSFF/EVIOCRMFF ioctls and EV_FF
// event writes.
type EvdevChannel struct {
	mu      sync.Mutex
	path    string
	fd      int
	caps    Capabilities
	limiter *rate.Limiter
}

// OpenEvdev opens path read-write and reads its force-feedback capabilities.
func OpenEvdev(path string) (*EvdevChannel, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("evdev: open %s: %w", path, err)
	}
	bits, err := readFFBits(fd)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("evdev: EVIOCGBIT(EV_FF) %s: %w", path, err)
	}
	caps, ok := capsFromBitmap(bits)
	if !ok {
		unix.Close(fd)
		return nil, fmt.Errorf("evdev: %s: %w", path, ErrNoDevice)
	}
	return newEvdev(fd, path, caps), nil
}

func newEvdev(fd int, path string, caps Capabilities) *EvdevChannel {
	return &EvdevChannel{
		path:    path,
		fd:      fd,
		caps:    caps,
		limiter: rate.NewLimiter(rate.Limit(maxOpsPerSec), opsBurst),
	}
}

// Path returns the device node backing the channel.
func (d *EvdevChannel) Path() string { return d.path }

func (d *EvdevChannel) Capabilities() Capabilities { return d.caps }

func (d *EvdevChannel) IsReal() bool { return true }

// begin waits for the rate limiter and takes the device lock. On success the
// caller must unlock d.mu.
func (d *EvdevChannel) begin(ctx context.Context) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}
	d.mu.Lock()
	if d.fd < 0 {
		d.mu.Unlock()
		return ErrNotOpen
	}
	return nil
}

func (d *EvdevChannel) InstallOrUpdate(ctx context.Context, eff *Effect) (SlotID, error) {
	if eff.Kind == EffectPredefined && eff.Custom == nil {
		return NoSlot, deviceErr("install", fmt.Errorf("predefined effect without custom data"))
	}
	if err := d.begin(ctx); err != nil {
		return NoSlot, deviceErr("install", err)
	}
	defer d.mu.Unlock()

	raw := encodeEffect(eff)
	err := ioctlPtr(d.fd, evioCSFF, unsafe.Pointer(&raw))
	runtime.KeepAlive(eff.Custom)
	if err != nil {
		slog.Debug("evdev: EVIOCSFF failed", "path", d.path, "kind", eff.Kind, "err", err)
		return NoSlot, deviceErr("install", err)
	}
	eff.ID = SlotID(raw.id)
	return eff.ID, nil
}

func (d *EvdevChannel) Remove(ctx context.Context, id SlotID) error {
	if err := d.begin(ctx); err != nil {
		return deviceErr("remove", err)
	}
	defer d.mu.Unlock()

	if err := ioctlInt(d.fd, evioCRMFF, int(id)); err != nil {
		slog.Debug("evdev: EVIOCRMFF failed", "path", d.path, "slot", id, "err", err)
		return deviceErr("remove", err)
	}
	return nil
}

func (d *EvdevChannel) Trigger(ctx context.Context, id SlotID) error {
	if err := d.begin(ctx); err != nil {
		return deviceErr("trigger", err)
	}
	defer d.mu.Unlock()

	ev := inputEvent{typ: evFF, code: uint16(id), value: 1}
	if err := writeEvent(d.fd, &ev); err != nil {
		slog.Debug("evdev: play write failed", "path", d.path, "slot", id, "err", err)
		return deviceErr("trigger", err)
	}
	return nil
}

func (d *EvdevChannel) SetGain(ctx context.Context, gain uint16) error {
	if err := d.begin(ctx); err != nil {
		return deviceErr("gain", err)
	}
	defer d.mu.Unlock()

	ev := inputEvent{typ: evFF, code: ffGain, value: int32(gain)}
	if err := writeEvent(d.fd, &ev); err != nil {
		slog.Debug("evdev: FF_GAIN write failed", "path", d.path, "gain", gain, "err", err)
		return deviceErr("gain", err)
	}
	return nil
}

// Close releases the device file descriptor.
func (d *EvdevChannel) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}
