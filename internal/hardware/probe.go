//go:build linux

package hardware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sys/unix"
)

// DefaultInputDir is where the kernel exposes input event devices.
const DefaultInputDir = "/dev/input"

// nodeSettle is how long a freshly created node is given for udev to apply
// its permissions before it is probed.
const nodeSettle = 100 * time.Millisecond

// Discover scans dir for the first device that can play constant or periodic
// force-feedback effects and opens it. Nodes that cannot be opened or do not
// answer EVIOCGBIT are skipped.
func Discover(dir string) (*EvdevChannel, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("evdev: read %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		ch, err := probe(path)
		if err != nil {
			slog.Debug("evdev: skipping node", "path", path, "err", err)
			continue
		}
		if ch != nil {
			slog.Info("evdev: vibrator found",
				"path", path,
				"amplitude_control", ch.caps.AmplitudeControl,
				"predefined_effects", ch.caps.PredefinedEffects,
			)
			return ch, nil
		}
	}
	return nil, ErrNoDevice
}

// probe opens path and returns a channel when it is a vibrator, or nil when
// it is some other input device.
func probe(path string) (*EvdevChannel, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	bits, err := readFFBits(fd)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	caps, ok := capsFromBitmap(bits)
	if !ok {
		unix.Close(fd)
		return nil, nil
	}
	return newEvdev(fd, path, caps), nil
}

// WaitForDevice returns the first vibrator in dir, waiting for new nodes to
// appear until ctx is done.
func WaitForDevice(ctx context.Context, dir string) (*EvdevChannel, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("evdev: watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return nil, fmt.Errorf("evdev: watch %s: %w", dir, err)
	}

	// Scan after the watch is in place so a node created in between is not lost.
	ch, err := Discover(dir)
	if err == nil || !errors.Is(err, ErrNoDevice) {
		return ch, err
	}
	slog.Info("evdev: waiting for force-feedback device", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil, ErrNoDevice
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			time.Sleep(nodeSettle)
			ch, err := Discover(dir)
			if err == nil {
				return ch, nil
			}
			if !errors.Is(err, ErrNoDevice) {
				return nil, err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil, ErrNoDevice
			}
			slog.Warn("evdev: watcher error", "err", err)
		}
	}
}
