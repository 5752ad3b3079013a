package hardware

import (
	"errors"
	"fmt"
)

var (
	// ErrNotOpen is returned by a channel whose device has been closed.
	ErrNotOpen = errors.New("device not open")
	// ErrUnknownSlot is returned when a slot id is not installed.
	ErrUnknownSlot = errors.New("unknown effect slot")
	// ErrNoDevice is returned by Discover when no force-feedback device exists.
	ErrNoDevice = errors.New("no force-feedback device found")
)

// DeviceError is returned when a primitive operation on the channel fails.
type DeviceError struct {
	Op  string // "install", "remove", "trigger", "gain"
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

func deviceErr(op string, err error) error {
	return &DeviceError{Op: op, Err: err}
}
