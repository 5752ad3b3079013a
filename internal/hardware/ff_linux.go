//go:build linux

package hardware

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl request encoding (Linux _IOC macro)
const (
	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30

	iocWrite = 1
	iocRead  = 2
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNRShift | size<<iocSizeShift
}

type ffTrigger struct {
	button   uint16
	interval uint16
}

type ffReplay struct {
	length uint16
	delay  uint16
}

type ffEnvelope struct {
	attackLength uint16
	attackLevel  uint16
	fadeLength   uint16
	fadeLevel    uint16
}

// ffPeriodicEffect mirrors struct ff_periodic_effect. It is the largest
// member of the ff_effect union and carries the pointer that sets the union
// alignment.
type ffPeriodicEffect struct {
	waveform   uint16
	period     uint16
	magnitude  int16
	offset     int16
	phase      uint16
	envelope   ffEnvelope
	_          [2]byte
	customLen  uint32
	customData *int16
}

// ffConstantEffect mirrors struct ff_constant_effect, overlaid on the union.
type ffConstantEffect struct {
	level    int16
	envelope ffEnvelope
}

// ffEffect mirrors struct ff_effect from linux/input.h.
type ffEffect struct {
	typ       uint16
	id        int16
	direction uint16
	trigger   ffTrigger
	replay    ffReplay
	u         ffPeriodicEffect
}

func (e *ffEffect) constant() *ffConstantEffect {
	return (*ffConstantEffect)(unsafe.Pointer(&e.u))
}

// inputEvent mirrors struct input_event.
type inputEvent struct {
	time  unix.Timeval
	typ   uint16
	code  uint16
	value int32
}

func (ev *inputEvent) bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(ev)), unsafe.Sizeof(*ev))
}

var (
	// EVIOCSFF = _IOW('E', 0x80, struct ff_effect)
	evioCSFF = ioc(iocWrite, 'E', 0x80, unsafe.Sizeof(ffEffect{}))
	// EVIOCRMFF = _IOW('E', 0x81, int)
	evioCRMFF = ioc(iocWrite, 'E', 0x81, unsafe.Sizeof(int32(0)))
)

// evioCGBit returns EVIOCGBIT(ev, size) = _IOC(_IOC_READ, 'E', 0x20 + ev, size).
func evioCGBit(ev, size uintptr) uintptr {
	return ioc(iocRead, 'E', 0x20+ev, size)
}

// encodeEffect converts a descriptor into the kernel layout. The returned
// struct points into eff.Custom, which must stay reachable until the ioctl
// has returned.
func encodeEffect(eff *Effect) ffEffect {
	raw := ffEffect{id: int16(eff.ID)}
	switch eff.Kind {
	case EffectPredefined:
		raw.typ = ffPeriodic
		raw.u.waveform = ffCustom
		raw.u.magnitude = eff.Magnitude
		raw.u.customData = &eff.Custom[0]
		raw.u.customLen = uint32(unsafe.Sizeof(*eff.Custom))
	default:
		raw.typ = ffConstant
		raw.constant().level = eff.Magnitude
		length := eff.LengthMs
		if length > 0xffff {
			length = 0xffff
		}
		raw.replay.length = uint16(length)
	}
	return raw
}

// ioctlPtr issues a request whose argument is a pointer and retries on EINTR.
func ioctlPtr(fd int, req uintptr, arg unsafe.Pointer) error {
	for {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
		if errno == unix.EINTR {
			continue
		}
		if errno != 0 {
			return errno
		}
		return nil
	}
}

// ioctlInt issues a request whose argument is passed by value.
func ioctlInt(fd int, req uintptr, arg int) error {
	for {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
		if errno == unix.EINTR {
			continue
		}
		if errno != 0 {
			return errno
		}
		return nil
	}
}

// writeEvent writes one input event and retries on EINTR.
func writeEvent(fd int, ev *inputEvent) error {
	for {
		_, err := unix.Write(fd, ev.bytes())
		if err == unix.EINTR {
			continue
		}
		return err
	}
}

// readFFBits reads the EV_FF capability bitmap of fd.
func readFFBits(fd int) ([]byte, error) {
	bits := make([]byte, ffBitmapLen)
	req := evioCGBit(evFF, uintptr(len(bits)))
	if err := ioctlPtr(fd, req, unsafe.Pointer(&bits[0])); err != nil {
		return nil, err
	}
	return bits, nil
}
