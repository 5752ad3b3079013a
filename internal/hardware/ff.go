package hardware

import "math"

// Force-feedback codes from linux/input-event-codes.h.
const (
	evFF = 0x15

	ffRumble   = 0x50
	ffPeriodic = 0x51
	ffConstant = 0x52
	ffCustom   = 0x5d
	ffGain     = 0x60
	ffMax      = 0x7f
	ffCnt      = ffMax + 1
)

// ffBitmapLen is the size in bytes of the EV_FF capability bitmap.
const ffBitmapLen = ffCnt / 8

// customDataLen is the number of int16 fields in the custom payload.
const customDataLen = 3

// CustomData is the payload shared with the driver for predefined effects:
// [effect id, play seconds, play milliseconds]. The caller fills the id,
// the driver fills the play time before the upload returns.
type CustomData [customDataLen]int16

// NewCustomData returns a payload asking for effect id with an empty
// play time.
func NewCustomData(effectID int16) *CustomData {
	return &CustomData{effectID, 0, 0}
}

// EffectID returns the catalog id carried by the payload.
func (c *CustomData) EffectID() int16 { return c[0] }

// PlayLength decodes the play time written by the driver, in milliseconds.
func (c *CustomData) PlayLength() int64 {
	return int64(c[1])*1000 + int64(c[2])
}

// MaxPlayLength is the longest play time the payload can carry.
const MaxPlayLength = math.MaxInt16*1000 + 999

// SetPlayLength encodes ms into the seconds/milliseconds fields, the way
// a driver reports it. ms is clamped to [0, MaxPlayLength].
func (c *CustomData) SetPlayLength(ms int64) {
	ms = min(max(ms, 0), MaxPlayLength)
	c[1] = int16(ms / 1000)
	c[2] = int16(ms % 1000)
}

func testBit(bit int, bits []byte) bool {
	if bit/8 >= len(bits) {
		return false
	}
	return bits[bit/8]&(1<<uint(bit%8)) != 0
}

// capsFromBitmap interprets an EV_FF capability bitmap. ok is false when the
// device can play neither constant nor periodic effects and therefore is not
// a vibrator.
func capsFromBitmap(bits []byte) (caps Capabilities, ok bool) {
	if !testBit(ffConstant, bits) && !testBit(ffPeriodic, bits) {
		return Capabilities{}, false
	}
	return Capabilities{
		AmplitudeControl:  testBit(ffGain, bits),
		PredefinedEffects: testBit(ffCustom, bits),
	}, true
}
