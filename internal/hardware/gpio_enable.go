//go:build linux

package hardware

import (
	"fmt"
	"log/slog"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// enableSettle covers the wake-up time of haptic driver ICs after EN goes
// high (DRV260x needs 250us, 1ms leaves margin).
const enableSettle = 1 * time.Millisecond

// EnableActuator drives the enable line of the haptic driver IC high. Boards
// that gate the driver with a GPIO need this before the input device will
// accept effects. pin is a periph name such as "GPIO17".
func EnableActuator(pin string) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("gpio: host init failed: %w", err)
	}

	p := gpioreg.ByName(pin)
	if p == nil {
		return fmt.Errorf("gpio: failed to open %s (EN)", pin)
	}
	if err := p.Out(gpio.High); err != nil {
		return fmt.Errorf("gpio: failed to drive %s high: %w", pin, err)
	}
	time.Sleep(enableSettle)

	slog.Debug("gpio: actuator enabled", "pin", pin)
	return nil
}
