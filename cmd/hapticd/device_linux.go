//go:build linux

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/micro-nova/hapticd/internal/hardware"
)

// openChannel enables the actuator driver if asked and opens the device
// channel: the mock, the node named by --device, or the first
// force-feedback device found in --input-dir, waiting for one to appear.
func openChannel(ctx context.Context, opts options) (hardware.Channel, string, func(), error) {
	if opts.mock {
		return mockChannel(), "mock", func() {}, nil
	}

	if opts.enableGPIO != "" {
		if err := hardware.EnableActuator(opts.enableGPIO); err != nil {
			return nil, "", nil, err
		}
		slog.Info("actuator enable line driven high", "pin", opts.enableGPIO)
	}

	var (
		dev *hardware.EvdevChannel
		err error
	)
	if opts.device != "" {
		dev, err = hardware.OpenEvdev(opts.device)
	} else {
		slog.Info("waiting for a force-feedback device", "dir", opts.inputDir)
		dev, err = hardware.WaitForDevice(ctx, opts.inputDir)
	}
	if err != nil {
		return nil, "", nil, fmt.Errorf("open actuator: %w", err)
	}
	closeFn := func() {
		if err := dev.Close(); err != nil {
			slog.Warn("failed to close device", "path", dev.Path(), "err", err)
		}
	}
	return dev, dev.Path(), closeFn, nil
}
