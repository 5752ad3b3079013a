//go:build !linux

package main

import (
	"context"
	"errors"

	"github.com/micro-nova/hapticd/internal/hardware"
)

// openChannel only supports the mock actuator outside Linux.
func openChannel(ctx context.Context, opts options) (hardware.Channel, string, func(), error) {
	if opts.mock {
		return mockChannel(), "mock", func() {}, nil
	}
	return nil, "", nil, errors.New("force-feedback devices require linux; run with --mock")
}
