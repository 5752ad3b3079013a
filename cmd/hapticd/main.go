// Command hapticd is the haptic actuator daemon. It drives one force-feedback
// input device and serves on/off, amplitude and predefined-effect requests
// over HTTP.
// Run with --mock to use a simulated actuator (no input device required).
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/micro-nova/hapticd/internal/api"
	"github.com/micro-nova/hapticd/internal/auth"
	"github.com/micro-nova/hapticd/internal/config"
	"github.com/micro-nova/hapticd/internal/events"
	"github.com/micro-nova/hapticd/internal/hardware"
	"github.com/micro-nova/hapticd/internal/vibrator"
	"github.com/micro-nova/hapticd/internal/zeroconf"
)

// options carries the device related flags to openChannel.
type options struct {
	mock       bool
	device     string
	inputDir   string
	enableGPIO string
}

func main() {
	var (
		mock       = flag.Bool("mock", false, "use a mock actuator (no input device required)")
		addr       = flag.String("addr", ":8080", "HTTP listen address")
		cfgDir     = flag.String("config-dir", "", "config directory (default: ~/.config/hapticd)")
		device     = flag.String("device", "", "force-feedback event device, e.g. /dev/input/event2 (default: discover)")
		inputDir   = flag.String("input-dir", "/dev/input", "directory scanned for force-feedback devices")
		enableGPIO = flag.String("enable-gpio", "", "GPIO driven high to enable the actuator driver, e.g. GPIO17")
		noMDNS     = flag.Bool("no-mdns", false, "do not advertise the API over mDNS")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	// Configure logging
	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Resolve config directory
	if *cfgDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			slog.Error("cannot determine home directory", "err", err)
			os.Exit(1)
		}
		*cfgDir = filepath.Join(home, ".config", "hapticd")
	}
	if err := os.MkdirAll(*cfgDir, 0755); err != nil {
		slog.Error("cannot create config directory", "path", *cfgDir, "err", err)
		os.Exit(1)
	}

	// Graceful shutdown context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Device channel
	ch, devPath, closeCh, err := openChannel(ctx, options{
		mock:       *mock,
		device:     *device,
		inputDir:   *inputDir,
		enableGPIO: *enableGPIO,
	})
	if err != nil {
		slog.Error("device initialization failed", "err", err)
		os.Exit(1)
	}
	defer closeCh()
	caps := ch.Capabilities()
	slog.Info("actuator",
		"device", devPath,
		"mock", !ch.IsReal(),
		"amplitude_control", caps.AmplitudeControl,
		"predefined_effects", caps.PredefinedEffects,
	)

	store := config.NewJSONStore(*cfgDir)
	bus := events.NewBus()

	ctrl, err := vibrator.New(ctx, ch,
		vibrator.WithStore(store),
		vibrator.WithBus(bus),
		vibrator.WithDevice(devPath),
	)
	if err != nil {
		slog.Error("controller initialization failed", "err", err)
		os.Exit(1)
	}

	// Auth service
	authSvc, err := auth.NewService(*cfgDir)
	if err != nil {
		slog.Error("auth service initialization failed", "err", err)
		os.Exit(1)
	}
	defer authSvc.Close()

	// Zeroconf mDNS registration
	if !*noMDNS {
		hostname, _ := os.Hostname()
		zc := zeroconf.New(hostname, listenPort(*addr), zeroconf.TXTRecords(ctrl.State()))
		go func() {
			if err := zc.Start(ctx); err != nil {
				slog.Warn("zeroconf failed", "err", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:         *addr,
		Handler:      api.NewRouter(ctrl, authSvc, bus),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // 0 = no timeout (needed for SSE)
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("hapticd listening", "addr", *addr, "mock", *mock, "config", *cfgDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			cancel()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()

	// Leave the actuator quiet
	if appErr := ctrl.Off(shutCtx); appErr != nil {
		slog.Warn("failed to stop actuator", "err", appErr)
	}

	// End SSE streams so Shutdown does not wait on them
	bus.Close()

	// Flush pending config writes
	if err := store.Flush(); err != nil {
		slog.Warn("failed to flush config", "err", err)
	}

	// Graceful HTTP shutdown
	if err := srv.Shutdown(shutCtx); err != nil {
		slog.Warn("server shutdown error", "err", err)
	}

	slog.Info("shutdown complete")
}

// listenPort extracts the port advertised over mDNS from a listen address.
func listenPort(addr string) int {
	port := 80
	if i := strings.LastIndex(addr, ":"); i >= 0 && i+1 < len(addr) {
		if p, err := strconv.Atoi(addr[i+1:]); err == nil {
			port = p
		}
	}
	return port
}

// mockChannel returns a simulated actuator with every capability.
func mockChannel() hardware.Channel {
	slog.Info("using mock actuator")
	hw := hardware.NewMock(hardware.Capabilities{AmplitudeControl: true, PredefinedEffects: true})
	hw.SetPlayLength(30)
	return hw
}
