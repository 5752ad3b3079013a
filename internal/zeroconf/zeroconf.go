// Package zeroconf advertises the haptic daemon's HTTP API as an
// mDNS/DNS-SD service so clients on the LAN can find it.
package zeroconf

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/grandcat/zeroconf"

	"github.com/micro-nova/hapticd/internal/models"
)

// ServiceType is the DNS-SD service type registered for the API.
const ServiceType = "_hapticd._tcp"

// Service manages mDNS service registration.
type Service struct {
	name string // instance name, e.g. the hostname
	port int

	mu     sync.Mutex
	txt    []string
	server *zeroconf.Server
}

// New creates a zeroconf Service that will advertise the API on port with
// the given TXT records.
func New(name string, port int, txt []string) *Service {
	return &Service{
		name: name,
		port: port,
		txt:  txt,
	}
}

// TXTRecords describes the actuator in DNS-SD TXT form.
func TXTRecords(state models.State) []string {
	return []string{
		"version=" + state.Info.Version,
		fmt.Sprintf("amplitude_control=%t", state.Capabilities.AmplitudeControl),
		fmt.Sprintf("predefined_effects=%t", state.Capabilities.PredefinedEffects),
		fmt.Sprintf("mock=%t", state.Info.Mock),
	}
}

func (s *Service) register() error {
	server, err := zeroconf.Register(
		s.name,      // instance name
		ServiceType, // service type
		"local.",    // domain
		s.port,      // port
		s.txt,       // TXT records
		nil,         // ifaces, nil means all interfaces
	)
	if err != nil {
		return fmt.Errorf("zeroconf register: %w", err)
	}
	s.server = server
	slog.Info("zeroconf: registered mDNS service",
		"name", s.name,
		"type", ServiceType,
		"port", s.port,
		"txt", s.txt,
	)
	return nil
}

// Start registers the mDNS service and blocks until ctx is cancelled, at which
// point it shuts down the server cleanly.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	err := s.register()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	<-ctx.Done()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		s.server.Shutdown()
		s.server = nil
	}
	slog.Info("zeroconf: mDNS service unregistered")
	return nil
}

// UpdateTXT replaces the TXT records. grandcat/zeroconf has no live TXT
// update, so the service is registered again.
func (s *Service) UpdateTXT(records []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return fmt.Errorf("zeroconf: server not started")
	}
	s.server.Shutdown()
	s.server = nil
	s.txt = records
	return s.register()
}
