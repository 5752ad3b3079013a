package hardware

import (
	"context"
	"errors"
	"sync"
)

// Op names a channel primitive, for failure injection and call records.
type Op string

const (
	OpInstall Op = "install"
	OpRemove  Op = "remove"
	OpTrigger Op = "trigger"
	OpGain    Op = "gain"
)

// ErrInjected is the cause of failures configured with SetFail.
var ErrInjected = errors.New("mock: failure configured")

// Call records one primitive invocation on the mock.
type Call struct {
	Op     Op
	Slot   SlotID
	Effect Effect // install only; Custom is copied
	Gain   uint16
}

// Mock is a thread-safe in-memory channel for testing and development.
// It behaves like a driver that allocates increasing slot ids and reports a
// configurable play length for predefined effects.
type Mock struct {
	mu           sync.Mutex
	caps         Capabilities
	slots        map[SlotID]Effect
	playing      map[SlotID]bool
	nextID       SlotID
	gain         uint16
	playLengthMs int64
	fail         map[Op]bool
	calls        []Call
}

// NewMock creates a mock channel with the given capabilities.
func NewMock(caps Capabilities) *Mock {
	return &Mock{
		caps:    caps,
		slots:   make(map[SlotID]Effect),
		playing: make(map[SlotID]bool),
		fail:    make(map[Op]bool),
	}
}

// SetFail configures the mock to fail every call of op.
func (m *Mock) SetFail(op Op, fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[op] = fail
}

// SetPlayLength sets the duration written back into the custom data of
// predefined effects.
func (m *Mock) SetPlayLength(ms int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playLengthMs = ms
}

func (m *Mock) record(c Call) error {
	m.calls = append(m.calls, c)
	if m.fail[c.Op] {
		return deviceErr(string(c.Op), ErrInjected)
	}
	return nil
}

func (m *Mock) InstallOrUpdate(ctx context.Context, eff *Effect) (SlotID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := *eff
	if eff.Custom != nil {
		cp := *eff.Custom
		rec.Custom = &cp
	}
	if err := m.record(Call{Op: OpInstall, Slot: eff.ID, Effect: rec}); err != nil {
		return NoSlot, err
	}

	id := eff.ID
	if id == NoSlot {
		id = m.nextID
		m.nextID++
	} else if _, ok := m.slots[id]; !ok {
		return NoSlot, deviceErr(string(OpInstall), ErrUnknownSlot)
	}
	if eff.Custom != nil {
		eff.Custom.SetPlayLength(m.playLengthMs)
	}
	eff.ID = id
	m.slots[id] = rec
	return id, nil
}

func (m *Mock) Remove(ctx context.Context, id SlotID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: OpRemove, Slot: id}); err != nil {
		return err
	}
	if _, ok := m.slots[id]; !ok {
		return deviceErr(string(OpRemove), ErrUnknownSlot)
	}
	delete(m.slots, id)
	delete(m.playing, id)
	return nil
}

func (m *Mock) Trigger(ctx context.Context, id SlotID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: OpTrigger, Slot: id}); err != nil {
		return err
	}
	if _, ok := m.slots[id]; !ok {
		return deviceErr(string(OpTrigger), ErrUnknownSlot)
	}
	m.playing[id] = true
	return nil
}

func (m *Mock) SetGain(ctx context.Context, gain uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: OpGain, Gain: gain}); err != nil {
		return err
	}
	m.gain = gain
	return nil
}

func (m *Mock) Capabilities() Capabilities { return m.caps }

func (m *Mock) IsReal() bool { return false }

// Calls returns a copy of every call made so far.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times op was called.
func (m *Mock) CallCount(op Op) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// ResetCalls clears the call log.
func (m *Mock) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Installed returns the installed slot ids.
func (m *Mock) Installed() []SlotID {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]SlotID, 0, len(m.slots))
	for id := range m.slots {
		ids = append(ids, id)
	}
	return ids
}

// Playing reports whether slot id has been triggered and not removed.
func (m *Mock) Playing(id SlotID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing[id]
}

// Gain returns the last gain written.
func (m *Mock) Gain() uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gain
}
