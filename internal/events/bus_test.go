package events_test

import (
	"testing"
	"time"

	"github.com/micro-nova/hapticd/internal/events"
	"github.com/micro-nova/hapticd/internal/models"
)

func TestBusSubscribePublish(t *testing.T) {
	bus := events.NewBus()
	ch := bus.Subscribe("test1")

	bus.Publish(models.State{Playing: true, Slot: 3})

	select {
	case got := <-ch:
		if !got.Playing || got.Slot != 3 {
			t.Errorf("got %+v, want playing slot 3", got)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for event")
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := events.NewBus()
	ch := bus.Subscribe("test-unsub")

	bus.Unsubscribe("test-unsub", ch)

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel to be closed after unsubscribe")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestBusDropsEventsWhenFull(t *testing.T) {
	bus := events.NewBus()
	slow := bus.Subscribe("slow-reader")

	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			bus.Publish(models.State{Slot: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Publish blocked for too long (should drop events)")
	}
	bus.Unsubscribe("slow-reader", slow)
}

func TestBusResubscribeSameID(t *testing.T) {
	bus := events.NewBus()
	first := bus.Subscribe("dup")
	bus.Subscribe("dup")

	if _, ok := <-first; ok {
		t.Error("first channel should be closed when the id is reused")
	}
	if n := bus.SubscriberCount(); n != 1 {
		t.Errorf("SubscriberCount() = %d, want 1", n)
	}
}

func TestBusStaleUnsubscribeKeepsReplacement(t *testing.T) {
	bus := events.NewBus()
	first := bus.Subscribe("dup")
	second := bus.Subscribe("dup")

	// The handler that owned the first channel cleans up late.
	bus.Unsubscribe("dup", first)

	if n := bus.SubscriberCount(); n != 1 {
		t.Fatalf("SubscriberCount() = %d, want 1", n)
	}
	bus.Publish(models.State{Slot: 9})
	select {
	case got, ok := <-second:
		if !ok {
			t.Fatal("replacement channel was closed by a stale Unsubscribe")
		}
		if got.Slot != 9 {
			t.Errorf("got slot %d, want 9", got.Slot)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("replacement subscription stopped receiving")
	}

	bus.Unsubscribe("dup", second)
	if n := bus.SubscriberCount(); n != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", n)
	}
}

func TestBusClose(t *testing.T) {
	bus := events.NewBus()
	ch := bus.Subscribe("a")

	bus.Close()
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after Close")
	}
	if n := bus.SubscriberCount(); n != 0 {
		t.Errorf("SubscriberCount() = %d after Close, want 0", n)
	}

	late := bus.Subscribe("late")
	if _, ok := <-late; ok {
		t.Error("Subscribe after Close should return a closed channel")
	}
	bus.Publish(models.State{}) // must not panic
	bus.Close()                 // idempotent
}

func TestBusSubscriberCount(t *testing.T) {
	bus := events.NewBus()
	if n := bus.SubscriberCount(); n != 0 {
		t.Errorf("expected 0 subscribers, got %d", n)
	}
	s1 := bus.Subscribe("s1")
	bus.Subscribe("s2")
	if n := bus.SubscriberCount(); n != 2 {
		t.Errorf("expected 2 subscribers, got %d", n)
	}
	bus.Unsubscribe("s1", s1)
	if n := bus.SubscriberCount(); n != 1 {
		t.Errorf("expected 1 subscriber, got %d", n)
	}
}
