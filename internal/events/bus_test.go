package events

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"finly/internal/log"
)

func TestBusPublishOrder(t *testing.T) {
	bus := NewBus(nil)
	var got []string
	bus.Subscribe(func() { got = append(got, "a") })
	bus.Subscribe(func() { got = append(got, "b") })

	bus.Publish()
	if strings.Join(got, ",") != "a,b" {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(nil)
	calls := 0
	unsubscribe := bus.Subscribe(func() { calls++ })
	bus.Publish()
	unsubscribe()
	unsubscribe()
	bus.Publish()

	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	if bus.Len() != 0 {
		t.Fatalf("expected no subscribers, got %d", bus.Len())
	}
}

func TestBusRecoversPanics(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Handler: slog.NewTextHandler(&buf, nil), Component: log.ComponentEvents})
	bus := NewBus(logger)

	reached := false
	bus.Subscribe(func() { panic("boom") })
	bus.Subscribe(func() { reached = true })
	bus.Publish()

	if !reached {
		t.Fatal("second subscriber should still run")
	}
	if !strings.Contains(buf.String(), "boom") {
		t.Fatalf("expected panic to be logged, got %q", buf.String())
	}
}

func TestBusSubscribeDuringPublish(t *testing.T) {
	bus := NewBus(nil)
	late := 0
	bus.Subscribe(func() {
		bus.Subscribe(func() { late++ })
	})
	bus.Publish()
	if late != 0 {
		t.Fatal("subscriber added during publish must wait for the next signal")
	}
	bus.Publish()
	if late != 1 {
		t.Fatalf("expected 1 late call, got %d", late)
	}
}
