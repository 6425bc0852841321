// Package events carries the process-wide "data changed" signal.
//
// The signal has no payload. Listeners re-read whatever state they care
// about when it fires.
package events

import (
	"sync"

	"finly/internal/log"
)

// Bus fans a change signal out to every current subscriber.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func()
	order  []int
	logger *log.Logger
}

func NewBus(logger *log.Logger) *Bus {
	return &Bus{
		subs:   make(map[int]func()),
		logger: logger,
	}
}

// Subscribe registers fn and returns a function that removes it.
// Calling the returned function more than once is harmless.
func (b *Bus) Subscribe(fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.order = append(b.order, id)
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; !ok {
			return
		}
		delete(b.subs, id)
		for i, v := range b.order {
			if v == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

// Publish calls every subscriber synchronously, in registration order.
// A panicking subscriber is logged and does not stop the others.
func (b *Bus) Publish() {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.order))
	for _, id := range b.order {
		fns = append(fns, b.subs[id])
	}
	b.mu.Unlock()

	for _, fn := range fns {
		b.call(fn)
	}
}

func (b *Bus) call(fn func()) {
	defer func() {
		if r := recover(); r != nil && b.logger != nil {
			b.logger.Error("Change subscriber panicked", "panic", r)
		}
	}()
	fn()
}

// Len reports the number of current subscribers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
