// Package observer is the reference solution for the observer pattern task.
package observer

import (
	"sync"
	"sync/atomic"
)

// Listener receives the arguments passed to Emit.
type Listener func(args ...any)

// Subscription identifies one registered listener. Go funcs are not
// comparable, so removal goes through the handle returned at registration.
type Subscription struct {
	event string
	id    uint64
}

func (s Subscription) Event() string { return s.event }

type entry struct {
	id uint64
	fn Listener
}

// Emitter maps event names to ordered listener lists. It is safe for
// concurrent use; listeners run on the emitting goroutine, outside the lock.
type Emitter struct {
	mu        sync.Mutex
	next      uint64
	listeners map[string][]entry
}

func New() *Emitter {
	return &Emitter{listeners: make(map[string][]entry)}
}

func (e *Emitter) reserve(event string) Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.next++
	return Subscription{event: event, id: e.next}
}

func (e *Emitter) add(sub Subscription, fn Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[sub.event] = append(e.listeners[sub.event], entry{id: sub.id, fn: fn})
}

// On registers fn for every future emission of event.
func (e *Emitter) On(event string, fn Listener) Subscription {
	sub := e.reserve(event)
	e.add(sub, fn)
	return sub
}

// Once registers fn for the next emission of event only. The wrapper
// removes its own subscription before calling fn.
func (e *Emitter) Once(event string, fn Listener) Subscription {
	sub := e.reserve(event)
	var fired atomic.Bool
	e.add(sub, func(args ...any) {
		if !fired.CompareAndSwap(false, true) {
			return
		}
		e.Off(sub)
		fn(args...)
	})
	return sub
}

// Off removes the listener behind sub. Unknown or already removed
// subscriptions are ignored.
func (e *Emitter) Off(sub Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()
	list := e.listeners[sub.event]
	for i, en := range list {
		if en.id == sub.id {
			e.listeners[sub.event] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(e.listeners[sub.event]) == 0 {
		delete(e.listeners, sub.event)
	}
}

// Emit calls every listener registered for event, in registration order,
// and returns how many were called.
func (e *Emitter) Emit(event string, args ...any) int {
	e.mu.Lock()
	snapshot := make([]entry, len(e.listeners[event]))
	copy(snapshot, e.listeners[event])
	e.mu.Unlock()

	for _, en := range snapshot {
		en.fn(args...)
	}
	return len(snapshot)
}

// ListenerCount returns the number of listeners registered for event.
func (e *Emitter) ListenerCount(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners[event])
}
