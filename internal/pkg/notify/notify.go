// Package notify provides a synchronous publish-subscribe registry.
package notify

import (
	"sync"

	"github.com/rs/zerolog/log"
)

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// Broadcaster delivers every published value to all current subscribers,
// synchronously and in registration order.
// A subscriber that panics is logged and skipped; delivery is never retried.
type Broadcaster[T any] struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscriber[T]
	name   string
}

// New creates a Broadcaster. name only appears in log lines.
func New[T any](name string) *Broadcaster[T] {
	return &Broadcaster[T]{name: name}
}

// Subscribe registers fn and returns a function that removes it again.
// Calling the returned function more than once is harmless.
func (b *Broadcaster[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber[T]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Broadcaster[T]) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers v to every subscriber registered at the time of the call.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	subs := make([]subscriber[T], len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		b.deliver(s, v)
	}
}

func (b *Broadcaster[T]) deliver(s subscriber[T], v T) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("broadcaster", b.name).
				Uint64("subscriber", s.id).
				Interface("panic", r).
				Msg("Recovered from panic in subscriber")
		}
	}()
	s.fn(v)
}

// Len returns the number of registered subscribers.
func (b *Broadcaster[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
