// Package lock serializes work per player so that one player's commands never
// interleave while different players proceed in parallel.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// entry is a mutex shared by everyone waiting on the same key.
type entry struct {
	mu      sync.Mutex
	waiters int // guarded by Keyed.mu
}

// Keyed hands out one mutex per key. Entries are dropped once nobody holds or
// waits on them, so idle players cost nothing.
type Keyed[K comparable] struct {
	mu      sync.Mutex
	entries map[K]*entry
}

// NewKeyed creates an empty Keyed lock.
func NewKeyed[K comparable]() *Keyed[K] {
	return &Keyed[K]{entries: make(map[K]*entry)}
}

func (k *Keyed[K]) acquire(key K) *entry {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.waiters++
	return e
}

func (k *Keyed[K]) release(key K, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.waiters--
	if e.waiters == 0 {
		delete(k.entries, key)
	}
}

// Lock blocks until key is held.
func (k *Keyed[K]) Lock(key K) {
	k.acquire(key).mu.Lock()
}

// Unlock releases key. Unlocking a key that is not held panics like
// sync.Mutex does.
func (k *Keyed[K]) Unlock(key K) {
	k.mu.Lock()
	e, ok := k.entries[key]
	k.mu.Unlock()
	if !ok {
		panic("lock: unlock of unlocked key")
	}
	e.mu.Unlock()
	k.release(key, e)
}

// LockContext acquires key, giving up when ctx is done or timeout elapses.
// A zero timeout waits on ctx alone.
func (k *Keyed[K]) LockContext(ctx context.Context, key K, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	e := k.acquire(key)
	done := make(chan struct{})
	go func() {
		e.mu.Lock()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		// The goroutine still gets the mutex eventually; hand it straight back.
		go func() {
			<-done
			e.mu.Unlock()
			k.release(key, e)
		}()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrLockTimeout
		}
		return ctx.Err()
	}
}

// WithContext runs fn while holding key, bounded by ctx and timeout.
func (k *Keyed[K]) WithContext(ctx context.Context, key K, timeout time.Duration, fn func() error) error {
	if err := k.LockContext(ctx, key, timeout); err != nil {
		return err
	}
	defer k.Unlock(key)
	return fn()
}
