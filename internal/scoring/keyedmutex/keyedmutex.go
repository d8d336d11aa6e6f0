// internal/scoring/keyedmutex/keyedmutex.go

// Package keyedmutex provides an arena of per-key locks. Unrelated keys never
// contend, and a key's lock is evicted as soon as nothing holds or waits on
// it, so the arena stays bounded by the number of in-flight operations.
package keyedmutex

import (
	"context"
	"sync"
)

type entry struct {
	token chan struct{} // capacity 1; holding the token is holding the lock
	refs  int
}

// Arena hands out one mutex per key on demand.
type Arena struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *Arena {
	return &Arena{entries: make(map[string]*entry)}
}

// Acquire blocks until the key's lock is held or ctx is done. The returned
// release function must be called exactly once.
func (a *Arena) Acquire(ctx context.Context, key string) (func(), error) {
	e := a.ref(key)

	select {
	case e.token <- struct{}{}:
		return func() { a.unlock(key, e) }, nil
	case <-ctx.Done():
		a.unref(key, e)
		return nil, ctx.Err()
	}
}

// TryAcquire takes the key's lock only if it is free right now.
func (a *Arena) TryAcquire(key string) (func(), bool) {
	e := a.ref(key)

	select {
	case e.token <- struct{}{}:
		return func() { a.unlock(key, e) }, true
	default:
		a.unref(key, e)
		return nil, false
	}
}

// Len reports how many keys currently have a live lock entry.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

func (a *Arena) ref(key string) *entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.entries[key]
	if !ok {
		e = &entry{token: make(chan struct{}, 1)}
		a.entries[key] = e
	}
	e.refs++
	return e
}

func (a *Arena) unref(key string, e *entry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(a.entries, key)
	}
}

func (a *Arena) unlock(key string, e *entry) {
	<-e.token
	a.unref(key, e)
}
