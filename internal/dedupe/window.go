// ABOUTME: Time-windowed duplicate suppression keyed by signal identity.
// ABOUTME: Used by the alert bridge to collapse repeated device and motion signals.

package dedupe

import (
	"container/list"
	"sync"
	"time"
)

// entry stores the last-fired timestamp and list element for a key.
type entry struct {
	lastFiredAt time.Time
	element     *list.Element
}

// Window tracks when each key last fired and suppresses repeats inside the
// configured window. Insertion order is kept in a doubly-linked list so the
// oldest key can be evicted in O(1) when the window is at capacity.
type Window struct {
	mu      sync.Mutex
	seen    map[string]*entry
	order   *list.List // keys in last-fired order, oldest at front
	span    time.Duration
	maxKeys int
}

// New creates a dedupe window. span is the suppression interval; maxKeys
// bounds the tracked key space.
func New(span time.Duration, maxKeys int) *Window {
	return &Window{
		seen:    make(map[string]*entry),
		order:   list.New(),
		span:    span,
		maxKeys: maxKeys,
	}
}

// Suppress atomically decides whether a signal with this key should be
// dropped. Returns true if the key fired within the window; otherwise the
// key is recorded as fired now and false is returned.
func (w *Window) Suppress(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	if e, ok := w.seen[key]; ok {
		if now.Sub(e.lastFiredAt) < w.span {
			return true
		}
		// Expired: refresh in place
		e.lastFiredAt = now
		w.order.MoveToBack(e.element)
		return false
	}

	if len(w.seen) >= w.maxKeys {
		w.evictOldest()
	}

	elem := w.order.PushBack(key)
	w.seen[key] = &entry{lastFiredAt: now, element: elem}
	return false
}

// evictOldest removes the oldest key. Must be called with mu held.
func (w *Window) evictOldest() {
	front := w.order.Front()
	if front == nil {
		return
	}
	key, _ := front.Value.(string)
	w.order.Remove(front)
	delete(w.seen, key)
}

// Len returns the number of tracked keys.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.seen)
}

// Reset drops all tracked keys. Safe to call repeatedly.
func (w *Window) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seen = make(map[string]*entry)
	w.order.Init()
}
