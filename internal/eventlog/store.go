// ABOUTME: Append-only event store with synchronous, ordered subscriber fan-out.
// ABOUTME: Type-specific subscribers are notified before global subscribers.

package eventlog

import (
	"errors"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ErrReentrantAppend indicates Append was called from inside a subscriber
// notification on the same goroutine. Re-entrant appends are unsupported;
// subscribers must defer follow-up appends until the current notification
// completes. Appends from other goroutines are not re-entrant: they block
// until the in-flight notification finishes, then proceed normally.
var ErrReentrantAppend = errors.New("re-entrant append during notification")

// Handler receives an event during synchronous notification. A panicking
// handler is recovered and logged; it never aborts notification of the rest.
type Handler func(Event)

type subscription struct {
	id string
	fn Handler
}

// Store is the append-only ordered event log. Append stores the event and
// synchronously notifies type-specific subscribers, then global subscribers,
// in registration order.
type Store struct {
	mu     sync.Mutex
	events []Event
	typed  map[string][]subscription
	global []subscription

	// notifyMu serializes append+notify so subscribers observe events in log
	// order; notifyGID holds the notifying goroutine's id (zero when idle) so
	// only a same-goroutine append from inside a subscriber is rejected.
	notifyMu  sync.Mutex
	notifyGID atomic.Int64

	logger *slog.Logger
}

// NewStore creates an empty event store. Pass nil logger for default.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		typed:  make(map[string][]subscription),
		logger: logger.With("component", "eventlog"),
	}
}

// Append stores the event and notifies subscribers before returning. A zero
// timestamp is replaced with the current time. Returns ErrReentrantAppend
// only when called from inside a subscriber on the notifying goroutine;
// concurrent appends from other goroutines wait their turn.
func (s *Store) Append(ev Event) error {
	if s.notifyGID.Load() == gid() {
		return ErrReentrantAppend
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	s.events = append(s.events, ev)
	typed := append([]subscription(nil), s.typed[ev.Type]...)
	global := append([]subscription(nil), s.global...)
	s.mu.Unlock()

	// mu is released during notification so subscribers may read the log or
	// manage subscriptions; only a same-goroutine Append is rejected
	s.notifyGID.Store(gid())
	defer s.notifyGID.Store(0)

	for _, sub := range typed {
		s.notify(sub, ev)
	}
	for _, sub := range global {
		s.notify(sub, ev)
	}
	return nil
}

// gid returns the current goroutine's id, parsed from the stack header.
func gid() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	header := strings.TrimPrefix(string(buf[:n]), "goroutine ")
	if i := strings.IndexByte(header, ' '); i > 0 {
		if id, err := strconv.ParseInt(header[:i], 10, 64); err == nil {
			return id
		}
	}
	return -1
}

// notify invokes a single subscriber, recovering and logging any panic so one
// broken subscriber cannot abort the rest.
func (s *Store) notify(sub subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("subscriber panicked during notification",
				"event_type", ev.Type,
				"sub_id", sub.id,
				"panic", r)
		}
	}()
	sub.fn(ev)
}

// On registers a subscriber for a single event type. Returns a disposer that
// removes the subscription.
func (s *Store) On(eventType string, fn Handler) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	s.typed[eventType] = append(s.typed[eventType], subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.typed[eventType] = removeSubscription(s.typed[eventType], id)
		if len(s.typed[eventType]) == 0 {
			delete(s.typed, eventType)
		}
	}
}

// OnAll registers a subscriber for every event type. Returns a disposer.
func (s *Store) OnAll(fn Handler) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	s.global = append(s.global, subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.global = removeSubscription(s.global, id)
	}
}

func removeSubscription(subs []subscription, id string) []subscription {
	for i, sub := range subs {
		if sub.id == id {
			return append(subs[:i:i], subs[i+1:]...)
		}
	}
	return subs
}

// Filter narrows the events returned by Events. Zero fields match everything;
// set fields compose with logical AND. Since is an inclusive lower bound.
type Filter struct {
	Type  string
	Since time.Time
}

// Events returns a copy of the log, optionally filtered.
func (s *Store) Events(f Filter) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Event, 0, len(s.events))
	for _, ev := range s.events {
		if f.Type != "" && ev.Type != f.Type {
			continue
		}
		if !f.Since.IsZero() && ev.Timestamp.Before(f.Since) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// Len returns the number of appended events.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// Project applies fn to the full ordered event log and returns its result.
// This is the generic read-model escape hatch; fn must not retain or mutate
// the slice it receives.
func (s *Store) Project(fn func([]Event) any) any {
	s.mu.Lock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.Unlock()

	return fn(events)
}
