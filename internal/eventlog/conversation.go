// ABOUTME: Conversation couples the event store to the aggregate projection.
// ABOUTME: Record first, then project - every message flows through the log.

package eventlog

import (
	"log/slog"
	"sync"
)

// Conversation is the writing surface for conversation messages. It allocates
// monotonic message ids from the aggregate, appends the corresponding events
// to the store, and keeps the projection current by subscribing to the log.
type Conversation struct {
	producerMu sync.Mutex // serializes id allocation with the append that uses it
	aggMu      sync.RWMutex
	store      *Store
	agg        *Aggregate
	logger     *slog.Logger
	unsub      func()
}

// NewConversation wires a conversation projection onto the store. Pass nil
// logger for default.
func NewConversation(store *Store, logger *slog.Logger) *Conversation {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Conversation{
		store:  store,
		agg:    NewAggregate(),
		logger: logger.With("component", "conversation"),
	}
	c.unsub = store.OnAll(c.applyEvent)
	return c
}

func (c *Conversation) applyEvent(ev Event) {
	c.aggMu.Lock()
	defer c.aggMu.Unlock()
	c.agg.Apply(ev)
}

// AddMessage appends a message_added event and returns the allocated id.
func (c *Conversation) AddMessage(role Role, text, kind string, meta map[string]any) (int, error) {
	c.producerMu.Lock()
	defer c.producerMu.Unlock()

	c.aggMu.RLock()
	id := c.agg.NextID()
	c.aggMu.RUnlock()

	ev := NewEvent(TypeMessageAdded, MessageAdded{
		ID:   id,
		Role: role,
		Text: text,
		Kind: kind,
		Meta: meta,
	})
	if err := c.store.Append(ev); err != nil {
		return 0, err
	}

	c.logger.Debug("message recorded", "id", id, "role", role, "kind", kind)
	return id, nil
}

// UpdateMessage appends a message_updated patch for the given id. Patching an
// absent id is recorded but projects to a no-op.
func (c *Conversation) UpdateMessage(patch MessageUpdated) error {
	c.producerMu.Lock()
	defer c.producerMu.Unlock()

	return c.store.Append(NewEvent(TypeMessageUpdated, patch))
}

// Clear appends a chat_cleared event, emptying the projection and resetting
// the id counter.
func (c *Conversation) Clear() error {
	c.producerMu.Lock()
	defer c.producerMu.Unlock()

	return c.store.Append(NewEvent(TypeChatCleared, ChatCleared{}))
}

// Messages returns the current projected message list.
func (c *Conversation) Messages() []Message {
	c.aggMu.RLock()
	defer c.aggMu.RUnlock()
	return c.agg.Messages()
}

// NextID returns the id the next message will receive.
func (c *Conversation) NextID() int {
	c.aggMu.RLock()
	defer c.aggMu.RUnlock()
	return c.agg.NextID()
}

// Close detaches the conversation from the store. Safe to call once.
func (c *Conversation) Close() {
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
}
