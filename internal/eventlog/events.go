// ABOUTME: Domain event and conversation message types for the event log.
// ABOUTME: Every event carries a type tag, timestamp, and immutable payload.

package eventlog

import "time"

// Event types understood by the conversation aggregate. The log may carry
// other event types; the aggregate ignores what it does not recognize.
const (
	TypeMessageAdded   = "message_added"
	TypeMessageUpdated = "message_updated"
	TypeChatCleared    = "chat_cleared"
)

// Role identifies who authored a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Event is a single entry in the append-only log. Once appended it must not
// be mutated; payloads are treated as immutable values.
type Event struct {
	Type      string
	Timestamp time.Time
	Payload   any
}

// MessageAdded appends a new conversation message.
type MessageAdded struct {
	ID   int
	Role Role
	Text string
	Kind string         // rendering hint, e.g. "alert", "suggestion"
	Meta map[string]any // additional rendering hints
}

// MessageUpdated patches an existing message by id. Nil fields are left
// untouched; Meta keys are merged over the existing map.
type MessageUpdated struct {
	ID   int
	Text *string
	Kind *string
	Meta map[string]any
}

// ChatCleared empties the conversation and resets the id counter.
type ChatCleared struct{}

// Message is a projected conversation message.
type Message struct {
	ID   int
	Role Role
	Text string
	Kind string
	Meta map[string]any
}

// NewEvent builds an event stamped with the current time.
func NewEvent(eventType string, payload any) Event {
	return Event{Type: eventType, Timestamp: time.Now(), Payload: payload}
}
