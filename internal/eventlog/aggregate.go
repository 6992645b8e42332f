// ABOUTME: Pure projection rebuilding the conversation message list from events.
// ABOUTME: Apply is total: unrecognized event types are ignored, patches of absent ids are no-ops.

package eventlog

// Aggregate folds conversation events into an ordered message list and a
// monotonic next-id counter. It is a pure projection: it performs no I/O and
// never fails. The aggregate is not goroutine-safe; Conversation owns the
// locking for live use.
type Aggregate struct {
	messages []Message
	nextID   int
}

// NewAggregate returns an empty aggregate with the id counter at zero.
func NewAggregate() *Aggregate {
	return &Aggregate{}
}

// Apply folds a single event into the aggregate. Events the aggregate does
// not recognize are ignored so it can share a log with unrelated variants.
func (a *Aggregate) Apply(ev Event) {
	switch p := ev.Payload.(type) {
	case MessageAdded:
		a.messages = append(a.messages, Message{
			ID:   p.ID,
			Role: p.Role,
			Text: p.Text,
			Kind: p.Kind,
			Meta: cloneMeta(p.Meta),
		})
		if p.ID+1 > a.nextID {
			a.nextID = p.ID + 1
		}
	case MessageUpdated:
		a.patch(p)
	case ChatCleared:
		a.messages = nil
		a.nextID = 0
	}
}

// patch merges a partial update into the message with the matching id.
// Unknown ids are a no-op.
func (a *Aggregate) patch(p MessageUpdated) {
	for i := range a.messages {
		if a.messages[i].ID != p.ID {
			continue
		}
		if p.Text != nil {
			a.messages[i].Text = *p.Text
		}
		if p.Kind != nil {
			a.messages[i].Kind = *p.Kind
		}
		if len(p.Meta) > 0 {
			if a.messages[i].Meta == nil {
				a.messages[i].Meta = make(map[string]any, len(p.Meta))
			}
			for k, v := range p.Meta {
				a.messages[i].Meta[k] = v
			}
		}
		return
	}
}

// ReplayAll resets the aggregate and folds the given events in order. The
// result is exactly equivalent to applying the same sequence live.
func (a *Aggregate) ReplayAll(events []Event) {
	a.messages = nil
	a.nextID = 0
	for _, ev := range events {
		a.Apply(ev)
	}
}

// Messages returns a copy of the projected message list.
func (a *Aggregate) Messages() []Message {
	out := make([]Message, len(a.messages))
	copy(out, a.messages)
	for i := range out {
		out[i].Meta = cloneMeta(out[i].Meta)
	}
	return out
}

// NextID returns the id the next added message should use.
func (a *Aggregate) NextID() int {
	return a.nextID
}

func cloneMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
