// ABOUTME: Tests for the Conversation writing surface.
// ABOUTME: Validates id allocation, projection wiring, update patches, and clear.

package eventlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversation_AddMessage_AllocatesMonotonicIDs(t *testing.T) {
	s := NewStore(nil)
	c := NewConversation(s, nil)
	defer c.Close()

	id0, err := c.AddMessage(RoleUser, "first", "", nil)
	require.NoError(t, err)
	id1, err := c.AddMessage(RoleAssistant, "second", "", nil)
	require.NoError(t, err)

	assert.Equal(t, 0, id0)
	assert.Equal(t, 1, id1)
	assert.Equal(t, 2, c.NextID())

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, "second", msgs[1].Text)
}

func TestConversation_UpdateMessage(t *testing.T) {
	s := NewStore(nil)
	c := NewConversation(s, nil)
	defer c.Close()

	id, err := c.AddMessage(RoleUser, "hello", "", nil)
	require.NoError(t, err)

	require.NoError(t, c.UpdateMessage(MessageUpdated{ID: id, Text: strptr("hi")}))

	msgs := c.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi", msgs[0].Text)
}

func TestConversation_Clear_ResetsIDs(t *testing.T) {
	s := NewStore(nil)
	c := NewConversation(s, nil)
	defer c.Close()

	_, err := c.AddMessage(RoleUser, "hello", "", nil)
	require.NoError(t, err)

	require.NoError(t, c.Clear())

	assert.Empty(t, c.Messages())
	assert.Equal(t, 0, c.NextID())

	id, err := c.AddMessage(RoleUser, "again", "", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, id, "id counter restarts after clear")
}

func TestConversation_SharesLogWithOtherSubscribers(t *testing.T) {
	s := NewStore(nil)
	c := NewConversation(s, nil)
	defer c.Close()

	var seen []string
	s.OnAll(func(ev Event) { seen = append(seen, ev.Type) })

	_, err := c.AddMessage(RoleSystem, "alert text", "alert", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{TypeMessageAdded}, seen)
}

func TestConversation_RebuildFromStore(t *testing.T) {
	s := NewStore(nil)

	// Events appended before the conversation attaches
	require.NoError(t, s.Append(NewEvent(TypeMessageAdded, MessageAdded{ID: 0, Role: RoleUser, Text: "early"})))

	c := NewConversation(s, nil)
	defer c.Close()

	// A fresh conversation can replay the log it missed
	agg := NewAggregate()
	agg.ReplayAll(s.Events(Filter{}))
	require.Len(t, agg.Messages(), 1)
	assert.Equal(t, "early", agg.Messages()[0].Text)
}
