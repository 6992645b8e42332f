// Package eventlog is the append-only event log at the center of hearthd.
// All conversation state is derived from the log: the Store records and
// fans out domain events, the Aggregate is a pure projection rebuilding the
// message list, and Conversation couples the two while owning message id
// allocation. History is the source of truth, not a side effect.
package eventlog
