// ABOUTME: Package documentation for assistant.
// ABOUTME: Describes the ask pipeline from raw input to recorded reply.

// Package assistant exposes the "ask" surface of the system. A Service wires
// intent detection, scope filtering, provider routing, and fallback
// suggestions behind a single command on the bus, recording both sides of the
// exchange on the conversation log.
package assistant
