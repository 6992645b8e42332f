// ABOUTME: Package documentation for alert.
// ABOUTME: Describes how external signals become conversation messages.

// Package alert adapts asynchronous external signals into conversation
// messages. A Bridge listens to a change-detection emitter and exposes
// callbacks for device-status and motion signals; each signal is deduped
// within a time window, rate limited per minute, formatted by severity, and
// appended to the event log as a system message.
package alert
