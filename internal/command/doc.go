// Package command implements an in-process command bus: each command type is
// routed to exactly one handler through an ordered middleware chain. The
// first middleware registered is the outermost layer of the onion.
package command
