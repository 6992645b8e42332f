// Package kvstore provides the key-value persistence boundary used by
// components that need to survive restarts (currently the scope registry).
// Implementations must tolerate missing keys and malformed payloads.
package kvstore
