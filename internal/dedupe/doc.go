// Package dedupe suppresses repeated signals that share an identity key
// within a configurable time window. Entries expire by time comparison at
// lookup; the key space is bounded by evicting the oldest key, so no
// background cleanup is needed.
package dedupe
