// Package intent turns free text into a canonical intent and routes it to an
// eligible capability provider. Detection is two-stage: an optional
// probabilistic classifier is trusted when it answers well-formed, otherwise
// a deterministic priority-ordered pattern table decides. The table lives in
// an embedded TOML file so intents are data, not code branches.
package intent
