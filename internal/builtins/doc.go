// Package builtins provides the built-in capability providers that ship with
// the assistant.
//
// # Providers
//
//   - builtin:chat (chat:ask): conversational catch-all, answers through the
//     configured language model or a canned reply without one
//   - builtin:help (system:help): lists what the assistant can do
//   - builtin:clear (chat:clear): clears the conversation log
//
// # Registration
//
// Register all built-in providers:
//
//	builtins.RegisterAll(registry, builtins.Deps{...})
package builtins
