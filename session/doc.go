// Package session holds the per-conversation state of the form agent and the
// stores that persist it.
//
// Persistence model:
//   - Messages are text only (role + content). Tool blocks are transient.
//   - The schema document is stored as-is; versions are never rewritten.
//   - Sessions expire a fixed TTL after their last update.
package session
