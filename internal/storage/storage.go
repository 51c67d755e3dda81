// Package storage provides the persistence adapter behind the variable store
// and the recent-prompt history: asynchronous key-value storage where every
// write to a key is atomic. Collections are stored whole under a single key,
// so a failed write leaves the prior value intact.
package storage

import "context"

// Keys used by the application. One key per collection.
const (
	KeyVariables     = "variables"
	KeyRecentPrompts = "recent_prompts"
)

// Adapter is the host storage the engine depends on. Each call is a
// suspension point and may fail; implementations must apply each Set
// atomically for its key.
type Adapter interface {
	// Get returns the value for key, or ok=false if the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key, replacing any prior value.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// Notifier is an optional adapter capability: a change feed of written keys.
// The built-in stores re-read on every call and do not use it; it is for
// embedding hosts that cache snapshots and want an invalidation signal. It
// is not a merge mechanism (multi-surface races stay a documented gap).
type Notifier interface {
	// Changes returns a channel receiving the key of every Set/Remove.
	// The channel is never closed; sends are non-blocking and may be dropped.
	Changes() <-chan string
}
