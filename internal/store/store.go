// Package store defines the persistence interface for the stock game.
// State is organized as named JSON documents (stock catalog, event
// catalogs, market state, one portfolio per identity, the playing-group
// set). Implementations include the local filesystem (default),
// PostgreSQL, Redis, and in-memory (for testing).
package store

import "context"

// Store persists named JSON documents.
//
// Load unmarshals the document into out and reports whether it existed;
// a missing document is not an error — callers supply their own default.
// Save replaces the document atomically enough that a crash mid-write
// never corrupts the previous good copy.
type Store interface {
	Load(ctx context.Context, name string, out any) (bool, error)
	Save(ctx context.Context, name string, v any) error
}
