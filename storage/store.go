// Package storage persists per-owner ledger blobs with get-whole/put-whole
// semantics. A Store never interprets the ledger beyond (de)serializing it;
// all bookkeeping rules live above, in the repositories and services.
package storage

import (
	"context"
	"errors"

	"go-ledger-api/model"
)

// ErrPersistence wraps any backend failure (unavailable, corrupt write,
// connection loss). Malformed data on read is NOT an error: Load recovers
// by substituting an empty ledger.
var ErrPersistence = errors.New("persistence failure")

// Store is the persistence boundary for ledger blobs.
type Store interface {
	// Load returns the ledger for an owner. An owner with no stored data,
	// or with a malformed blob, gets a fresh empty ledger.
	Load(ctx context.Context, ownerID string) (*model.Ledger, error)
	// Save replaces the owner's stored ledger as a whole.
	Save(ctx context.Context, ownerID string, ledger *model.Ledger) error
}
