package storage

import (
	"context"
	"errors"
)

// Store persists JSON-serializable records in a content-addressed network.
// A record's CID is derived from its content and is the only persistent
// handle to the blob. Implementations never cache: every Get re-fetches.
type Store interface {
	// Put serializes record, uploads it as a single immutable file and
	// returns its CID. Callers must not assume partial success on error.
	Put(ctx context.Context, record any) (string, error)

	// Get fetches the blob behind cid and decodes it into out.
	Get(ctx context.Context, cid string, out any) error
}

var (
	// ErrUnavailable is returned when a put or get cannot complete against
	// the storage network.
	ErrUnavailable = errors.New("content-addressed storage unavailable")

	// ErrNotFound is returned when no blob exists for the requested CID.
	ErrNotFound = errors.New("content not found")
)
