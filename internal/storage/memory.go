package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is an in-process Store for tests and the offline demo. CIDs
// are content-derived (hex SHA-256 of the serialized record), so identical
// records map to identical CIDs like a real content-addressed network.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte

	// PutErr and GetErr, when set, are returned by every call. FailCIDs
	// marks individual blobs whose Get fails, for partial-result tests.
	PutErr   error
	GetErr   error
	FailCIDs map[string]error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Put serializes record and stores it under its content hash.
func (s *MemoryStore) Put(ctx context.Context, record any) (string, error) {
	if s.PutErr != nil {
		return "", s.PutErr
	}

	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}

	sum := sha256.Sum256(data)
	cid := "baf" + hex.EncodeToString(sum[:])

	s.mu.Lock()
	s.blobs[cid] = data
	s.mu.Unlock()

	return cid, nil
}

// Get decodes the blob stored under cid into out.
func (s *MemoryStore) Get(ctx context.Context, cid string, out any) error {
	if s.GetErr != nil {
		return s.GetErr
	}
	if err, ok := s.FailCIDs[cid]; ok {
		return err
	}

	s.mu.RLock()
	data, ok := s.blobs[cid]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: cid %s", ErrNotFound, cid)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode blob %s: %w", cid, err)
	}

	return nil
}

// Len returns the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

var _ Store = (*MemoryStore)(nil)
