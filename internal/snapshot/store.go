package snapshot

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Store persists group snapshots. Implementations must round-trip a snapshot
// losslessly: every field survives, amounts stay exact integers.
type Store interface {
	// Save persists the snapshot, replacing any previous one for the group.
	Save(ctx context.Context, snap *Snapshot) error

	// Load returns the stored snapshot for the group, or ErrNotFound.
	Load(ctx context.Context, groupID uuid.UUID) (*Snapshot, error)

	// ListGroupIDs returns the ids of all stored groups.
	ListGroupIDs(ctx context.Context) ([]uuid.UUID, error)
}

// MemoryStore is an in-memory Store for tests and ephemeral runs. It keeps
// encoded JSON rather than live pointers so it exercises the same round-trip
// contract as a durable store.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[uuid.UUID][]byte
	order []uuid.UUID
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[uuid.UUID][]byte)}
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, snap *Snapshot) error {
	blob, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.blobs[snap.Group.ID]; !exists {
		s.order = append(s.order, snap.Group.ID)
	}
	s.blobs[snap.Group.ID] = blob
	return nil
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, groupID uuid.UUID) (*Snapshot, error) {
	s.mu.RLock()
	blob, ok := s.blobs[groupID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	var snap Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// ListGroupIDs implements Store.
func (s *MemoryStore) ListGroupIDs(_ context.Context) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]uuid.UUID(nil), s.order...), nil
}
