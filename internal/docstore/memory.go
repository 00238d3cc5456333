package docstore

import (
	"context"
	"sync"
	"sync/atomic"

	apperrors "github.com/Adithya-Monish-Kumar-K/memindex/pkg/errors"
)

// MemoryStore is an in-process Store. Its operations never fail except for
// GetDoc on an unknown ID.
type MemoryStore struct {
	mu     sync.RWMutex
	docs   map[ID]Fields
	nextID atomic.Uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[ID]Fields),
	}
}

// AddDoc assigns the next identifier with a single atomic increment, so
// concurrent callers always receive distinct, increasing IDs.
func (s *MemoryStore) AddDoc(_ context.Context, fields Fields) (ID, error) {
	doc := fields.Clone()
	id := ID(s.nextID.Add(1) - 1)
	s.mu.Lock()
	s.docs[id] = doc
	s.mu.Unlock()
	return id, nil
}

func (s *MemoryStore) GetDoc(_ context.Context, id ID) (Fields, error) {
	s.mu.RLock()
	doc, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrDocumentNotFound, "store id %d", id)
	}
	return doc.Clone(), nil
}

func (s *MemoryStore) Len(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
