package repository

import (
	"context"
	"sync"

	"github.com/futig/planner-backend/internal/entity"
)

// MemoryStore is a process-local VectorStore; its content is lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	chunks []entity.StoredChunk
	index  map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: make(map[string]int)}
}

func (s *MemoryStore) Upsert(_ context.Context, chunks []entity.StoredChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range chunks {
		if i, ok := s.index[c.ID]; ok {
			s.chunks[i] = c
			continue
		}
		s.index[c.ID] = len(s.chunks)
		s.chunks = append(s.chunks, c)
	}
	return nil
}

func (s *MemoryStore) Search(_ context.Context, query []float32, k int) ([]entity.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return topK(query, s.chunks, k), nil
}

func (s *MemoryStore) Count(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.chunks), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
