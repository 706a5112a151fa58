// Package memstore provides an in-memory CatalogStore for tests and
// small catalogs.
package memstore

import (
	"fmt"
	"sync"

	"catlens/internal/domain"
	"catlens/internal/port"
)

type MemoryStore struct {
	mu         sync.RWMutex
	items      map[string]domain.Item
	embeddings map[domain.Aspect]map[string][]float32
}

var _ port.CatalogStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:      make(map[string]domain.Item),
		embeddings: make(map[domain.Aspect]map[string][]float32),
	}
}

func (s *MemoryStore) PutItem(item domain.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
	return nil
}

func (s *MemoryStore) GetItem(id string) (domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return domain.Item{}, fmt.Errorf("%w: %s", domain.ErrUnknownItem, id)
	}
	return item, nil
}

func (s *MemoryStore) ListItems() ([]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]domain.Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	return items, nil
}

func (s *MemoryStore) DeleteItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	for _, vectors := range s.embeddings {
		delete(vectors, id)
	}
	return nil
}

func (s *MemoryStore) PutEmbedding(itemID string, aspect domain.Aspect, vector []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	vectors, ok := s.embeddings[aspect]
	if !ok {
		vectors = make(map[string][]float32)
		s.embeddings[aspect] = vectors
	}
	stored := make([]float32, len(vector))
	copy(stored, vector)
	vectors[itemID] = stored
	return nil
}

func (s *MemoryStore) GetEmbeddingSet(itemID string) (domain.EmbeddingSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := make(domain.EmbeddingSet)
	for aspect, vectors := range s.embeddings {
		if vector, ok := vectors[itemID]; ok {
			set[aspect] = vector
		}
	}
	return set, nil
}

func (s *MemoryStore) ListEmbeddings(aspect domain.Aspect) (map[string][]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vectors := make(map[string][]float32, len(s.embeddings[aspect]))
	for id, vector := range s.embeddings[aspect] {
		vectors[id] = vector
	}
	return vectors, nil
}

func (s *MemoryStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
