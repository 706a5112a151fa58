// Package store persists the catalog and its embeddings in BoltDB.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"go.etcd.io/bbolt"

	"catlens/internal/domain"
	"catlens/internal/port"
)

var (
	bucketItems      = []byte("items")
	bucketEmbeddings = []byte("embeddings")
)

// embedding keys are "<itemID>\x00<aspect>"; item IDs never contain NUL.
const embeddingKeySep = "\x00"

// BoltStore implements CatalogStore on a single BoltDB file. Embeddings
// are mirrored into memory at open so that full-scan scoring never touches
// disk per vector.
type BoltStore struct {
	db *bbolt.DB

	mu      sync.RWMutex
	vectors map[domain.Aspect]map[string][]float32
}

var _ port.CatalogStore = (*BoltStore)(nil)

type storedItem struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand,omitempty"`
	Price       float64 `json:"price"`
}

type storedVector struct {
	Vector []float32 `json:"v"`
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketItems, bucketEmbeddings} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &BoltStore{
		db:      db,
		vectors: make(map[domain.Aspect]map[string][]float32),
	}
	if err := s.loadVectors(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load embeddings: %w", err)
	}
	return s, nil
}

func (s *BoltStore) loadVectors() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEmbeddings)
		return b.ForEach(func(k, v []byte) error {
			itemID, aspect, ok := splitEmbeddingKey(k)
			if !ok {
				return nil // skip malformed entries
			}
			var stored storedVector
			if err := json.Unmarshal(v, &stored); err != nil {
				return nil
			}
			s.cacheVector(itemID, aspect, stored.Vector)
			return nil
		})
	})
}

func (s *BoltStore) cacheVector(itemID string, aspect domain.Aspect, vector []float32) {
	byItem, ok := s.vectors[aspect]
	if !ok {
		byItem = make(map[string][]float32)
		s.vectors[aspect] = byItem
	}
	byItem[itemID] = vector
}

func splitEmbeddingKey(k []byte) (string, domain.Aspect, bool) {
	i := bytes.IndexByte(k, 0)
	if i < 0 {
		return "", "", false
	}
	return string(k[:i]), domain.Aspect(k[i+1:]), true
}

func (s *BoltStore) PutItem(item domain.Item) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		meta := storedItem{
			Name:        item.Name,
			Description: item.Description,
			Category:    item.Category,
			Brand:       item.Brand,
			Price:       item.Price,
		}
		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketItems).Put([]byte(item.ID), data)
	})
}

func (s *BoltStore) GetItem(id string) (domain.Item, error) {
	var item domain.Item
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketItems).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", domain.ErrUnknownItem, id)
		}
		var meta storedItem
		if err := json.Unmarshal(data, &meta); err != nil {
			return fmt.Errorf("failed to decode item %s: %w", id, err)
		}
		item = domain.Item{
			ID:          id,
			Name:        meta.Name,
			Description: meta.Description,
			Category:    meta.Category,
			Brand:       meta.Brand,
			Price:       meta.Price,
		}
		return nil
	})
	return item, err
}

func (s *BoltStore) ListItems() ([]domain.Item, error) {
	var items []domain.Item
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketItems).ForEach(func(k, v []byte) error {
			var meta storedItem
			if err := json.Unmarshal(v, &meta); err != nil {
				return nil // skip corrupted entries
			}
			items = append(items, domain.Item{
				ID:          string(k),
				Name:        meta.Name,
				Description: meta.Description,
				Category:    meta.Category,
				Brand:       meta.Brand,
				Price:       meta.Price,
			})
			return nil
		})
	})
	return items, err
}

func (s *BoltStore) DeleteItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketItems).Delete([]byte(id)); err != nil {
			return err
		}
		b := tx.Bucket(bucketEmbeddings)
		prefix := []byte(id + embeddingKeySep)
		var keys [][]byte
		c := b.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		for _, byItem := range s.vectors {
			delete(byItem, id)
		}
		return nil
	})
}

func (s *BoltStore) PutEmbedding(itemID string, aspect domain.Aspect, vector []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(storedVector{Vector: vector})
		if err != nil {
			return err
		}
		key := []byte(itemID + embeddingKeySep + string(aspect))
		if err := tx.Bucket(bucketEmbeddings).Put(key, data); err != nil {
			return err
		}
		stored := make([]float32, len(vector))
		copy(stored, vector)
		s.cacheVector(itemID, aspect, stored)
		return nil
	})
}

func (s *BoltStore) GetEmbeddingSet(itemID string) (domain.EmbeddingSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := make(domain.EmbeddingSet)
	for aspect, byItem := range s.vectors {
		if vector, ok := byItem[itemID]; ok {
			set[aspect] = vector
		}
	}
	return set, nil
}

func (s *BoltStore) ListEmbeddings(aspect domain.Aspect) (map[string][]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vectors := make(map[string][]float32, len(s.vectors[aspect]))
	for id, vector := range s.vectors[aspect] {
		vectors[id] = vector
	}
	return vectors, nil
}

func (s *BoltStore) Count() (int, error) {
	var count int
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(bucketItems).Stats().KeyN
		return nil
	})
	return count, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
