// Package search ranks catalog items against a query vector for one aspect.
package search

import (
	"fmt"
	"sort"

	"catlens/internal/domain"
	"catlens/internal/port"
	"catlens/internal/vectormath"
)

type Searcher struct {
	store port.CatalogStore
}

func NewSearcher(store port.CatalogStore) *Searcher {
	return &Searcher{store: store}
}

// Search scans every item holding an embedding for the aspect, keeps the
// ones at or above minSimilarity, and returns the top-k sorted by
// descending similarity with ties broken by ascending item ID. An empty
// result is a normal outcome, not an error.
func (s *Searcher) Search(queryVector []float32, aspect domain.Aspect, topK int, minSimilarity float64) ([]domain.SearchResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidTopK, topK)
	}

	vectors, err := s.store.ListEmbeddings(aspect)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s embeddings: %w", aspect, err)
	}

	results := make([]domain.SearchResult, 0, len(vectors))
	for id, vector := range vectors {
		sim, err := vectormath.CosineSimilarity(queryVector, vector)
		if err != nil {
			return nil, fmt.Errorf("query vs item %s (aspect %s): %w", id, aspect, err)
		}
		if sim >= minSimilarity {
			results = append(results, domain.SearchResult{ItemID: id, Similarity: sim})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].ItemID < results[j].ItemID
	})

	if topK < len(results) {
		results = results[:topK]
	}

	return results, nil
}
