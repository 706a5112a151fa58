package port

import "catlens/internal/domain"

// CatalogStore is a read-mostly repository of items and their embeddings.
// Embeddings are created or overwritten by the external embedding pipeline;
// the scoring engine only reads them.
type CatalogStore interface {
	PutItem(item domain.Item) error

	// GetItem returns the item or an error wrapping domain.ErrUnknownItem.
	GetItem(id string) (domain.Item, error)

	ListItems() ([]domain.Item, error)

	DeleteItem(id string) error

	PutEmbedding(itemID string, aspect domain.Aspect, vector []float32) error

	// GetEmbeddingSet returns every stored vector for the item, keyed by
	// aspect. The set is empty (not an error) when nothing was generated.
	GetEmbeddingSet(itemID string) (domain.EmbeddingSet, error)

	// ListEmbeddings returns all vectors stored for one aspect, keyed by
	// item ID.
	ListEmbeddings(aspect domain.Aspect) (map[string][]float32, error)

	Count() (int, error)

	Close() error
}
