package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catlens/internal/domain"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBoltStore_ItemRoundTrip(t *testing.T) {
	s := newTestStore(t)

	item := domain.Item{
		ID:          "sku-1",
		Name:        "Cordless Drill",
		Description: "18V cordless drill with two batteries",
		Category:    "tools",
		Brand:       "Acme",
		Price:       129.99,
	}
	require.NoError(t, s.PutItem(item))

	got, err := s.GetItem("sku-1")
	require.NoError(t, err)
	assert.Equal(t, item, got)

	items, err := s.ListItems()
	require.NoError(t, err)
	assert.Len(t, items, 1)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBoltStore_GetItem_Unknown(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetItem("missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownItem)
}

func TestBoltStore_EmbeddingRoundTrip(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.PutItem(domain.Item{ID: "sku-1"}))
	require.NoError(t, s.PutEmbedding("sku-1", domain.AspectTitle, []float32{0.1, 0.2}))
	require.NoError(t, s.PutEmbedding("sku-1", domain.AspectFull, []float32{0.3, 0.4}))

	set, err := s.GetEmbeddingSet("sku-1")
	require.NoError(t, err)
	assert.Len(t, set, 2)
	assert.Equal(t, []float32{0.1, 0.2}, set[domain.AspectTitle])

	byAspect, err := s.ListEmbeddings(domain.AspectFull)
	require.NoError(t, err)
	assert.Equal(t, map[string][]float32{"sku-1": {0.3, 0.4}}, byAspect)
}

func TestBoltStore_EmbeddingsSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.db")

	s, err := NewBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, s.PutItem(domain.Item{ID: "sku-1", Name: "Drill"}))
	require.NoError(t, s.PutEmbedding("sku-1", domain.AspectTitle, []float32{1, 0}))
	require.NoError(t, s.Close())

	reopened, err := NewBoltStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	byAspect, err := reopened.ListEmbeddings(domain.AspectTitle)
	require.NoError(t, err)
	assert.Equal(t, map[string][]float32{"sku-1": {1, 0}}, byAspect)
}

func TestBoltStore_DeleteItemRemovesEmbeddings(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.PutItem(domain.Item{ID: "sku-1"}))
	require.NoError(t, s.PutEmbedding("sku-1", domain.AspectTitle, []float32{1, 0}))
	require.NoError(t, s.PutEmbedding("sku-1", domain.AspectFull, []float32{0, 1}))

	require.NoError(t, s.DeleteItem("sku-1"))

	_, err := s.GetItem("sku-1")
	assert.ErrorIs(t, err, domain.ErrUnknownItem)

	set, err := s.GetEmbeddingSet("sku-1")
	require.NoError(t, err)
	assert.Empty(t, set)

	byAspect, err := s.ListEmbeddings(domain.AspectTitle)
	require.NoError(t, err)
	assert.Empty(t, byAspect)
}

func TestBoltStore_PutEmbeddingOverwrites(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.PutEmbedding("sku-1", domain.AspectTitle, []float32{1, 0}))
	require.NoError(t, s.PutEmbedding("sku-1", domain.AspectTitle, []float32{0, 1}))

	byAspect, err := s.ListEmbeddings(domain.AspectTitle)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, byAspect["sku-1"])
}
