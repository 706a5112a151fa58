package recommend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catlens/internal/adapter/memstore"
	"catlens/internal/domain"
)

type fakeOracle struct {
	validate func(prompt string) (bool, error)
	score    func(prompt string) (float64, error)
	explain  func(prompt string) (string, error)
}

func (f *fakeOracle) ValidateBool(_ context.Context, prompt string) (bool, error) {
	if f.validate == nil {
		return true, nil
	}
	return f.validate(prompt)
}

func (f *fakeOracle) ScoreScalar(_ context.Context, prompt string) (float64, error) {
	if f.score == nil {
		return 0, errors.New("no scorer")
	}
	return f.score(prompt)
}

func (f *fakeOracle) Explain(_ context.Context, prompt string) (string, error) {
	if f.explain == nil {
		return "", errors.New("no explainer")
	}
	return f.explain(prompt)
}

// substituteStore builds a catalog around target "T" (tools, price 100).
// Attribute vectors are chosen so that cosine similarity against {1, 0}
// is exact or comfortably away from the floor and cutoff.
func substituteStore(t *testing.T) *memstore.MemoryStore {
	t.Helper()
	store := memstore.NewMemoryStore()

	put := func(item domain.Item, attr []float32) {
		require.NoError(t, store.PutItem(item))
		if attr != nil {
			require.NoError(t, store.PutEmbedding(item.ID, domain.AspectAttributes, attr))
		}
	}

	put(domain.Item{ID: "T", Name: "drill T", Category: "tools", Price: 100}, []float32{1, 0})
	put(domain.Item{ID: "s1", Name: "drill s1", Category: "tools", Price: 100}, []float32{1, 0})         // sim 1.0
	put(domain.Item{ID: "s2", Name: "drill s2", Category: "tools", Price: 95}, []float32{1, 0.75})       // sim 0.8
	put(domain.Item{ID: "s3", Name: "drill s3", Category: "tools", Price: 110}, []float32{1, 1.1547})    // sim ~0.65
	put(domain.Item{ID: "far-price", Name: "drill far", Category: "tools", Price: 200}, []float32{1, 0}) // outside band
	put(domain.Item{ID: "other-cat", Name: "hose", Category: "garden", Price: 100}, []float32{1, 0})
	put(domain.Item{ID: "low-sim", Name: "saw", Category: "tools", Price: 100}, []float32{1, 3}) // sim ~0.32

	return store
}

func TestRank_Substitutes_NoOracle(t *testing.T) {
	ranker := NewRanker(substituteStore(t), nil, DefaultOptions())

	recs, err := ranker.Rank(context.Background(), "T", domain.ModeSubstitutes, 10)
	require.NoError(t, err)

	// Without an oracle the rating is similarity*10, so the 6.0 cutoff
	// keeps s1 (10), s2 (8) and s3 (~6.5).
	require.Len(t, recs, 3)
	assert.Equal(t, "s1", recs[0].ItemID)
	assert.Equal(t, "s2", recs[1].ItemID)
	assert.Equal(t, "s3", recs[2].ItemID)
	assert.Equal(t, 10.0, recs[0].Score)
	assert.Empty(t, recs[0].Rationale)
}

func TestRank_Substitutes_OracleRatingDecides(t *testing.T) {
	oracle := &fakeOracle{
		score: func(prompt string) (float64, error) {
			switch {
			case strings.Contains(prompt, "drill s1"):
				return 6.5, nil
			case strings.Contains(prompt, "drill s2"):
				return 9, nil
			case strings.Contains(prompt, "drill s3"):
				return 3, nil // below cutoff, dropped
			}
			return 0, nil
		},
		explain: func(string) (string, error) { return "close match in the same line", nil },
	}
	ranker := NewRanker(substituteStore(t), oracle, DefaultOptions())

	recs, err := ranker.Rank(context.Background(), "T", domain.ModeSubstitutes, 10)
	require.NoError(t, err)

	require.Len(t, recs, 2)
	assert.Equal(t, "s2", recs[0].ItemID)
	assert.Equal(t, 9.0, recs[0].Score)
	assert.Equal(t, "s1", recs[1].ItemID)
	assert.Equal(t, "close match in the same line", recs[0].Rationale)
}

func TestRank_Substitutes_OracleFailureFallsBackToSimilarity(t *testing.T) {
	oracle := &fakeOracle{
		score: func(string) (float64, error) { return 0, errors.New("timeout") },
	}
	ranker := NewRanker(substituteStore(t), oracle, DefaultOptions())

	recs, err := ranker.Rank(context.Background(), "T", domain.ModeSubstitutes, 10)
	require.NoError(t, err)

	require.Len(t, recs, 3)
	assert.Equal(t, "s1", recs[0].ItemID)
	assert.Equal(t, 10.0, recs[0].Score)
}

func TestRank_Substitutes_RationaleFailureNeverBlocks(t *testing.T) {
	oracle := &fakeOracle{
		score:   func(string) (float64, error) { return 8, nil },
		explain: func(string) (string, error) { return "", errors.New("flaky") },
	}
	ranker := NewRanker(substituteStore(t), oracle, DefaultOptions())

	recs, err := ranker.Rank(context.Background(), "T", domain.ModeSubstitutes, 10)
	require.NoError(t, err)

	require.NotEmpty(t, recs)
	for _, rec := range recs {
		assert.Empty(t, rec.Rationale)
	}
}

func TestRank_Substitutes_TiesBrokenBySimilarity(t *testing.T) {
	oracle := &fakeOracle{
		score: func(string) (float64, error) { return 7, nil },
	}
	ranker := NewRanker(substituteStore(t), oracle, DefaultOptions())

	recs, err := ranker.Rank(context.Background(), "T", domain.ModeSubstitutes, 2)
	require.NoError(t, err)

	require.Len(t, recs, 2)
	assert.Equal(t, "s1", recs[0].ItemID) // sim 1.0 beats 0.8 at equal rating
	assert.Equal(t, "s2", recs[1].ItemID)
}

func TestRank_Substitutes_EmptyCategory(t *testing.T) {
	store := memstore.NewMemoryStore()
	require.NoError(t, store.PutItem(domain.Item{ID: "lonely", Category: "unique", Price: 50}))
	require.NoError(t, store.PutEmbedding("lonely", domain.AspectAttributes, []float32{1, 0}))
	require.NoError(t, store.PutItem(domain.Item{ID: "other", Category: "misc", Price: 50}))
	require.NoError(t, store.PutEmbedding("other", domain.AspectAttributes, []float32{1, 0}))

	ranker := NewRanker(store, nil, DefaultOptions())

	recs, err := ranker.Rank(context.Background(), "lonely", domain.ModeSubstitutes, 5)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRank_Substitutes_FallsBackToFullAspect(t *testing.T) {
	store := memstore.NewMemoryStore()
	require.NoError(t, store.PutItem(domain.Item{ID: "T", Category: "tools", Price: 100}))
	require.NoError(t, store.PutEmbedding("T", domain.AspectFull, []float32{1, 0}))
	require.NoError(t, store.PutItem(domain.Item{ID: "s1", Category: "tools", Price: 100}))
	require.NoError(t, store.PutEmbedding("s1", domain.AspectFull, []float32{1, 0}))

	ranker := NewRanker(store, nil, DefaultOptions())

	recs, err := ranker.Rank(context.Background(), "T", domain.ModeSubstitutes, 5)
	require.NoError(t, err)

	require.Len(t, recs, 1)
	assert.Equal(t, "s1", recs[0].ItemID)
}

func TestRank_Substitutes_TargetWithoutEmbeddings(t *testing.T) {
	store := memstore.NewMemoryStore()
	require.NoError(t, store.PutItem(domain.Item{ID: "T", Category: "tools", Price: 100}))

	ranker := NewRanker(store, nil, DefaultOptions())

	recs, err := ranker.Rank(context.Background(), "T", domain.ModeSubstitutes, 5)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func crossSellStore(t *testing.T) *memstore.MemoryStore {
	t.Helper()
	store := memstore.NewMemoryStore()

	put := func(item domain.Item, full []float32) {
		require.NoError(t, store.PutItem(item))
		require.NoError(t, store.PutEmbedding(item.ID, domain.AspectFull, full))
	}

	put(domain.Item{ID: "T", Name: "tent", Category: "camping", Price: 300}, []float32{1, 0})
	put(domain.Item{ID: "dup", Name: "tent copy", Category: "camping", Price: 290}, []float32{1, 0})          // sim 1.0, too similar
	put(domain.Item{ID: "unrelated", Name: "lipstick", Category: "beauty", Price: 20}, []float32{0, 1})       // sim 0.0
	put(domain.Item{ID: "same-cat", Name: "tarp", Category: "camping", Price: 60}, []float32{1, 0.75})        // sim 0.8, band edge
	put(domain.Item{ID: "cross-cat", Name: "camp stove", Category: "kitchen", Price: 80}, []float32{1, 1})    // sim ~0.71
	put(domain.Item{ID: "cross-low", Name: "cooler", Category: "kitchen", Price: 90}, []float32{1, 1.9})      // sim ~0.47

	return store
}

func TestRank_CrossSell_BandAndBonus(t *testing.T) {
	ranker := NewRanker(crossSellStore(t), nil, DefaultOptions())

	recs, err := ranker.Rank(context.Background(), "T", domain.ModeCrossSell, 10)
	require.NoError(t, err)

	require.Len(t, recs, 3)
	// The cross-category bonus pushes the stove (0.71 + 0.1) past the
	// same-category tarp sitting on the band edge (0.8).
	assert.Equal(t, "cross-cat", recs[0].ItemID)
	assert.Equal(t, "same-cat", recs[1].ItemID)
	assert.Equal(t, "cross-low", recs[2].ItemID)

	for _, rec := range recs {
		assert.NotEqual(t, "dup", rec.ItemID)
		assert.NotEqual(t, "unrelated", rec.ItemID)
	}
}

func TestRank_CrossSell_OracleGateRejects(t *testing.T) {
	oracle := &fakeOracle{
		validate: func(prompt string) (bool, error) {
			return !strings.Contains(prompt, "tarp"), nil
		},
		explain: func(string) (string, error) { return "pairs well on trips", nil },
	}
	ranker := NewRanker(crossSellStore(t), oracle, DefaultOptions())

	recs, err := ranker.Rank(context.Background(), "T", domain.ModeCrossSell, 10)
	require.NoError(t, err)

	require.Len(t, recs, 2)
	assert.Equal(t, "cross-cat", recs[0].ItemID)
	assert.Equal(t, "cross-low", recs[1].ItemID)
	assert.Equal(t, "pairs well on trips", recs[0].Rationale)
}

func TestRank_CrossSell_OracleFailureKeepsCandidate(t *testing.T) {
	oracle := &fakeOracle{
		validate: func(string) (bool, error) { return false, errors.New("timeout") },
	}
	ranker := NewRanker(crossSellStore(t), oracle, DefaultOptions())

	recs, err := ranker.Rank(context.Background(), "T", domain.ModeCrossSell, 10)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestRank_UnknownItem(t *testing.T) {
	ranker := NewRanker(memstore.NewMemoryStore(), nil, DefaultOptions())

	_, err := ranker.Rank(context.Background(), "ghost", domain.ModeSubstitutes, 5)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownItem)
}

func TestRank_InvalidTopK(t *testing.T) {
	ranker := NewRanker(memstore.NewMemoryStore(), nil, DefaultOptions())

	_, err := ranker.Rank(context.Background(), "T", domain.ModeSubstitutes, 0)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTopK)
}

func TestRank_UnsupportedMode(t *testing.T) {
	store := memstore.NewMemoryStore()
	require.NoError(t, store.PutItem(domain.Item{ID: "T"}))
	ranker := NewRanker(store, nil, DefaultOptions())

	_, err := ranker.Rank(context.Background(), "T", domain.Mode("upsell"), 5)
	require.Error(t, err)
}
