// Package recommend ranks substitute and cross-sell candidates for a
// target item.
package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"catlens/internal/domain"
	"catlens/internal/port"
	"catlens/internal/vectormath"
)

// Options holds the candidate filters for both modes. Substitutes want
// high similarity inside a price band; cross-sell wants a similarity band
// that deliberately excludes near-duplicates and unrelated items.
type Options struct {
	// PriceDelta bounds substitute prices to target ± target*PriceDelta.
	PriceDelta float64
	// SubstituteFloor is the minimum aspect similarity for substitutes.
	SubstituteFloor float64
	// RatingCutoff is the minimum 0-10 suitability rating to return.
	RatingCutoff float64
	// CrossSellLow and CrossSellHigh bound the cross-sell similarity band.
	CrossSellLow  float64
	CrossSellHigh float64
	// CrossCategoryBonus nudges cross-category pairs upward: complementary
	// items are more often in a different category than the target.
	CrossCategoryBonus float64
	Logger             *zerolog.Logger
}

func DefaultOptions() Options {
	return Options{
		PriceDelta:         0.3,
		SubstituteFloor:    0.5,
		RatingCutoff:       6.0,
		CrossSellLow:       0.4,
		CrossSellHigh:      0.8,
		CrossCategoryBonus: 0.1,
	}
}

type Ranker struct {
	store  port.CatalogStore
	oracle port.Oracle
	opts   Options
	logger zerolog.Logger
}

// NewRanker creates a Ranker. Oracle is optional: without one, substitute
// ratings are derived from similarity and cross-sell candidates are not
// gated.
func NewRanker(store port.CatalogStore, oracle port.Oracle, opts Options) *Ranker {
	r := &Ranker{store: store, oracle: oracle, opts: opts}
	if opts.Logger != nil {
		r.logger = *opts.Logger
	} else {
		r.logger = zerolog.Nop()
	}
	return r
}

// Rank returns the top-k recommendations for the target in the given mode.
// An empty result is a normal outcome; ErrUnknownItem is returned when the
// target has no record.
func (r *Ranker) Rank(ctx context.Context, targetID string, mode domain.Mode, topK int) ([]domain.Recommendation, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidTopK, topK)
	}

	target, err := r.store.GetItem(targetID)
	if err != nil {
		return nil, err
	}

	targetSet, err := r.store.GetEmbeddingSet(targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load embeddings for %s: %w", targetID, err)
	}

	switch mode {
	case domain.ModeSubstitutes:
		return r.substitutes(ctx, target, targetSet, topK)
	case domain.ModeCrossSell:
		return r.crossSell(ctx, target, targetSet, topK)
	default:
		return nil, fmt.Errorf("unsupported recommendation mode %q", mode)
	}
}

// substitutes restricts candidates to the target's category and price
// band, requires aspect similarity at or above the floor, and ranks by a
// 0-10 suitability rating with a cutoff.
func (r *Ranker) substitutes(ctx context.Context, target domain.Item, targetSet domain.EmbeddingSet, topK int) ([]domain.Recommendation, error) {
	aspect := domain.AspectAttributes
	queryVector, ok := targetSet[aspect]
	if !ok {
		aspect = domain.AspectFull
		queryVector, ok = targetSet[aspect]
	}
	if !ok {
		// The target has no usable embedding yet: a data-quality gap.
		return nil, nil
	}

	candidates, err := r.collect(target, aspect, queryVector, func(item domain.Item, sim float64) bool {
		if item.Category != target.Category {
			return false
		}
		low := target.Price * (1 - r.opts.PriceDelta)
		high := target.Price * (1 + r.opts.PriceDelta)
		if item.Price < low || item.Price > high {
			return false
		}
		return sim >= r.opts.SubstituteFloor
	})
	if err != nil {
		return nil, err
	}

	recs := make([]domain.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		recs = append(recs, domain.Recommendation{
			ItemID:     c.item.ID,
			Score:      r.rateSubstitute(ctx, target, c.item, c.similarity),
			Similarity: c.similarity,
		})
	}

	filtered := recs[:0]
	for _, rec := range recs {
		if rec.Score >= r.opts.RatingCutoff {
			filtered = append(filtered, rec)
		}
	}
	recs = filtered

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		if recs[i].Similarity != recs[j].Similarity {
			return recs[i].Similarity > recs[j].Similarity
		}
		return recs[i].ItemID < recs[j].ItemID
	})
	if topK < len(recs) {
		recs = recs[:topK]
	}

	r.attachRationales(ctx, target, recs, "substitute")
	return recs, nil
}

// crossSell keeps candidates whose similarity falls inside the band and
// boosts cross-category pairs.
func (r *Ranker) crossSell(ctx context.Context, target domain.Item, targetSet domain.EmbeddingSet, topK int) ([]domain.Recommendation, error) {
	queryVector, ok := targetSet[domain.AspectFull]
	if !ok {
		return nil, nil
	}

	candidates, err := r.collect(target, domain.AspectFull, queryVector, func(_ domain.Item, sim float64) bool {
		return sim >= r.opts.CrossSellLow && sim <= r.opts.CrossSellHigh
	})
	if err != nil {
		return nil, err
	}

	recs := make([]domain.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		if r.oracle != nil {
			good, err := r.oracle.ValidateBool(ctx, crossSellPrompt(target, c.item))
			if err != nil {
				r.logger.Debug().Err(err).Str("item", c.item.ID).
					Msg("oracle unavailable, keeping cross-sell candidate")
			} else if !good {
				continue
			}
		}
		score := c.similarity
		if c.item.Category != target.Category {
			score += r.opts.CrossCategoryBonus
		}
		recs = append(recs, domain.Recommendation{
			ItemID:     c.item.ID,
			Score:      score,
			Similarity: c.similarity,
		})
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].ItemID < recs[j].ItemID
	})
	if topK < len(recs) {
		recs = recs[:topK]
	}

	r.attachRationales(ctx, target, recs, "complementary")
	return recs, nil
}

type candidate struct {
	item       domain.Item
	similarity float64
}

// collect scans every item holding an embedding for the aspect and keeps
// the ones passing the filter. Candidates whose stored vector has the
// wrong dimension are skipped, not fatal.
func (r *Ranker) collect(target domain.Item, aspect domain.Aspect, queryVector []float32, keep func(domain.Item, float64) bool) ([]candidate, error) {
	vectors, err := r.store.ListEmbeddings(aspect)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s embeddings: %w", aspect, err)
	}
	items, err := r.store.ListItems()
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	byID := make(map[string]domain.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	candidates := make([]candidate, 0)
	for id, vector := range vectors {
		if id == target.ID {
			continue
		}
		item, ok := byID[id]
		if !ok {
			continue
		}
		sim, err := vectormath.CosineSimilarity(queryVector, vector)
		if err != nil {
			r.logger.Warn().Err(err).Str("item", id).Str("aspect", string(aspect)).
				Msg("skipping candidate")
			continue
		}
		if keep(item, sim) {
			candidates = append(candidates, candidate{item: item, similarity: sim})
		}
	}
	return candidates, nil
}

// rateSubstitute asks the oracle for a 0-10 suitability rating, falling
// back to a similarity-derived score when no oracle is configured or the
// call fails. The rating decides the ranking; it must always be defined.
func (r *Ranker) rateSubstitute(ctx context.Context, target, item domain.Item, similarity float64) float64 {
	if r.oracle == nil {
		return clampRating(similarity * 10)
	}
	rating, err := r.oracle.ScoreScalar(ctx, substitutePrompt(target, item))
	if err != nil {
		r.logger.Debug().Err(err).Str("item", item.ID).
			Msg("oracle unavailable, rating from similarity")
		return clampRating(similarity * 10)
	}
	return clampRating(rating)
}

// attachRationales asks the oracle for a short explanation per result.
// Failures never change the ranking; the rationale just stays empty.
func (r *Ranker) attachRationales(ctx context.Context, target domain.Item, recs []domain.Recommendation, relation string) {
	if r.oracle == nil {
		return
	}
	for i := range recs {
		item, err := r.store.GetItem(recs[i].ItemID)
		if err != nil {
			continue
		}
		text, err := r.oracle.Explain(ctx, rationalePrompt(target, item, relation))
		if err != nil {
			r.logger.Debug().Err(err).Str("item", item.ID).Msg("no rationale")
			continue
		}
		recs[i].Rationale = text
	}
}

func clampRating(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

func substitutePrompt(target, item domain.Item) string {
	return fmt.Sprintf(
		"Rate from 0 to 10 how well the candidate works as a substitute for the target. "+
			"Respond with a single number only.\n\n"+
			"Target: %s | brand: %s | category: %s | price: %.2f\n"+
			"Candidate: %s | brand: %s | category: %s | price: %.2f",
		target.Name, target.Brand, target.Category, target.Price,
		item.Name, item.Brand, item.Category, item.Price,
	)
}

func crossSellPrompt(target, item domain.Item) string {
	return fmt.Sprintf(
		"Would a customer buying %q (%s) plausibly also want %q (%s)? Answer true or false only.",
		target.Name, target.Category, item.Name, item.Category,
	)
}

func rationalePrompt(target, item domain.Item, relation string) string {
	return fmt.Sprintf(
		"In one sentence, explain why %q is a good %s for %q.",
		item.Name, relation, target.Name,
	)
}
