// Package vectormath provides the similarity primitives shared by search,
// duplicate detection, and recommendation scoring.
package vectormath

import (
	"fmt"
	"math"

	"catlens/internal/domain"
)

// WeightedScore pairs a per-aspect similarity score with its blend weight.
type WeightedScore struct {
	Score  float64
	Weight float64
}

// CosineSimilarity returns the cosine similarity of a and b in [-1, 1].
// A zero vector on either side yields exactly 0 so that downstream
// threshold comparisons stay well-defined.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// WeightedCombine blends scores into Σ(score·weight) / Σ(weight).
// Weights need not sum to 1; normalization is internal.
func WeightedCombine(scores []WeightedScore) (float64, error) {
	if len(scores) == 0 {
		return 0, fmt.Errorf("%w: no scores to combine", domain.ErrEmptyInput)
	}

	var sum, totalWeight float64
	for _, s := range scores {
		sum += s.Score * s.Weight
		totalWeight += s.Weight
	}

	if totalWeight == 0 {
		return 0, nil
	}

	return sum / totalWeight, nil
}
