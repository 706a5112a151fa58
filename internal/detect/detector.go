// Package detect finds near-duplicate items: it scores item pairs across
// embedding aspects, gates candidates through an acceptance policy and an
// optional validation oracle, and clusters accepted matches into duplicate
// groups.
package detect

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"catlens/internal/domain"
	"catlens/internal/port"
	"catlens/internal/vectormath"
)

const (
	defaultWorkers   = 4
	defaultBatchSize = 500
)

// Options configures a Detector. Oracle is optional: when nil every
// candidate surviving the policy is accepted.
type Options struct {
	Weights          []domain.AspectWeight
	Policy           Policy
	SameCategoryOnly bool
	Oracle           port.Oracle
	// StrictValidation drops a candidate when the oracle call fails instead
	// of falling back to threshold-only acceptance.
	StrictValidation bool
	Workers          int
	BatchSize        int
	Logger           *zerolog.Logger
	// PromptFunc builds the duplicate-confirmation question for the oracle.
	PromptFunc func(a, b domain.Item) string
}

type Detector struct {
	weights    []domain.AspectWeight
	policy     Policy
	sameCat    bool
	oracle     port.Oracle
	strict     bool
	workers    int
	batchSize  int
	logger     zerolog.Logger
	promptFunc func(a, b domain.Item) string
}

func NewDetector(opts Options) *Detector {
	d := &Detector{
		weights:    opts.Weights,
		policy:     opts.Policy,
		sameCat:    opts.SameCategoryOnly,
		oracle:     opts.Oracle,
		strict:     opts.StrictValidation,
		workers:    opts.Workers,
		batchSize:  opts.BatchSize,
		promptFunc: opts.PromptFunc,
	}
	if d.workers <= 0 {
		d.workers = defaultWorkers
	}
	if d.batchSize <= 0 {
		d.batchSize = defaultBatchSize
	}
	if opts.Logger != nil {
		d.logger = *opts.Logger
	} else {
		d.logger = zerolog.Nop()
	}
	if d.promptFunc == nil {
		d.promptFunc = duplicatePrompt
	}
	return d
}

type pairJob struct {
	a, b domain.Item
}

// FindDuplicates scores all unordered item pairs and returns the accepted
// edges sorted by descending combined score. Pairs are generated with
// ItemA < ItemB, so no edge appears twice. Items without usable aspect
// embeddings contribute no edges; an empty input yields an empty result.
//
// Scoring fans out over a bounded worker pool in fixed-size batches.
// Cancellation is honored at batch boundaries: the in-flight batch
// finishes, the next one never starts, and ctx.Err() is returned.
func (d *Detector) FindDuplicates(ctx context.Context, items []domain.Item, embeddings map[string]domain.EmbeddingSet) ([]domain.SimilarityEdge, error) {
	if len(items) == 0 {
		return nil, nil
	}

	sorted := make([]domain.Item, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var edges []domain.SimilarityEdge
	batch := make([]pairJob, 0, d.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		results := make([]*domain.SimilarityEdge, len(batch))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(d.workers)
		for i, job := range batch {
			i, job := i, job
			g.Go(func() error {
				if edge, ok := d.scorePair(gctx, job.a, job.b, embeddings); ok {
					results[i] = &edge
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		for _, e := range results {
			if e != nil {
				edges = append(edges, *e)
			}
		}
		batch = batch[:0]
		return nil
	}

	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			// Pruning only: the semantics are defined over the full pair set.
			if d.sameCat && sorted[i].Category != sorted[j].Category {
				continue
			}
			batch = append(batch, pairJob{a: sorted[i], b: sorted[j]})
			if len(batch) == d.batchSize {
				if err := flush(); err != nil {
					return nil, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].CombinedScore != edges[j].CombinedScore {
			return edges[i].CombinedScore > edges[j].CombinedScore
		}
		if edges[i].ItemA != edges[j].ItemA {
			return edges[i].ItemA < edges[j].ItemA
		}
		return edges[i].ItemB < edges[j].ItemB
	})

	return edges, nil
}

// scorePair computes per-aspect similarities for every weighted aspect
// present on both items, blends them, and applies the acceptance policy
// plus the optional oracle gate. A missing aspect is excluded from the
// blend, never treated as zero.
func (d *Detector) scorePair(ctx context.Context, a, b domain.Item, embeddings map[string]domain.EmbeddingSet) (domain.SimilarityEdge, bool) {
	ea := embeddings[a.ID]
	eb := embeddings[b.ID]

	scores := make(map[domain.Aspect]float64, len(d.weights))
	weighted := make([]vectormath.WeightedScore, 0, len(d.weights))
	for _, w := range d.weights {
		va, okA := ea[w.Aspect]
		vb, okB := eb[w.Aspect]
		if !okA || !okB {
			continue
		}
		sim, err := vectormath.CosineSimilarity(va, vb)
		if err != nil {
			// A provider bug on one item aborts this pair, not the run.
			d.logger.Warn().Err(err).
				Str("item_a", a.ID).Str("item_b", b.ID).Str("aspect", string(w.Aspect)).
				Msg("skipping pair")
			return domain.SimilarityEdge{}, false
		}
		scores[w.Aspect] = sim
		weighted = append(weighted, vectormath.WeightedScore{Score: sim, Weight: w.Weight})
	}

	if len(weighted) == 0 {
		return domain.SimilarityEdge{}, false
	}

	combined, err := vectormath.WeightedCombine(weighted)
	if err != nil {
		return domain.SimilarityEdge{}, false
	}

	if !d.policy.Accept(scores, combined) {
		return domain.SimilarityEdge{}, false
	}

	if d.oracle != nil {
		confirmed, err := d.oracle.ValidateBool(ctx, d.promptFunc(a, b))
		switch {
		case err != nil && d.strict:
			d.logger.Warn().Err(err).
				Str("item_a", a.ID).Str("item_b", b.ID).
				Msg("oracle unavailable, dropping candidate")
			return domain.SimilarityEdge{}, false
		case err != nil:
			d.logger.Debug().Err(err).
				Str("item_a", a.ID).Str("item_b", b.ID).
				Msg("oracle unavailable, accepting on threshold only")
		case !confirmed:
			return domain.SimilarityEdge{}, false
		}
	}

	return domain.SimilarityEdge{
		ItemA:         a.ID,
		ItemB:         b.ID,
		AspectScores:  scores,
		CombinedScore: combined,
	}, true
}

func duplicatePrompt(a, b domain.Item) string {
	return fmt.Sprintf(
		"Are these two product listings the same product? Answer true or false only.\n\n"+
			"Product 1: %s | brand: %s | category: %s | price: %.2f\n"+
			"Product 2: %s | brand: %s | category: %s | price: %.2f",
		a.Name, a.Brand, a.Category, a.Price,
		b.Name, b.Brand, b.Category, b.Price,
	)
}
