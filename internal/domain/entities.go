package domain

// Aspect identifies a named embedding channel for an item.
type Aspect string

const (
	AspectTitle      Aspect = "title"
	AspectAttributes Aspect = "attributes"
	AspectFull       Aspect = "full"
	AspectVisual     Aspect = "visual"
)

type Item struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand,omitempty"`
	Price       float64 `json:"price"`
}

// EmbeddingSet holds the vectors generated for one item, keyed by aspect.
// A missing aspect means the item is ineligible for aspect-specific scoring
// until the embedding is generated.
type EmbeddingSet map[Aspect][]float32

// AspectWeight assigns a relative weight to one aspect when blending
// per-aspect similarity scores into a combined score.
type AspectWeight struct {
	Aspect Aspect
	Weight float64
}

// SimilarityEdge is an undirected pairwise match with ItemA < ItemB.
// Edges are recomputed on every detection run and never persisted.
type SimilarityEdge struct {
	ItemA         string             `json:"item_a"`
	ItemB         string             `json:"item_b"`
	AspectScores  map[Aspect]float64 `json:"aspect_scores"`
	CombinedScore float64            `json:"combined_score"`
}

// DuplicateGroup is a connected component of accepted similarity edges.
// MemberIDs is sorted ascending and always has at least two entries.
type DuplicateGroup struct {
	GroupID        int      `json:"group_id"`
	MemberIDs      []string `json:"member_ids"`
	MasterID       string   `json:"master_id"`
	RedundancyCost float64  `json:"redundancy_cost"`
}

// Mode selects the recommendation pipeline.
type Mode string

const (
	ModeSubstitutes Mode = "substitutes"
	ModeCrossSell   Mode = "cross-sell"
)

// Recommendation is one ranked candidate for a (target, mode) pair.
// Rationale is best-effort and empty when no explanation is available.
type Recommendation struct {
	ItemID     string  `json:"item_id"`
	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
	Rationale  string  `json:"rationale,omitempty"`
}

type SearchResult struct {
	ItemID     string  `json:"item_id"`
	Similarity float64 `json:"similarity"`
}
