package port

import "context"

// Oracle is an external generative model used for soft validation and
// scoring. It is fallible and non-authoritative: callers must define a
// fallback for every call and never let an oracle failure abort a batch.
type Oracle interface {
	// ValidateBool asks a yes/no question.
	ValidateBool(ctx context.Context, prompt string) (bool, error)

	// ScoreScalar asks for a numeric rating.
	ScoreScalar(ctx context.Context, prompt string) (float64, error)

	// Explain asks for a short human-readable rationale.
	Explain(ctx context.Context, prompt string) (string, error)
}
