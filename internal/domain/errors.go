package domain

import "errors"

// Input errors: caller mistakes that are surfaced immediately and never
// retried. Data-quality gaps (missing aspect embedding, nothing above a
// threshold) are empty results, not errors.
var (
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrEmptyInput        = errors.New("empty input")
	ErrInvalidTopK       = errors.New("top-k must be greater than zero")
	ErrUnknownItem       = errors.New("unknown item")
)
