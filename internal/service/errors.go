package service

import "errors"

// Typed failure conditions of the retrieval pipeline. The core never lets a
// raw transport error escape past its boundary; callers branch on these with
// errors.Is and degrade gracefully.
var (
	// ErrRetrievalUnavailable: the semantic store is unreachable or timed
	// out. The retry loop aborts immediately — rewording a query does not
	// revive a dead retrieval path.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrValidationUnavailable: the relevance oracle is unreachable. Treated
	// as an automatic accept of the best available hits.
	ErrValidationUnavailable = errors.New("validation unavailable")
)
