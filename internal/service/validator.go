package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"nauassist/internal/models"
)

// RelevanceOracle judges whether retrieved hits actually answer the user's
// question, and proposes a better query when they don't.
type RelevanceOracle interface {
	AssessRelevance(ctx context.Context, query string, hits []models.SearchHit) (models.Verdict, error)
}

// Validator wraps the oracle with a timeout and translates oracle failures
// into the typed error the orchestrator degrades on.
type Validator struct {
	oracle  RelevanceOracle
	timeout time.Duration
	log     *zap.SugaredLogger
}

func NewValidator(oracle RelevanceOracle, timeout time.Duration, log *zap.SugaredLogger) *Validator {
	return &Validator{oracle: oracle, timeout: timeout, log: log}
}

// Validate asks the oracle for a verdict on one attempt's hits. The query
// here is always the user's original question, not the rewritten search
// string — relevance is judged against what was actually asked.
func (v *Validator) Validate(ctx context.Context, originalQuery string, hits []models.SearchHit) (models.Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	verdict, err := v.oracle.AssessRelevance(ctx, originalQuery, hits)
	if err != nil {
		return models.Verdict{}, fmt.Errorf("assess relevance: %v: %w", err, ErrValidationUnavailable)
	}

	v.log.Debugw("validation verdict",
		"accepted", verdict.Accepted,
		"reformulated", verdict.ReformulatedQuery != "",
		"reason", verdict.Reason,
	)
	return verdict, nil
}
