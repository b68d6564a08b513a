package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"nauassist/internal/models"
)

// maxAttempts bounds the retrieve-validate-reformulate loop. The gateway is
// never called more than this many times for one user turn.
const maxAttempts = 3

// Orchestrator runs the retrieval loop: search, have the oracle judge the
// hits against the original question, and retry with a reformulated query
// until something is accepted or the attempt budget runs out.
type Orchestrator struct {
	gateway   SearchGateway
	validator *Validator
	log       *zap.SugaredLogger
}

func NewOrchestrator(gateway SearchGateway, validator *Validator, log *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{gateway: gateway, validator: validator, log: log}
}

// Retrieve finds context passages for the query. The result is best-effort:
// Validated reports whether the oracle accepted the hits, and an empty hit
// set with ErrRetrievalUnavailable means the store was unreachable.
//
// Degradation rules:
//   - store unreachable → abort immediately, reformulation cannot help
//   - oracle unreachable → accept the best hits seen so far, unvalidated
//   - reformulation repeats an already-tried query → stop, return best
func (o *Orchestrator) Retrieve(ctx context.Context, decision models.RoutingDecision, query string) (models.RetrievalResult, error) {
	current := enhanceQuery(query, decision.Keywords)
	tried := map[string]bool{
		Normalize(query):   true,
		Normalize(current): true,
	}

	var best models.RetrievalResult
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		o.log.Debugw("retrieval attempt", "attempt", attempt, "query", current)

		hits, err := o.gateway.Search(ctx, current, decision)
		if err != nil {
			if errors.Is(err, ErrRetrievalUnavailable) {
				o.log.Warnw("retrieval unavailable, aborting", "attempt", attempt, "error", err)
				return models.RetrievalResult{Attempts: attempt}, err
			}
			return models.RetrievalResult{Attempts: attempt}, err
		}

		if len(hits) == 0 {
			// Nothing to validate. Strip the query down to its head word
			// and try once more; a single word that found nothing is final.
			next := firstWord(current)
			if attempt == maxAttempts || next == current || tried[Normalize(next)] {
				break
			}
			tried[Normalize(next)] = true
			current = next
			continue
		}

		candidate := models.RetrievalResult{Hits: hits, Attempts: attempt}
		if candidate.TopScore() > best.TopScore() || len(best.Hits) == 0 {
			best = candidate
		}

		verdict, err := o.validator.Validate(ctx, query, hits)
		if err != nil {
			if errors.Is(err, ErrValidationUnavailable) {
				o.log.Warnw("validator unavailable, accepting best hits unvalidated", "attempt", attempt)
				best.Attempts = attempt
				return best, nil
			}
			return best, err
		}

		if verdict.Accepted {
			candidate.Validated = true
			return candidate, nil
		}

		next := strings.TrimSpace(verdict.ReformulatedQuery)
		if next == "" || tried[Normalize(next)] {
			o.log.Debugw("no fresh reformulation, stopping", "attempt", attempt)
			break
		}
		tried[Normalize(next)] = true
		current = next
	}

	best.Validated = false
	return best, nil
}

// enhanceQuery appends routing keywords that the query doesn't already
// contain, widening the embedding without drowning the original wording.
func enhanceQuery(query string, keywords []string) string {
	present := make(map[string]bool)
	for _, w := range strings.Fields(Normalize(query)) {
		present[w] = true
	}

	extra := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		novel := false
		for _, w := range strings.Fields(Normalize(kw)) {
			if !present[w] {
				novel = true
				present[w] = true
			}
		}
		if novel {
			extra = append(extra, kw)
		}
	}
	if len(extra) == 0 {
		return query
	}
	return query + " " + strings.Join(extra, " ")
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return s
	}
	return fields[0]
}
