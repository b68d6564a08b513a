package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"nauassist/internal/models"
)

// routeBonus is added to a hit's score when its metadata agrees with the
// routing decision, so in-scope documents outrank equally similar noise.
const routeBonus = 0.1

// Embedder turns text into a dense vector in the knowledge-base embedding
// space.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NewsSearcher is the store-side K-NN search over the knowledge base.
type NewsSearcher interface {
	VectorSearch(ctx context.Context, queryVec []float32, filter models.ScopeFilter, topK int, minScore float64) ([]models.SearchHit, error)
}

// SearchGateway is one retrieval shot: query text in, scored hits out. Any
// transport failure surfaces as ErrRetrievalUnavailable.
type SearchGateway interface {
	Search(ctx context.Context, query string, decision models.RoutingDecision) ([]models.SearchHit, error)
}

type vectorGateway struct {
	store    NewsSearcher
	embedder Embedder
	topK     int
	minScore float64
	timeout  time.Duration
	log      *zap.SugaredLogger
}

// NewVectorGateway builds the embed-then-search gateway used in production.
func NewVectorGateway(store NewsSearcher, embedder Embedder, topK int, minScore float64, timeout time.Duration, log *zap.SugaredLogger) SearchGateway {
	return &vectorGateway{
		store:    store,
		embedder: embedder,
		topK:     topK,
		minScore: minScore,
		timeout:  timeout,
		log:      log,
	}
}

func (g *vectorGateway) Search(ctx context.Context, query string, decision models.RoutingDecision) ([]models.SearchHit, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	vec, err := g.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %v: %w", err, ErrRetrievalUnavailable)
	}

	hits, err := g.store.VectorSearch(ctx, vec, decision.SearchFilter(), g.topK, g.minScore)
	if err != nil {
		return nil, fmt.Errorf("vector search: %v: %w", err, ErrRetrievalUnavailable)
	}

	rerank(hits, decision)
	g.log.Debugw("search complete", "query", query, "hits", len(hits))
	return hits, nil
}

// rerank boosts hits whose faculty or department matches the decision and
// restores score ordering. The boost applies once per matching field.
func rerank(hits []models.SearchHit, decision models.RoutingDecision) {
	for i := range hits {
		if decision.Faculty != "" && hits[i].Faculty == decision.Faculty {
			hits[i].Score += routeBonus
		}
		if decision.Department != "" && hits[i].Department == decision.Department {
			hits[i].Score += routeBonus
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
}
