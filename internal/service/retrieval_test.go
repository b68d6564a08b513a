package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nauassist/internal/models"
)

type gatewayStep struct {
	hits []models.SearchHit
	err  error
}

type fakeGateway struct {
	steps   []gatewayStep
	queries []string
}

func (f *fakeGateway) Search(_ context.Context, query string, _ models.RoutingDecision) ([]models.SearchHit, error) {
	f.queries = append(f.queries, query)
	if len(f.steps) == 0 {
		return nil, nil
	}
	step := f.steps[0]
	f.steps = f.steps[1:]
	return step.hits, step.err
}

type fakeOracle struct {
	verdicts []models.Verdict
	err      error
	calls    int
}

func (f *fakeOracle) AssessRelevance(_ context.Context, _ string, _ []models.SearchHit) (models.Verdict, error) {
	f.calls++
	if f.err != nil {
		return models.Verdict{}, f.err
	}
	v := f.verdicts[0]
	if len(f.verdicts) > 1 {
		f.verdicts = f.verdicts[1:]
	}
	return v, nil
}

func hitSet(score float64) []models.SearchHit {
	return []models.SearchHit{{ID: "doc", Score: score, Title: "t", Text: "x"}}
}

func newTestOrchestrator(gw SearchGateway, oracle RelevanceOracle) *Orchestrator {
	log := zap.NewNop().Sugar()
	return NewOrchestrator(gw, NewValidator(oracle, time.Second, log), log)
}

func TestRetrieveAcceptedFirstAttempt(t *testing.T) {
	gw := &fakeGateway{steps: []gatewayStep{{hits: hitSet(0.8)}}}
	oracle := &fakeOracle{verdicts: []models.Verdict{{Accepted: true}}}
	o := newTestOrchestrator(gw, oracle)

	res, err := o.Retrieve(context.Background(), models.RoutingDecision{}, "стипендія")
	require.NoError(t, err)
	assert.True(t, res.Validated)
	assert.Equal(t, 1, res.Attempts)
	assert.Len(t, gw.queries, 1)
	assert.Len(t, res.Hits, 1)
}

func TestRetrieveAbortsWhenStoreUnavailable(t *testing.T) {
	gw := &fakeGateway{steps: []gatewayStep{{err: ErrRetrievalUnavailable}}}
	oracle := &fakeOracle{verdicts: []models.Verdict{{Accepted: true}}}
	o := newTestOrchestrator(gw, oracle)

	res, err := o.Retrieve(context.Background(), models.RoutingDecision{}, "стипендія")
	assert.ErrorIs(t, err, ErrRetrievalUnavailable)
	assert.Empty(t, res.Hits)
	assert.Len(t, gw.queries, 1, "rewording cannot revive a dead store")
	assert.Zero(t, oracle.calls, "nothing to validate")
}

func TestRetrieveNeverExceedsAttemptBudget(t *testing.T) {
	gw := &fakeGateway{steps: []gatewayStep{
		{hits: hitSet(0.4)},
		{hits: hitSet(0.9)},
		{hits: hitSet(0.5)},
		{hits: hitSet(0.99)}, // must never be reached
	}}
	oracle := &fakeOracle{verdicts: []models.Verdict{
		{Accepted: false, ReformulatedQuery: "запит два"},
		{Accepted: false, ReformulatedQuery: "запит три"},
		{Accepted: false, ReformulatedQuery: "запит чотири"},
	}}
	o := newTestOrchestrator(gw, oracle)

	res, err := o.Retrieve(context.Background(), models.RoutingDecision{}, "оригінальний запит")
	require.NoError(t, err)
	assert.Len(t, gw.queries, maxAttempts)
	assert.False(t, res.Validated)
	assert.InDelta(t, 0.9, res.TopScore(), 1e-9, "fallback is the best-scoring attempt, not the last")
}

func TestRetrieveStopsOnRepeatedReformulation(t *testing.T) {
	gw := &fakeGateway{steps: []gatewayStep{{hits: hitSet(0.6)}}}
	oracle := &fakeOracle{verdicts: []models.Verdict{
		{Accepted: false, ReformulatedQuery: "Стипендія"}, // same as original, case aside
	}}
	o := newTestOrchestrator(gw, oracle)

	res, err := o.Retrieve(context.Background(), models.RoutingDecision{}, "стипендія")
	require.NoError(t, err)
	assert.Len(t, gw.queries, 1, "a reformulation already tried must stop the loop")
	assert.False(t, res.Validated)
	assert.Len(t, res.Hits, 1)
}

func TestRetrieveStopsWithoutReformulation(t *testing.T) {
	gw := &fakeGateway{steps: []gatewayStep{{hits: hitSet(0.6)}}}
	oracle := &fakeOracle{verdicts: []models.Verdict{{Accepted: false}}}
	o := newTestOrchestrator(gw, oracle)

	res, err := o.Retrieve(context.Background(), models.RoutingDecision{}, "стипендія")
	require.NoError(t, err)
	assert.Len(t, gw.queries, 1)
	assert.False(t, res.Validated)
}

func TestRetrieveAcceptsBestWhenOracleUnavailable(t *testing.T) {
	gw := &fakeGateway{steps: []gatewayStep{{hits: hitSet(0.7)}}}
	oracle := &fakeOracle{err: errors.New("llm down")}
	o := newTestOrchestrator(gw, oracle)

	res, err := o.Retrieve(context.Background(), models.RoutingDecision{}, "стипендія")
	require.NoError(t, err, "oracle outage degrades, it does not fail the turn")
	assert.False(t, res.Validated)
	assert.Len(t, res.Hits, 1)
}

func TestRetrieveSimplifiesQueryOnEmptyHits(t *testing.T) {
	gw := &fakeGateway{steps: []gatewayStep{
		{hits: nil},
		{hits: hitSet(0.8)},
	}}
	oracle := &fakeOracle{verdicts: []models.Verdict{{Accepted: true}}}
	o := newTestOrchestrator(gw, oracle)

	res, err := o.Retrieve(context.Background(), models.RoutingDecision{}, "стипендія соціальна допомога")
	require.NoError(t, err)
	require.Len(t, gw.queries, 2)
	assert.Equal(t, "стипендія", gw.queries[1], "empty hits retry with the head word")
	assert.True(t, res.Validated)
	assert.Equal(t, 2, res.Attempts)
}

func TestRetrieveGivesUpOnEmptySingleWord(t *testing.T) {
	gw := &fakeGateway{steps: []gatewayStep{{hits: nil}}}
	oracle := &fakeOracle{verdicts: []models.Verdict{{Accepted: true}}}
	o := newTestOrchestrator(gw, oracle)

	res, err := o.Retrieve(context.Background(), models.RoutingDecision{}, "стипендія")
	require.NoError(t, err)
	assert.Len(t, gw.queries, 1, "a single word that found nothing has no simpler form")
	assert.Empty(t, res.Hits)
	assert.Zero(t, oracle.calls)
}

func TestEnhanceQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		keywords []string
		want     string
	}{
		{"appends novel keywords", "стипендія", []string{"виплати", "допомога"}, "стипендія виплати допомога"},
		{"skips present words", "розклад пар", []string{"розклад", "аудиторія"}, "розклад пар аудиторія"},
		{"no keywords", "стипендія", nil, "стипендія"},
		{"all present", "розклад", []string{"Розклад"}, "розклад"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, enhanceQuery(tc.query, tc.keywords))
		})
	}
}
