package service

import (
	"context"

	"nauassist/internal/models"
)

// Stub AI backends for local development without GCP credentials. The server
// falls back to these when no project is configured, so the HTTP surface and
// the schedule engine stay testable offline.

type stubEmbedder struct{}

func NewStubEmbedder() Embedder {
	return stubEmbedder{}
}

func (stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	return make([]float32, 768), nil
}

// StubLLM satisfies both Generator and RelevanceOracle.
type StubLLM struct{}

func NewStubLLM() StubLLM {
	return StubLLM{}
}

func (StubLLM) GenerateResponse(_ context.Context, in GenerationInput) (string, error) {
	if in.Context != "" {
		return "(локальний режим)\n" + in.Context, nil
	}
	return "(локальний режим) Модель недоступна, працюю без генерації.", nil
}

func (StubLLM) AssessRelevance(context.Context, string, []models.SearchHit) (models.Verdict, error) {
	return models.Verdict{Accepted: true, Reason: "stub accepts everything"}, nil
}
