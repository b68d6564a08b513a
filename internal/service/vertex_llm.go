package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"

	"nauassist/internal/models"
)

// VertexLLM backs both roles the pipeline needs from a language model: the
// answer generator and the relevance oracle. One client, one model, two
// prompt shapes.
type VertexLLM struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewVertexLLM creates the Gemini client for the given project and region.
func NewVertexLLM(ctx context.Context, projectID, location string) (*VertexLLM, error) {
	var opts []option.ClientOption
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}

	client, err := genai.NewClient(ctx, projectID, location, opts...)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := client.GenerativeModel("gemini-2.0-flash-lite-001")
	model.SetTemperature(0.7)
	model.SetTopP(0.8)
	model.SetTopK(40)

	return &VertexLLM{client: client, model: model}, nil
}

// GenerateResponse answers the user's question from the assembled context.
func (l *VertexLLM) GenerateResponse(ctx context.Context, in GenerationInput) (string, error) {
	return l.generate(ctx, buildAnswerPrompt(in))
}

// AssessRelevance asks the model to judge the hits against the original
// question. The model must reply with a single JSON object; anything
// unparseable is reported as an error and the caller degrades.
func (l *VertexLLM) AssessRelevance(ctx context.Context, query string, hits []models.SearchHit) (models.Verdict, error) {
	raw, err := l.generate(ctx, buildVerdictPrompt(query, hits))
	if err != nil {
		return models.Verdict{}, err
	}
	return parseVerdict(raw)
}

func (l *VertexLLM) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := l.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty model response")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response part type %T", resp.Candidates[0].Content.Parts[0])
	}
	return string(text), nil
}

// Close closes the underlying client.
func (l *VertexLLM) Close() error {
	return l.client.Close()
}

func buildAnswerPrompt(in GenerationInput) string {
	var b strings.Builder
	b.WriteString("Ти — асистент Національного авіаційного університету. ")
	b.WriteString("Відповідай українською, стисло і по суті. ")
	b.WriteString("Використовуй лише наведений контекст; якщо відповіді в ньому немає, чесно скажи про це.\n")

	if in.Context != "" {
		b.WriteString("\nКОНТЕКСТ:\n")
		b.WriteString(in.Context)
		b.WriteString("\n")
	}

	if len(in.History) > 0 {
		b.WriteString("\nПОПЕРЕДНЯ РОЗМОВА:\n")
		for _, m := range in.History {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		}
	}

	if in.UserName != "" {
		fmt.Fprintf(&b, "\nКористувач %s питає: %s\n", in.UserName, in.Question)
	} else {
		fmt.Fprintf(&b, "\nЗапитання: %s\n", in.Question)
	}
	return b.String()
}

func buildVerdictPrompt(query string, hits []models.SearchHit) string {
	var b strings.Builder
	b.WriteString("Оціни, чи відповідають знайдені документи на запитання користувача.\n\n")
	fmt.Fprintf(&b, "ЗАПИТАННЯ: %s\n\nДОКУМЕНТИ:\n", query)
	for i, h := range hits {
		text := h.Text
		if runes := []rune(text); len(runes) > 400 {
			text = string(runes[:400]) + "..."
		}
		fmt.Fprintf(&b, "%d. [%.2f] %s\n%s\n\n", i+1, h.Score, h.Title, text)
	}
	b.WriteString(`Відповідай ЛИШЕ одним JSON-об'єктом без пояснень:
{"accepted": true/false, "reformulated_query": "новий запит якщо accepted=false, інакше пустий", "reason": "коротке пояснення"}`)
	return b.String()
}

// parseVerdict extracts the first JSON object from the model's reply, which
// may be wrapped in code fences or prose.
func parseVerdict(raw string) (models.Verdict, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return models.Verdict{}, fmt.Errorf("no JSON object in verdict: %q", raw)
	}

	var v models.Verdict
	if err := json.Unmarshal([]byte(raw[start:end+1]), &v); err != nil {
		return models.Verdict{}, fmt.Errorf("parse verdict: %w", err)
	}
	if v.Accepted {
		v.ReformulatedQuery = ""
	}
	return v, nil
}
