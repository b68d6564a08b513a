package service

import (
	"fmt"
	"strings"

	"nauassist/internal/models"
)

const (
	// charsPerToken is the rough character-per-token ratio used for budget
	// accounting. Close enough for Ukrainian and English alike.
	charsPerToken = 4

	// hitsCharBudget bounds the formatted retrieval context handed to the
	// generator, split evenly across hits.
	hitsCharBudget = 4500
)

// EstimateTokens approximates the token cost of a text.
func EstimateTokens(s string) int {
	return len([]rune(s)) / charsPerToken
}

// TrimHistory drops the oldest turns until the remaining history fits the
// token budget. Order is preserved; the most recent turns always survive
// first. A budget too small for even the last turn yields an empty history.
func TrimHistory(history []models.Message, maxTokens int) []models.Message {
	total := 0
	keepFrom := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		cost := EstimateTokens(history[i].Content) + 2 // role overhead
		if total+cost > maxTokens {
			break
		}
		total += cost
		keepFrom = i
	}
	return history[keepFrom:]
}

// FormatHits renders retrieved passages as a numbered context block. The
// character budget is split evenly, so one long document cannot starve the
// others.
func FormatHits(hits []models.SearchHit) string {
	if len(hits) == 0 {
		return ""
	}

	perHit := hitsCharBudget / len(hits)
	var b strings.Builder
	b.WriteString("ЗНАЙДЕНА ІНФОРМАЦІЯ:\n")
	for i, h := range hits {
		text := strings.TrimSpace(h.Text)
		if runes := []rune(text); len(runes) > perHit {
			text = string(runes[:perHit]) + "..."
		}
		fmt.Fprintf(&b, "\n%d. %s\n%s\n", i+1, h.Title, text)
		if h.URL != "" {
			fmt.Fprintf(&b, "Джерело: %s\n", h.URL)
		}
	}
	return b.String()
}
