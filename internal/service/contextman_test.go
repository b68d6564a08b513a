package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"nauassist/internal/models"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 2, EstimateTokens("12345678"))
	// Cyrillic counts runes, not bytes.
	assert.Equal(t, 2, EstimateTokens("привітсвіт"))
}

func TestTrimHistory(t *testing.T) {
	history := []models.Message{
		{Role: "user", Content: strings.Repeat("а", 40)},      // 10 tokens + 2
		{Role: "assistant", Content: strings.Repeat("б", 40)}, // 10 tokens + 2
		{Role: "user", Content: strings.Repeat("в", 40)},      // 10 tokens + 2
	}

	t.Run("keeps everything under a big budget", func(t *testing.T) {
		assert.Len(t, TrimHistory(history, 1000), 3)
	})

	t.Run("drops oldest first", func(t *testing.T) {
		trimmed := TrimHistory(history, 25)
		assert.Len(t, trimmed, 2)
		assert.Equal(t, history[1], trimmed[0])
		assert.Equal(t, history[2], trimmed[1])
	})

	t.Run("tiny budget empties the history", func(t *testing.T) {
		assert.Empty(t, TrimHistory(history, 1))
	})

	t.Run("nil history stays empty", func(t *testing.T) {
		assert.Empty(t, TrimHistory(nil, 100))
	})
}

func TestFormatHits(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", FormatHits(nil))
	})

	t.Run("numbered with sources", func(t *testing.T) {
		out := FormatHits([]models.SearchHit{
			{Title: "Стипендії", Text: "Умови призначення", URL: "https://nau.edu.ua/stip"},
			{Title: "Гуртожитки", Text: "Правила поселення"},
		})
		assert.Contains(t, out, "1. Стипендії")
		assert.Contains(t, out, "2. Гуртожитки")
		assert.Contains(t, out, "Джерело: https://nau.edu.ua/stip")
	})

	t.Run("long texts are truncated within the budget", func(t *testing.T) {
		hits := []models.SearchHit{
			{Title: "a", Text: strings.Repeat("х", 4000)},
			{Title: "b", Text: strings.Repeat("у", 4000)},
			{Title: "c", Text: strings.Repeat("ф", 4000)},
		}
		out := FormatHits(hits)
		assert.Contains(t, out, "...")
		// Budget is per formatted text, so 3×4000 runes must not survive.
		assert.Less(t, len([]rune(out)), 3*4000)
	})
}
