package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nauassist/internal/models"
	"nauassist/internal/structure"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	tables, err := structure.Load("")
	require.NoError(t, err)
	return NewClassifier(tables, zap.NewNop().Sugar())
}

func TestClassifyScheduleWithGroup(t *testing.T) {
	c := newTestClassifier(t)

	d := c.Classify("Які заняття в мене зараз?", "Б-171-22-1-ІР")

	assert.Equal(t, models.IntentSchedule, d.Intent)
	assert.False(t, d.NeedsRetrieval, "schedule questions from a known group are answered from the timetable")
	assert.Equal(t, models.ScopeFaculty, d.Level)
	assert.Equal(t, "ФКНТ", d.Faculty, "ІР group code belongs to ФКНТ")
}

func TestClassifySmalltalk(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		query string
		want  bool
	}{
		{"привіт", true},
		{"Привіт!", true},
		{"добрий день", true},
		{"дякую!", true},
		{"hello", true},
		{"привіт що це", false},                  // question word
		{"Привіт! Що нового на ФКНТ?", false},    // too long, real question
		{"розклад", false},                       // not a pleasantry
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			d := c.Classify(tc.query, "")
			if tc.want {
				assert.Equal(t, models.IntentSmalltalk, d.Intent)
				assert.False(t, d.NeedsRetrieval)
			} else {
				assert.NotEqual(t, models.IntentSmalltalk, d.Intent)
			}
		})
	}
}

func TestClassifyScopes(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		name       string
		query      string
		group      string
		level      models.ScopeLevel
		faculty    string
		department string
	}{
		{"department alias", "контакти кафедри ІПЗ", "", models.ScopeDepartment, "ФКНТ", "ІПЗ"},
		{"faculty alias", "що нового на ФКНТ", "", models.ScopeFaculty, "ФКНТ", ""},
		{"faculty full name", "новини факультету аеронавігації", "", models.ScopeFaculty, "ФАЕТ", ""},
		{"fuzzy faculty token", "новини фкнтт", "", models.ScopeFaculty, "ФКНТ", ""},
		{"group code fallback", "коли сесія", "Б-171-22-1-ІР", models.ScopeFaculty, "ФКНТ", ""},
		{"no markers", "коли сесія", "", models.ScopeGlobal, "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := c.Classify(tc.query, tc.group)
			assert.Equal(t, tc.level, d.Level)
			assert.Equal(t, tc.faculty, d.Faculty)
			assert.Equal(t, tc.department, d.Department)
		})
	}
}

func TestClassifyIntentPrecedence(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		query string
		want  models.Intent
	}{
		{"який розклад на завтра", models.IntentSchedule},
		{"яка конференція буде в університеті", models.IntentEvents},
		{"що нового в університеті", models.IntentNews},
		{"де знаходиться бібліотека", models.IntentInfo},
		// "розклад" outranks "новини" when both trigger.
		{"новини про розклад пар", models.IntentSchedule},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Classify(tc.query, "").Intent)
		})
	}
}

func TestClassifyIsTotal(t *testing.T) {
	c := newTestClassifier(t)

	for _, query := range []string{"", "   ", "🚀🚀🚀", "???", "a", "ієрогліфи 漢字 mixed текст 123"} {
		d := c.Classify(query, "")
		assert.Equal(t, models.ScopeGlobal, d.Level, "query %q", query)
		assert.True(t, d.NeedsRetrieval, "query %q", query)
		assert.NotEmpty(t, d.Intent, "query %q", query)
	}
}

func TestClassifyKeywords(t *testing.T) {
	c := newTestClassifier(t)

	t.Run("includes intent vocabulary and expansions", func(t *testing.T) {
		d := c.Classify("що нового в університеті", "")
		assert.Contains(t, d.Keywords, "новини")
	})

	t.Run("capped", func(t *testing.T) {
		d := c.Classify("розклад подія зустріч викладач навчання конференція вступ контакти ІПЗ", "")
		assert.LessOrEqual(t, len(d.Keywords), maxKeywords)
	})

	t.Run("transliterates proper nouns", func(t *testing.T) {
		d := c.Classify("Хто такий Шевченко?", "")
		assert.Contains(t, d.Keywords, "shevchenko")
	})
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "привіт світ", Normalize("  ПРИВІТ   СВІТ "))
	assert.Equal(t, Normalize("ФКНТ"), Normalize("фкнт"))
}

func TestTransliterate(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Шевченко", "shevchenko"},
		{"Київ", "kyiv"},
		{"Запоріжжя", "zaporizhzhia"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Transliterate(tc.in))
	}
}
