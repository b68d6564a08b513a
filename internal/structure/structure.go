// Package structure holds the university routing tables: faculties,
// departments and their aliases, intent trigger vocabularies, the smalltalk
// allow-list and semantic expansions. The tables are data, not code — adding
// a faculty or an intent family is a JSON change, no branching logic.
package structure

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"nauassist/internal/models"
)

//go:embed structure.json
var embedded []byte

// Department is one chair inside a faculty.
type Department struct {
	Code     string   `json:"code"`
	FullName string   `json:"full_name"`
	Aliases  []string `json:"aliases"`
}

// Faculty groups departments and carries the group-name prefixes its student
// groups use (so a bare group identifier can resolve a faculty).
type Faculty struct {
	Code        string       `json:"code"`
	FullName    string       `json:"full_name"`
	Aliases     []string     `json:"aliases"`
	GroupCodes  []string     `json:"group_codes"`
	Departments []Department `json:"departments"`
}

// IntentFamily is one intent with its trigger vocabulary. Slice order in the
// JSON file is the precedence order for classification.
type IntentFamily struct {
	Intent   models.Intent `json:"intent"`
	Triggers []string      `json:"triggers"`
	Keywords []string      `json:"keywords"`
}

// Structure is the full routing table set.
type Structure struct {
	Faculties     []Faculty           `json:"faculties"`
	Intents       []IntentFamily      `json:"intents"`
	Smalltalk     []string            `json:"smalltalk"`
	QuestionWords []string            `json:"question_words"`
	Expansions    map[string][]string `json:"expansions"`
}

// Load reads the tables from path, or the embedded default when path is
// empty.
func Load(path string) (*Structure, error) {
	data := embedded
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read structure tables: %w", err)
		}
		data = b
	}

	var s Structure
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse structure tables: %w", err)
	}
	if len(s.Faculties) == 0 || len(s.Intents) == 0 {
		return nil, fmt.Errorf("structure tables incomplete")
	}
	return &s, nil
}

// FacultyByCode returns the faculty with the given code, or nil.
func (s *Structure) FacultyByCode(code string) *Faculty {
	for i := range s.Faculties {
		if s.Faculties[i].Code == code {
			return &s.Faculties[i]
		}
	}
	return nil
}
