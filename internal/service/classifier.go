package service

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"

	"nauassist/internal/models"
	"nauassist/internal/structure"
)

const (
	// fuzzyFloor is the minimum similarity for a token to count as a
	// misspelled alias. Below this, short aliases start matching noise.
	fuzzyFloor = 0.75

	// maxKeywords caps the expansion list handed to retrieval.
	maxKeywords = 8

	// smalltalkMaxWords: longer messages are treated as real questions even
	// when they open with a greeting.
	smalltalkMaxWords = 3
)

// Classifier maps a free-form user query onto a routing decision: scope
// level, intent and expansion keywords. It is rule-driven over the structure
// tables and total — any input, including garbage, yields a usable decision.
type Classifier struct {
	tables *structure.Structure
	log    *zap.SugaredLogger
}

func NewClassifier(tables *structure.Structure, log *zap.SugaredLogger) *Classifier {
	return &Classifier{tables: tables, log: log}
}

// Classify inspects the query and the user's group and produces the routing
// decision for this turn. It never fails: a panic anywhere in the matching
// falls back to a university-wide info search.
func (c *Classifier) Classify(query, group string) (d models.RoutingDecision) {
	d = fallbackDecision()
	defer func() {
		if r := recover(); r != nil {
			c.log.Errorw("classifier panicked, using global fallback", "recover", r)
			d = fallbackDecision()
		}
	}()

	normQ := stripPunct(Normalize(query))
	tokens := strings.Fields(normQ)

	out := models.RoutingDecision{
		Level:          models.ScopeGlobal,
		Intent:         models.IntentInfo,
		NeedsRetrieval: true,
		Confidence:     0.5,
		Reasoning:      "no scope markers, searching university-wide",
	}

	if c.isSmalltalk(normQ, tokens) {
		out.Intent = models.IntentSmalltalk
		out.NeedsRetrieval = false
		out.Confidence = 0.9
		out.Reasoning = "greeting or pleasantry, no retrieval needed"
		d = out
		return
	}

	if fac, dept, ok := c.matchDepartment(normQ, tokens); ok {
		out.Level = models.ScopeDepartment
		out.Faculty = fac
		out.Department = dept
		out.Confidence = 0.9
		out.Reasoning = "department alias matched"
	} else if fac, ok := c.matchFaculty(normQ, tokens); ok {
		out.Level = models.ScopeFaculty
		out.Faculty = fac
		out.Confidence = 0.85
		out.Reasoning = "faculty alias matched"
	} else if fac := c.facultyFromGroup(group); fac != "" {
		out.Level = models.ScopeFaculty
		out.Faculty = fac
		out.Confidence = 0.6
		out.Reasoning = "faculty inferred from group code"
	}

	// First family whose trigger appears wins; table order is the
	// precedence order (schedule > events > news > info).
	for _, fam := range c.tables.Intents {
		if matchesTrigger(normQ, fam.Triggers) {
			out.Intent = fam.Intent
			break
		}
	}

	// Schedule questions from a known group are answered from the timetable
	// engine directly, not from the knowledge base.
	if out.Intent == models.IntentSchedule && group != "" {
		out.NeedsRetrieval = false
		out.Reasoning = "schedule intent with known group, answered from timetable"
	}

	out.Keywords = c.keywords(query, normQ, out)
	d = out
	return
}

func fallbackDecision() models.RoutingDecision {
	return models.RoutingDecision{
		Level:          models.ScopeGlobal,
		Intent:         models.IntentInfo,
		NeedsRetrieval: true,
		Confidence:     0.3,
		Reasoning:      "classification fallback, searching university-wide",
	}
}

// isSmalltalk: a short message built around an allow-listed pleasantry with
// no question word in it.
func (c *Classifier) isSmalltalk(normQ string, tokens []string) bool {
	if len(tokens) == 0 || len(tokens) > smalltalkMaxWords {
		return false
	}
	for _, w := range c.tables.QuestionWords {
		nw := Normalize(w)
		for _, tok := range tokens {
			if tok == nw {
				return false
			}
		}
	}
	for _, phrase := range c.tables.Smalltalk {
		if strings.Contains(normQ, stripPunct(Normalize(phrase))) {
			return true
		}
	}
	return false
}

func (c *Classifier) matchDepartment(normQ string, tokens []string) (faculty, dept string, ok bool) {
	for _, f := range c.tables.Faculties {
		for _, d := range f.Departments {
			if aliasMatches(normQ, tokens, d.Aliases) {
				return f.Code, d.Code, true
			}
		}
	}
	return "", "", false
}

func (c *Classifier) matchFaculty(normQ string, tokens []string) (faculty string, ok bool) {
	for _, f := range c.tables.Faculties {
		if aliasMatches(normQ, tokens, f.Aliases) {
			return f.Code, true
		}
	}
	return "", false
}

// facultyFromGroup resolves a faculty from the specialty suffix of a group
// identifier ("Б-171-22-1-ІР" → "ІР"). Empty when the group is unknown.
func (c *Classifier) facultyFromGroup(group string) string {
	if group == "" {
		return ""
	}
	parts := strings.Split(group, "-")
	code := Normalize(parts[len(parts)-1])
	if code == "" {
		return ""
	}
	for _, f := range c.tables.Faculties {
		for _, gc := range f.GroupCodes {
			if Normalize(gc) == code {
				return f.Code
			}
		}
	}
	return ""
}

// aliasMatches reports whether any alias occurs in the query, either verbatim
// or, for single-word aliases, within the fuzzy floor of one token.
func aliasMatches(normQ string, tokens []string, aliases []string) bool {
	for _, a := range aliases {
		na := stripPunct(Normalize(a))
		if na == "" {
			continue
		}
		if strings.Contains(normQ, na) {
			return true
		}
		if strings.Contains(na, " ") {
			continue
		}
		for _, tok := range tokens {
			if similarity(tok, na) >= fuzzyFloor {
				return true
			}
		}
	}
	return false
}

func matchesTrigger(normQ string, triggers []string) bool {
	for _, t := range triggers {
		nt := stripPunct(Normalize(t))
		if nt != "" && strings.Contains(normQ, nt) {
			return true
		}
	}
	return false
}

// similarity is normalized Levenshtein in [0,1] over rune counts.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// keywords builds the retrieval expansion list: scope names, intent
// vocabulary, semantic expansions, then transliterated proper nouns. First
// match wins the slot; capped at maxKeywords.
func (c *Classifier) keywords(rawQuery, normQ string, d models.RoutingDecision) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(kw string) {
		kw = strings.TrimSpace(kw)
		key := Normalize(kw)
		if kw == "" || seen[key] || len(out) >= maxKeywords {
			return
		}
		seen[key] = true
		out = append(out, kw)
	}

	if f := c.tables.FacultyByCode(d.Faculty); f != nil {
		add(f.Code)
		if d.Department != "" {
			for _, dep := range f.Departments {
				if dep.Code == d.Department {
					add(dep.Code)
					add(dep.FullName)
				}
			}
		} else {
			add(f.FullName)
		}
	}

	for _, fam := range c.tables.Intents {
		if fam.Intent != d.Intent {
			continue
		}
		for _, kw := range fam.Keywords {
			add(kw)
		}
	}

	for key, exps := range c.tables.Expansions {
		if !strings.Contains(normQ, Normalize(key)) {
			continue
		}
		for i, e := range exps {
			if i >= 3 {
				break
			}
			add(e)
		}
	}

	// Capitalized Cyrillic words mid-sentence are usually names; index them
	// in Latin too since parts of the knowledge base are transliterated.
	words := strings.Fields(rawQuery)
	for i, w := range words {
		if i == 0 {
			continue
		}
		w = strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		runes := []rune(w)
		if len(runes) < 3 || !unicode.IsUpper(runes[0]) || !unicode.Is(unicode.Cyrillic, runes[0]) {
			continue
		}
		add(Transliterate(w))
	}

	return out
}

// stripPunct drops everything except letters, digits, apostrophes, hyphens
// and spaces, so punctuation never blocks an alias or trigger match.
func stripPunct(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return false
		case r == '\'', r == '’', r == '-':
			return false
		}
		return true
	}), " ")
}
