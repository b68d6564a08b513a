package models

// ScopeLevel is the breadth of the search space for one query.
type ScopeLevel string

const (
	ScopeGlobal     ScopeLevel = "global"
	ScopeFaculty    ScopeLevel = "faculty"
	ScopeDepartment ScopeLevel = "department"
)

// Intent is the category of information need detected in a query.
type Intent string

const (
	IntentInfo      Intent = "info"
	IntentSchedule  Intent = "schedule"
	IntentNews      Intent = "news"
	IntentEvents    Intent = "events"
	IntentSmalltalk Intent = "smalltalk"
)

// RoutingDecision is produced once per query by the classifier and never
// mutated afterwards. Faculty/Department carry the matched entity codes when
// Level narrows the scope below global.
type RoutingDecision struct {
	Level          ScopeLevel `json:"level"`
	Faculty        string     `json:"faculty,omitempty"`
	Department     string     `json:"department,omitempty"`
	Intent         Intent     `json:"intent"`
	Keywords       []string   `json:"keywords,omitempty"`
	NeedsRetrieval bool       `json:"needs_retrieval"`
	Confidence     float64    `json:"confidence"`
	Reasoning      string     `json:"reasoning,omitempty"`
}

// ScopeFilter is the subset of a routing decision the semantic store
// understands as metadata constraints.
type ScopeFilter struct {
	Faculty    string
	Department string
	Category   string
}

// SearchFilter translates the decision into store-level metadata filters.
// Info queries stay category-free so a broad scope can still match.
func (d RoutingDecision) SearchFilter() ScopeFilter {
	f := ScopeFilter{}
	if d.Level != ScopeGlobal {
		f.Faculty = d.Faculty
	}
	if d.Level == ScopeDepartment {
		f.Department = d.Department
	}
	switch d.Intent {
	case IntentNews:
		f.Category = "news"
	case IntentEvents:
		f.Category = "events"
	}
	return f
}
