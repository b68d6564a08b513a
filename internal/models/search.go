package models

// SearchHit is one retrieved passage from the semantic store. Score is cosine
// similarity in [0,1], higher is closer.
type SearchHit struct {
	ID         string  `bson:"_id" json:"id"`
	Score      float64 `bson:"score" json:"score"`
	Title      string  `bson:"title" json:"title"`
	Text       string  `bson:"text" json:"text"`
	Category   string  `bson:"category,omitempty" json:"category,omitempty"`
	Faculty    string  `bson:"faculty,omitempty" json:"faculty,omitempty"`
	Department string  `bson:"department,omitempty" json:"department,omitempty"`
	URL        string  `bson:"url,omitempty" json:"url,omitempty"`
}

// Verdict is the validator's judgement of one retrieval attempt. A rejection
// may carry a reformulated query for the next attempt.
type Verdict struct {
	Accepted          bool   `json:"accepted"`
	ReformulatedQuery string `json:"reformulated_query,omitempty"`
	Reason            string `json:"reason,omitempty"`
}

// RetrievalResult is what the orchestrator hands back after its retry loop.
// Validated is false when the hits are a best-effort fallback the validator
// never accepted.
type RetrievalResult struct {
	Hits      []SearchHit `json:"hits"`
	Validated bool        `json:"validated"`
	Attempts  int         `json:"attempts"`
}

// TopScore is the similarity of the best hit, 0 for an empty set. Attempt
// sets are ranked by this when picking a fallback.
func (r RetrievalResult) TopScore() float64 {
	best := 0.0
	for _, h := range r.Hits {
		if h.Score > best {
			best = h.Score
		}
	}
	return best
}
