package models

// Message is one turn of the conversation history.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload for POST /chat.
type ChatRequest struct {
	UserName  string    `json:"user_name"`
	Message   string    `json:"message"`
	GroupName string    `json:"group_name,omitempty"`
	Messages  []Message `json:"messages,omitempty"` // prior dialogue, oldest first
}

// ChatResponse is the assistant's answer plus processing status.
type ChatResponse struct {
	Response string `json:"response"`
	Status   string `json:"status"`
}

// GroupValidationRequest asks whether a group identifier is well-formed and
// known to the portal.
type GroupValidationRequest struct {
	GroupName string `json:"group_name"`
}

// GroupValidationResponse carries the validation outcome and, on a miss,
// similar group names to suggest.
type GroupValidationResponse struct {
	IsValid       bool     `json:"is_valid"`
	ExtractedName string   `json:"extracted_name,omitempty"`
	Message       string   `json:"message"`
	Suggestions   []string `json:"suggestions,omitempty"`
}

// DayScheduleResponse is the payload for GET /schedule.
type DayScheduleResponse struct {
	Group   string           `json:"group"`
	Day     string           `json:"day"`
	Parity  Parity           `json:"parity"`
	Lessons []TimetableEntry `json:"lessons"`
}

// NowScheduleResponse is the payload for GET /schedule/now.
type NowScheduleResponse struct {
	Group   string          `json:"group"`
	Parity  Parity          `json:"parity"`
	Current *TimetableEntry `json:"current,omitempty"`
	Next    *TimetableEntry `json:"next,omitempty"`
	Stale   bool            `json:"stale,omitempty"`
	Message string          `json:"message,omitempty"`
}
