package models

// ChatRequest is the payload coming from the frontend into POST /get.
// The original form field name "msg" is kept for compatibility with the
// chat shell.
type ChatRequest struct {
	Message string `json:"msg" form:"msg" binding:"required"`
}

// ChatResponse is what the chat handler returns to the frontend.
type ChatResponse struct {
	Reply        string   `json:"reply"`                  // natural-language answer
	BookingReady bool     `json:"bookingReady"`           // surface the booking affordance
	BookingURL   string   `json:"bookingUrl,omitempty"`   // set when BookingReady
	Clarify      []string `json:"clarify,omitempty"`      // fields that failed validation this turn
	Degraded     bool     `json:"degraded,omitempty"`     // upstream failure, try again
}

// Passage is a retrieved knowledge-base excerpt.
type Passage struct {
	Text   string  `json:"text"`
	Source string  `json:"source,omitempty"`
	Score  float64 `json:"score,omitempty"`
}
