package relay

import "encoding/json"

// ChatRequest is the body accepted on POST /chat
type ChatRequest struct {
	// Prompt holds whatever JSON value the client sent, or nil when the field
	// was absent.
	Prompt json.RawMessage `json:"prompt,omitempty"`
}

// ChatResponse is returned when the upstream produced text
type ChatResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is returned for every upstream failure
type ErrorResponse struct {
	Error string `json:"error"`
}
