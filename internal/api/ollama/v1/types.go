package ollama

import "encoding/json"

// GenerateRequest represents a request to the Ollama generate API
type GenerateRequest struct {
	Model string `json:"model"`
	// Prompt is passed through untouched. A nil Prompt is left out of the
	// payload entirely.
	Prompt json.RawMessage `json:"prompt,omitempty"`
	Stream bool            `json:"stream"`
}

// GenerateResponse represents a non-streamed response from the Ollama generate API
type GenerateResponse struct {
	Model     string  `json:"model"`
	CreatedAt string  `json:"created_at"`
	Response  *string `json:"response"`
	Done      bool    `json:"done"`
}
