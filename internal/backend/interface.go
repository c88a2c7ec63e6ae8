package backend

import (
	"context"

	relay "github.com/danilofalcao/llama-relay/internal/api/relay/v1"
)

// Backend defines the interface an inference upstream must implement
type Backend interface {
	// Name returns the name of the backend
	Name() string

	// Generate forwards the prompt of req upstream and returns the generated
	// text. Any failure along the way is returned as an error; callers do not
	// distinguish between them.
	Generate(ctx context.Context, req *relay.ChatRequest) (string, error)
}
