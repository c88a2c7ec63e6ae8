package ollama

import (
	ollama "github.com/danilofalcao/llama-relay/internal/api/ollama/v1"
	relay "github.com/danilofalcao/llama-relay/internal/api/relay/v1"
)

// convertChatRequest builds a fresh generate request for every call. Streaming
// is always off so the upstream answers with a single JSON document.
func convertChatRequest(req *relay.ChatRequest, model string) ollama.GenerateRequest {
	genReq := ollama.GenerateRequest{
		Model:  model,
		Stream: false,
	}
	if req != nil {
		genReq.Prompt = req.Prompt
	}
	return genReq
}
