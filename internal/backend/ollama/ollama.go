package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	ollama "github.com/danilofalcao/llama-relay/internal/api/ollama/v1"
	relay "github.com/danilofalcao/llama-relay/internal/api/relay/v1"
	"github.com/danilofalcao/llama-relay/internal/backend"
	ollamaconstants "github.com/danilofalcao/llama-relay/internal/constants/ollama"
	logutils "github.com/danilofalcao/llama-relay/internal/utils/logger"
	"github.com/pkg/errors"
)

var _ backend.Backend = &ollamaBackend{}

type ollamaBackend struct {
	endpoint string
	model    string
	client   *http.Client
}

type Options struct {
	// Endpoint is the base of the Ollama API, e.g. http://localhost:11434/api
	Endpoint string
	Model    string
	// Timeout bounds each upstream call. Zero means no timeout.
	Timeout time.Duration
}

func NewOllamaBackend(opts Options) backend.Backend {
	endpoint := strings.TrimRight(opts.Endpoint, "/")
	if endpoint == "" {
		endpoint = ollamaconstants.DefaultEndpoint
	}
	model := opts.Model
	if model == "" {
		model = ollamaconstants.DefaultModel
	}
	return &ollamaBackend{
		endpoint: endpoint,
		model:    model,
		client:   &http.Client{Timeout: opts.Timeout},
	}
}

// Name returns the name of the backend
func (b *ollamaBackend) Name() string {
	return "ollama"
}

// Generate sends a single non-streaming generate request upstream and returns
// its response text.
func (b *ollamaBackend) Generate(ctx context.Context, req *relay.ChatRequest) (string, error) {
	lgr, ctx := logutils.FromContext(ctx).Clone(ctx, b.Name())

	genReq := convertChatRequest(req, b.model)
	if genReq.Prompt == nil {
		lgr.Warn(ctx, "request has no prompt, forwarding without one")
	}

	genReqBody, err := json.Marshal(genReq)
	if err != nil {
		return "", errors.Wrap(err, "error marshalling generate request")
	}
	lgr.Debugf(ctx, "generate request body: %s", string(genReqBody))

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		fmt.Sprintf("%s/generate", b.endpoint),
		bytes.NewReader(genReqBody),
	)
	if err != nil {
		return "", errors.Wrap(err, "error creating generate request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Accept-Encoding", acceptEncoding)

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, "error POSTing generate request")
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return "", errors.Wrap(err, "error reading generate response")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", errors.Errorf("upstream returned %d %s: %s",
			resp.StatusCode, http.StatusText(resp.StatusCode), strings.TrimSpace(string(body)))
	}

	var genResp ollama.GenerateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", errors.Wrapf(err, "error unmarshaling generate response: %s", string(body))
	}
	if genResp.Response == nil {
		return "", errors.Errorf("generate response has no response field: %s", string(body))
	}

	lgr.Debugf(ctx, "generate response from model %s, done=%t", genResp.Model, genResp.Done)
	return *genResp.Response, nil
}
