package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/openai/openai-go"

	"github.com/one-million-why/why-engine/pkg/config"
	"github.com/one-million-why/why-engine/pkg/observability/logging"
)

// OpenAIProvider talks to an OpenAI-compatible chat completions endpoint.
type OpenAIProvider struct {
	httpClient  *http.Client
	endpoint    string
	model       string
	apiKey      string
	maxTokens   int
	temperature float64
}

// NewOpenAIProvider builds a provider from the engine configuration.
func NewOpenAIProvider(cfg *config.EngineConfig, apiKey string) *OpenAIProvider {
	return &OpenAIProvider{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
		},
		endpoint:    cfg.Provider.Endpoint,
		model:       cfg.Provider.Model,
		apiKey:      apiKey,
		maxTokens:   cfg.Provider.MaxTokens,
		temperature: cfg.Provider.Temperature,
	}
}

// errorEnvelope is the error body shape of OpenAI-compatible endpoints.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Complete sends one chat completion request and returns the assistant text.
func (p *OpenAIProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		MaxTokens:   openai.Int(int64(p.maxTokens)),
		Temperature: openai.Float(p.temperature),
	}

	body, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		// Transport failures (timeouts, refused connections) are transient.
		return "", &ProviderError{StatusCode: http.StatusGatewayTimeout, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		pe := &ProviderError{StatusCode: resp.StatusCode, Message: string(respBody)}
		var env errorEnvelope
		if json.Unmarshal(respBody, &env) == nil && env.Error.Message != "" {
			pe.Message = env.Error.Message
			pe.Code = env.Error.Code
		}
		return "", pe
	}

	var completion openai.ChatCompletion
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in provider response")
	}

	logging.Debugf("completion from %s: %d choices, model=%s", p.endpoint, len(completion.Choices), completion.Model)
	return completion.Choices[0].Message.Content, nil
}
