package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/openconsult/consultsum/internal/model"
)

// Transient API failures get retried with a linear backoff.
var transientStatusCodes = map[int]struct{}{
	408: {}, 429: {}, 500: {}, 502: {}, 503: {}, 504: {},
}

const minTimeout = 30 * time.Second

// OpenAIProvider implements the Provider interface for the OpenAI API
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	timeout    time.Duration
	maxRetries int
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(cfg model.LLMConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      cfg.Model,
		timeout:    normalizeTimeout(cfg.Timeout),
		maxRetries: max(0, cfg.MaxRetries),
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// CompleteJSON runs a JSON-mode chat completion against the OpenAI API
func (p *OpenAIProvider) CompleteJSON(ctx context.Context, req Request) (*Result, error) {
	return completeJSON(ctx, p.client, p.model, p.timeout, p.maxRetries, req)
}

// completeJSON is shared by the OpenAI and Azure providers, which differ only
// in client configuration.
func completeJSON(ctx context.Context, client *openai.Client, modelName string, timeout time.Duration, maxRetries int, req Request) (*Result, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:       modelName,
		Temperature: req.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
	}

	var resp openai.ChatCompletionResponse
	for attempt := 0; ; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		var err error
		resp, err = client.CreateChatCompletion(attemptCtx, chatReq)
		cancel()
		if err == nil {
			break
		}
		if attempt >= maxRetries || ctx.Err() != nil || !isTransient(err) {
			return nil, fmt.Errorf("chat completion: %w", err)
		}
		time.Sleep(time.Duration(attempt+1) * 1500 * time.Millisecond)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("completion response did not contain choices")
	}

	return &Result{
		Payload: decodePayload(resp.Choices[0].Message.Content),
		Usage: model.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

// isTransient reports whether an API error is worth retrying
func isTransient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		_, ok := transientStatusCodes[apiErr.HTTPStatusCode]
		return ok
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// decodePayload is a best-effort parser for model output that should be a
// JSON object. Code fences are stripped, and when the full text does not
// parse, the outermost brace-delimited slice is tried before giving up with
// an empty payload.
func decodePayload(content string) map[string]any {
	text := strings.TrimSpace(content)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return map[string]any{}
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text), &payload); err == nil && payload != nil {
		return payload
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		payload = nil
		if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err == nil && payload != nil {
			return payload
		}
	}

	return map[string]any{}
}

func normalizeTimeout(timeout time.Duration) time.Duration {
	if timeout < minTimeout {
		return minTimeout
	}
	return timeout
}
