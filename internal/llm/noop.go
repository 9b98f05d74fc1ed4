package llm

import (
	"context"
	"errors"
)

// NoopProvider stands in when no LLM is configured. It exists so read-only
// commands (listing organisations or questions) can construct a service
// without credentials; any summary request fails with a clear error.
type NoopProvider struct{}

// Name returns the provider name
func (NoopProvider) Name() string {
	return "noop"
}

// CompleteJSON always fails
func (NoopProvider) CompleteJSON(ctx context.Context, req Request) (*Result, error) {
	return nil, errors.New("LLM provider is not configured; set an API key to generate summaries")
}
