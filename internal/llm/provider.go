package llm

import (
	"context"

	"github.com/openconsult/consultsum/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// CompleteJSON runs one JSON-constrained chat completion. The payload is
	// whatever JSON object the model produced; malformed model output decodes
	// to an empty payload rather than an error, so callers must reconcile it
	// against their own evidence.
	CompleteJSON(ctx context.Context, req Request) (*Result, error)
}

// Request contains the input for one completion call
type Request struct {
	// SystemPrompt carries the summarisation policy and format constraints
	SystemPrompt string

	// UserPrompt carries the source consultation evidence
	UserPrompt string

	// Temperature is the sampling control
	Temperature float32
}

// Result contains the parsed model output
type Result struct {
	// Payload is the JSON object the model returned (possibly empty)
	Payload map[string]any

	// Usage tracks token consumption for cost estimates
	Usage model.Usage
}
