package llm

import (
	"fmt"
	"strings"

	"github.com/openconsult/consultsum/internal/model"
)

// NewProvider creates an LLM provider based on configuration. When requireLLM
// is false a noop provider is returned so read-only commands never need
// credentials.
func NewProvider(cfg model.LLMConfig, requireLLM bool) (Provider, error) {
	if !requireLLM {
		return NoopProvider{}, nil
	}

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIProvider(cfg)

	case "azure":
		return NewAzureProvider(cfg)

	case "", "noop":
		return NoopProvider{}, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, azure)", cfg.Provider)
	}
}
