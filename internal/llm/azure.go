package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/openconsult/consultsum/internal/model"
)

// AzureProvider implements the Provider interface for Azure OpenAI
// deployments. Requests always target the configured deployment regardless
// of the model name.
type AzureProvider struct {
	client     *openai.Client
	deployment string
	timeout    time.Duration
	maxRetries int
}

// NewAzureProvider creates a new Azure OpenAI provider
func NewAzureProvider(cfg model.LLMConfig) (*AzureProvider, error) {
	if cfg.AzureEndpoint == "" {
		return nil, fmt.Errorf("Azure OpenAI endpoint is required")
	}
	if cfg.AzureDeployment == "" {
		return nil, fmt.Errorf("Azure OpenAI deployment is required")
	}
	if cfg.AzureAPIKey == "" {
		return nil, fmt.Errorf("Azure OpenAI API key is required")
	}

	clientConfig := openai.DefaultAzureConfig(cfg.AzureAPIKey, cfg.AzureEndpoint)
	if cfg.AzureAPIVersion != "" {
		clientConfig.APIVersion = cfg.AzureAPIVersion
	}
	deployment := cfg.AzureDeployment
	clientConfig.AzureModelMapperFunc = func(string) string {
		return deployment
	}

	return &AzureProvider{
		client:     openai.NewClientWithConfig(clientConfig),
		deployment: deployment,
		timeout:    normalizeTimeout(cfg.Timeout),
		maxRetries: max(0, cfg.MaxRetries),
	}, nil
}

// Name returns the provider name
func (p *AzureProvider) Name() string {
	return "azure"
}

// CompleteJSON runs a JSON-mode chat completion against the deployment
func (p *AzureProvider) CompleteJSON(ctx context.Context, req Request) (*Result, error) {
	return completeJSON(ctx, p.client, p.deployment, p.timeout, p.maxRetries, req)
}
