package model

import "time"

// Config holds the complete runtime configuration
type Config struct {
	// Data file paths
	Data DataConfig `yaml:"data" json:"data"`

	// Cache settings
	Cache CacheConfig `yaml:"cache" json:"cache"`

	// LLM provider settings
	LLM LLMConfig `yaml:"llm" json:"llm"`

	// Concurrency settings for batch processing
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`

	// Evaluation thresholds and pricing assumptions
	Evaluation EvaluationConfig `yaml:"evaluation" json:"evaluation"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`
}

// DataConfig locates the source dataset
type DataConfig struct {
	// CSVPath is the consultation export file
	CSVPath string `yaml:"csv_path" json:"csv_path"`

	// SectionMappingPath is an optional XLSX mapping survey headers to sections
	SectionMappingPath string `yaml:"section_mapping_path" json:"section_mapping_path"`

	// ExcerptChars bounds the per-record excerpt used in prompts and evidence
	ExcerptChars int `yaml:"excerpt_chars" json:"excerpt_chars"`
}

// CacheConfig controls the summary cache
type CacheConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Path is the SQLite cache file
	Path string `yaml:"path" json:"path"`

	// MemoryTTL bounds how long hot entries stay in the memory layer
	MemoryTTL time.Duration `yaml:"memory_ttl" json:"memory_ttl"`
}

// LLMConfig holds LLM provider configuration
type LLMConfig struct {
	// Provider name: "openai", "azure", ""
	Provider string `yaml:"provider" json:"provider"`

	// Model name (OpenAI) used for completions and cache keying
	Model string `yaml:"model" json:"model"`

	// APIKey for OpenAI. Loaded from the environment and never serialized.
	APIKey string `yaml:"-" json:"-"`

	// BaseURL for custom OpenAI-compatible endpoints
	BaseURL string `yaml:"base_url" json:"base_url"`

	// Azure OpenAI settings (used when Provider is "azure")
	AzureEndpoint   string `yaml:"azure_endpoint" json:"azure_endpoint"`
	AzureDeployment string `yaml:"azure_deployment" json:"azure_deployment"`
	AzureAPIVersion string `yaml:"azure_api_version" json:"azure_api_version"`
	AzureAPIKey     string `yaml:"-" json:"-"`

	// Timeout per request
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// MaxRetries for transient API failures
	MaxRetries int `yaml:"max_retries" json:"max_retries"`

	// Temperature for generation
	Temperature float32 `yaml:"temperature" json:"temperature"`
}

// ModelIdentity returns the active model/deployment name for cache keying.
func (c LLMConfig) ModelIdentity() string {
	if c.Provider == "azure" && c.AzureDeployment != "" {
		return c.AzureDeployment
	}
	return c.Model
}

// ConcurrencyConfig controls batch workers and LLM request pacing
type ConcurrencyConfig struct {
	Workers           int     `yaml:"workers" json:"workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`
}

// EvaluationConfig holds KPI thresholds and token pricing
type EvaluationConfig struct {
	// LowSampleThreshold flags summaries built on too few records
	LowSampleThreshold int `yaml:"low_sample_threshold" json:"low_sample_threshold"`

	// HighMissingnessThreshold flags summaries with poor coverage
	HighMissingnessThreshold float64 `yaml:"high_missingness_threshold" json:"high_missingness_threshold"`

	// Token pricing assumptions for cost estimates
	InputCostPer1KTokens  float64 `yaml:"input_cost_per_1k_tokens" json:"input_cost_per_1k_tokens"`
	OutputCostPer1KTokens float64 `yaml:"output_cost_per_1k_tokens" json:"output_cost_per_1k_tokens"`
}

// OutputConfig controls CLI output behavior
type OutputConfig struct {
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Dir is where summary JSON files are written
	Dir string `yaml:"dir" json:"dir"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			CSVPath:            "data/data.csv",
			SectionMappingPath: "data/section-mapping.xlsx",
			ExcerptChars:       280,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Path:      ".cache/summaries.sqlite",
			MemoryTTL: 30 * time.Minute,
		},
		LLM: LLMConfig{
			Provider:        "openai",
			Model:           "gpt-4.1-mini",
			AzureAPIVersion: "2024-06-01",
			Timeout:         5 * time.Minute,
			MaxRetries:      2,
			Temperature:     0.1,
		},
		Concurrency: ConcurrencyConfig{
			Workers:           4,
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Evaluation: EvaluationConfig{
			LowSampleThreshold:       8,
			HighMissingnessThreshold: 0.35,
			InputCostPer1KTokens:     0.0008,
			OutputCostPer1KTokens:    0.0032,
		},
		Output: OutputConfig{
			Dir: "./summaries",
		},
	}
}
