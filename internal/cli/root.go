package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openconsult/consultsum/internal/cache"
	"github.com/openconsult/consultsum/internal/llm"
	"github.com/openconsult/consultsum/internal/model"
	"github.com/openconsult/consultsum/internal/service"
)

var (
	cfgFile        string
	verbose        bool
	csvPath        string
	sectionMapping string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "consultsum",
	Short: "Consultsum - evidence-grounded consultation response summaries",
	Long: `Consultsum summarises public consultation responses with an LLM while
keeping every claim traceable to the records that support it.

It offers two summarisation approaches:
- per-organisation: section summaries rolled up into one narrative
- per-question: cross-respondent viewpoints with mainstream and minority clusters

Evidence IDs in LLM output are validated against the actual dataset, and
unverifiable references are dropped rather than presented as fact.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Consultsum.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("consultsum v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.consultsum/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&csvPath, "csv", "", "consultation responses CSV (overrides config)")
	rootCmd.PersistentFlags().StringVar(&sectionMapping, "section-mapping", "", "XLSX mapping survey headers to sections (overrides config)")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	// Local .env files keep API keys out of shell profiles
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.consultsum")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CONSULTSUM_*
	viper.SetEnvPrefix("CONSULTSUM")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig builds the runtime configuration from defaults, the config
// file, environment variables, and global flags, in ascending priority.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	setString := func(key string, dst *string) {
		if viper.IsSet(key) {
			*dst = viper.GetString(key)
		}
	}

	setString("data.csv_path", &cfg.Data.CSVPath)
	setString("data.section_mapping_path", &cfg.Data.SectionMappingPath)
	if viper.IsSet("data.excerpt_chars") {
		cfg.Data.ExcerptChars = viper.GetInt("data.excerpt_chars")
	}

	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	setString("cache.path", &cfg.Cache.Path)
	if viper.IsSet("cache.memory_ttl") {
		cfg.Cache.MemoryTTL = viper.GetDuration("cache.memory_ttl")
	}

	setString("llm.provider", &cfg.LLM.Provider)
	setString("llm.model", &cfg.LLM.Model)
	setString("llm.base_url", &cfg.LLM.BaseURL)
	setString("llm.azure_api_version", &cfg.LLM.AzureAPIVersion)
	if viper.IsSet("llm.timeout") {
		cfg.LLM.Timeout = viper.GetDuration("llm.timeout")
	}
	if viper.IsSet("llm.max_retries") {
		cfg.LLM.MaxRetries = viper.GetInt("llm.max_retries")
	}
	if viper.IsSet("llm.temperature") {
		cfg.LLM.Temperature = float32(viper.GetFloat64("llm.temperature"))
	}

	if viper.IsSet("concurrency.workers") {
		cfg.Concurrency.Workers = viper.GetInt("concurrency.workers")
	}
	if viper.IsSet("concurrency.requests_per_second") {
		cfg.Concurrency.RequestsPerSecond = viper.GetFloat64("concurrency.requests_per_second")
	}
	if viper.IsSet("concurrency.burst") {
		cfg.Concurrency.Burst = viper.GetInt("concurrency.burst")
	}

	if viper.IsSet("evaluation.low_sample_threshold") {
		cfg.Evaluation.LowSampleThreshold = viper.GetInt("evaluation.low_sample_threshold")
	}
	if viper.IsSet("evaluation.high_missingness_threshold") {
		cfg.Evaluation.HighMissingnessThreshold = viper.GetFloat64("evaluation.high_missingness_threshold")
	}
	if viper.IsSet("evaluation.input_cost_per_1k_tokens") {
		cfg.Evaluation.InputCostPer1KTokens = viper.GetFloat64("evaluation.input_cost_per_1k_tokens")
	}
	if viper.IsSet("evaluation.output_cost_per_1k_tokens") {
		cfg.Evaluation.OutputCostPer1KTokens = viper.GetFloat64("evaluation.output_cost_per_1k_tokens")
	}

	setString("output.dir", &cfg.Output.Dir)

	// API keys come from the environment, never the config file
	cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	cfg.LLM.AzureAPIKey = os.Getenv("AZURE_OPENAI_API_KEY")
	if v := os.Getenv("AZURE_OPENAI_ENDPOINT"); v != "" {
		cfg.LLM.AzureEndpoint = v
	}
	if v := os.Getenv("AZURE_OPENAI_DEPLOYMENT"); v != "" {
		cfg.LLM.AzureDeployment = v
	}
	if v := os.Getenv("AZURE_OPENAI_API_VERSION"); v != "" {
		cfg.LLM.AzureAPIVersion = v
	}

	// Flags win over everything
	if csvPath != "" {
		cfg.Data.CSVPath = csvPath
	}
	if sectionMapping != "" {
		cfg.Data.SectionMappingPath = sectionMapping
	}
	cfg.Output.Verbose = verbose

	return cfg
}

// buildService wires the provider, cache, and service for a command.
// requireLLM is false for read-only commands so they run without API keys.
func buildService(cfg *model.Config, requireLLM bool) (*service.Service, error) {
	provider, err := llm.NewProvider(cfg.LLM, requireLLM)
	if err != nil {
		return nil, err
	}

	var store cache.Cache
	if cfg.Cache.Enabled {
		layered, err := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Path)
		if err != nil {
			fmt.Printf("Warning: summary cache unavailable: %v\n", err)
		} else {
			store = layered
		}
	}

	return service.New(cfg, provider, store), nil
}
