package cli

import (
	"fmt"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/finvet/internal/model"
)

// Data and provider flags shared by ask and batch
var (
	universePath string
	factsPath    string
	catalogPath  string
	noCache      bool
	noFooter     bool
	strictMode   bool
	noCorrect    bool
	llmProvider  string
	llmModel     string
)

// buildConfig layers the config file and environment over the defaults,
// then applies the shared CLI flags on top.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	err := viper.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	})
	if err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	if universePath != "" {
		cfg.Universe.Path = universePath
	}
	if factsPath != "" {
		cfg.Facts.Path = factsPath
	}
	if catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	if strictMode {
		cfg.Verification.StrictMode = true
	}
	if noCorrect {
		cfg.Verification.AutoCorrect = false
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	cfg.Output.Verbose = verbose

	if err := resolveCredentials(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveCredentials fills provider credentials from the environment
func resolveCredentials(cfg *model.Config) error {
	switch cfg.LLM.Provider {
	case "openai":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}
	return nil
}

// addSharedFlags registers the data and verification flags on a command
func addSharedFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&universePath, "universe", "", "company universe YAML (overrides config)")
	cmd.Flags().StringVar(&factsPath, "facts", "", "ground-truth facts YAML (overrides config)")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "metric catalog YAML (default: built-in catalog)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable ground-truth lookup caching")
	cmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	cmd.Flags().BoolVar(&strictMode, "strict", false, "withhold answers below the minimum confidence")
	cmd.Flags().BoolVar(&noCorrect, "no-correct", false, "annotate incorrect values instead of rewriting them")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "", "answer provider (openai, ollama, template)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "model name for the answer provider")
}
