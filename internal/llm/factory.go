package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/ecfr-analyzer/internal/model"
)

// NewProvider creates a new LLM provider based on configuration.
// An empty provider name disables summarization and returns nil.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai)", config.Provider)
	}
}

// ConfigFromModel converts the loaded configuration into provider settings
func ConfigFromModel(cfg model.LLMConfig, httpCfg model.HTTPConfig) Config {
	return Config{
		Provider:      cfg.Provider,
		Model:         cfg.Model,
		APIKey:        cfg.APIKey,
		BaseURL:       cfg.BaseURL,
		Timeout:       cfg.Timeout,
		StrictSources: cfg.StrictSources,
		MaxTokens:     cfg.MaxTokens,
		HTTPProxy:     httpCfg.HTTPProxy,
		HTTPSProxy:    httpCfg.HTTPSProxy,
		NoProxy:       httpCfg.NoProxy,
	}
}
