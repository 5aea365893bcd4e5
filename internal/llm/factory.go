package llm

import (
	"fmt"

	"codeforge/internal/config"
)

// New builds a Client from configuration. An empty API key yields a nil
// client: the generator then falls back to templates, matching library use
// without credentials.
func New(cfg *config.Config) (Client, error) {
	if cfg.LLM.APIKey == "" {
		return nil, nil
	}

	timeout := cfg.TimeoutDuration()

	switch cfg.LLM.Provider {
	case "", "openai":
		return NewOpenAIClientWithConfig(OpenAIConfig{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: timeout,
		}), nil
	case "anthropic":
		return NewAnthropicClientWithConfig(AnthropicConfig{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: timeout,
		}), nil
	case "gemini":
		return NewGeminiClient(cfg.LLM.APIKey, cfg.LLM.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}
