package quizgen

import (
	"context"
	"fmt"

	"wiki-quiz/internal/config"
	"wiki-quiz/internal/domain"
)

const defaultOllamaURL = "http://localhost:11434"

// NewTextGenerator selects the provider named in cfg.Provider.
func NewTextGenerator(ctx context.Context, cfg config.LLMConfig) (domain.TextGenerator, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiGenerator(ctx, cfg.APIKey, cfg.Model, cfg.Temperature, cfg.Timeout)
	case "ollama":
		serverURL := cfg.ServerURL
		if serverURL == "" {
			serverURL = defaultOllamaURL
		}
		return NewOllamaGenerator(serverURL, cfg.Model, cfg.Temperature, cfg.Timeout)
	case "openai":
		return NewOpenAIGenerator(cfg.APIKey, cfg.ServerURL, cfg.Model, cfg.Temperature, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", cfg.Provider)
	}
}
