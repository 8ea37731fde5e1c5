package quizgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// LangchainGenerator implements domain.TextGenerator over any langchaingo model.
type LangchainGenerator struct {
	llm         llms.Model
	name        string
	temperature float64
	timeout     time.Duration
}

// NewOllamaGenerator connects to an Ollama server.
func NewOllamaGenerator(serverURL, model string, temperature float64, timeout time.Duration) (*LangchainGenerator, error) {
	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     30 * time.Second,
		},
	}
	llm, err := ollama.New(
		ollama.WithServerURL(serverURL),
		ollama.WithModel(model),
		ollama.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}
	logger.Get().Info("Initializing Ollama generator", zap.String("server", serverURL), zap.String("model", model))
	return NewLangchainGenerator(llm, "ollama", temperature, timeout), nil
}

// NewOpenAIGenerator uses the OpenAI chat API. baseURL may be empty.
func NewOpenAIGenerator(apiKey, baseURL, model string, temperature float64, timeout time.Duration) (*LangchainGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key cannot be empty")
	}
	opts := []openai.Option{openai.WithToken(apiKey), openai.WithModel(model)}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}
	logger.Get().Info("Initializing OpenAI generator", zap.String("model", model))
	return NewLangchainGenerator(llm, "openai", temperature, timeout), nil
}

func NewLangchainGenerator(llm llms.Model, name string, temperature float64, timeout time.Duration) *LangchainGenerator {
	return &LangchainGenerator{llm: llm, name: name, temperature: temperature, timeout: timeout}
}

// Generate sends the prompt and returns the model's raw text.
func (g *LangchainGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	l := logger.Get()
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	response, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, llms.WithTemperature(g.temperature))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			l.Error("LLM request timed out", zap.String("provider", g.name), zap.Duration("timeout", g.timeout))
		} else {
			l.Error("Failed to get response from LLM", zap.String("provider", g.name), zap.Error(err))
		}
		return "", domain.NewGenerationError(err)
	}
	if strings.TrimSpace(response) == "" {
		return "", domain.NewGenerationError(errors.New("empty response from model"))
	}
	return response, nil
}

var _ domain.TextGenerator = (*LangchainGenerator)(nil)
