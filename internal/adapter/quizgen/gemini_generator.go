package quizgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/logger"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// contentGenerator is the subset of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator implements domain.TextGenerator on the Gemini API.
type GeminiGenerator struct {
	models      contentGenerator
	model       string
	temperature float32
	timeout     time.Duration
}

// NewGeminiGenerator creates a Gemini backed generator.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, temperature float64, timeout time.Duration) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key cannot be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("gemini model name cannot be empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	logger.Get().Info("Initializing Gemini generator", zap.String("model", model))
	return newGeminiGenerator(client.Models, model, temperature, timeout), nil
}

func newGeminiGenerator(models contentGenerator, model string, temperature float64, timeout time.Duration) *GeminiGenerator {
	return &GeminiGenerator{
		models:      models,
		model:       model,
		temperature: float32(temperature),
		timeout:     timeout,
	}
}

// Generate sends the prompt and returns the model's raw text.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	l := logger.Get()
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			l.Error("Gemini request timed out", zap.Duration("timeout", g.timeout))
		} else {
			l.Error("Failed to get response from Gemini", zap.Error(err))
		}
		return "", domain.NewGenerationError(err)
	}

	raw := ""
	if result != nil {
		raw = result.Text()
	}
	if strings.TrimSpace(raw) == "" {
		return "", domain.NewGenerationError(errors.New("empty response from model"))
	}

	l.Debug("Gemini response received",
		zap.String("model", g.model),
		zap.Int("chars", len(raw)),
		zap.Duration("duration", time.Since(start)))
	return raw, nil
}

var _ domain.TextGenerator = (*GeminiGenerator)(nil)
