package quizgen

import (
	"context"
	"errors"
	"testing"
	"time"

	"wiki-quiz/internal/config"
	"wiki-quiz/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"google.golang.org/genai"
)

type fakeGemini struct {
	resp      *genai.GenerateContentResponse
	err       error
	gotModel  string
	gotConfig *genai.GenerateContentConfig
	calls     int
}

func (f *fakeGemini) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.gotModel = model
	f.gotConfig = cfg
	return f.resp, f.err
}

func geminiText(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(text, genai.RoleModel)}},
	}
}

func TestGeminiGenerator_Generate(t *testing.T) {
	fake := &fakeGemini{resp: geminiText(`{"summary":"x"}`)}
	g := newGeminiGenerator(fake, "gemini-flash-latest", 0.3, time.Minute)

	out, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"x"}`, out)
	assert.Equal(t, "gemini-flash-latest", fake.gotModel)
	require.NotNil(t, fake.gotConfig.Temperature)
	assert.InDelta(t, 0.3, *fake.gotConfig.Temperature, 0.0001)
}

func TestGeminiGenerator_TransportError(t *testing.T) {
	g := newGeminiGenerator(&fakeGemini{err: errors.New("429 rate limited")}, "m", 0.3, time.Minute)

	_, err := g.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeGenerationError))
}

func TestGeminiGenerator_EmptyResponse(t *testing.T) {
	for name, resp := range map[string]*genai.GenerateContentResponse{
		"nil":        nil,
		"blank text": geminiText("   "),
		"no parts":   {},
	} {
		t.Run(name, func(t *testing.T) {
			g := newGeminiGenerator(&fakeGemini{resp: resp}, "m", 0.3, time.Minute)
			_, err := g.Generate(context.Background(), "prompt")
			require.Error(t, err)
			assert.True(t, domain.IsCode(err, domain.CodeGenerationError))
		})
	}
}

type fakeModel struct {
	text    string
	err     error
	gotTemp float64
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, o := range options {
		o(&opts)
	}
	f.gotTemp = opts.Temperature
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.text}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestLangchainGenerator_Generate(t *testing.T) {
	model := &fakeModel{text: "raw output"}
	g := NewLangchainGenerator(model, "ollama", 0.3, time.Minute)

	out, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "raw output", out)
	assert.InDelta(t, 0.3, model.gotTemp, 0.0001)
}

func TestLangchainGenerator_Errors(t *testing.T) {
	_, err := NewLangchainGenerator(&fakeModel{err: context.DeadlineExceeded}, "ollama", 0.3, time.Minute).
		Generate(context.Background(), "p")
	assert.True(t, domain.IsCode(err, domain.CodeGenerationError))

	_, err = NewLangchainGenerator(&fakeModel{text: ""}, "ollama", 0.3, time.Minute).
		Generate(context.Background(), "p")
	assert.True(t, domain.IsCode(err, domain.CodeGenerationError))
}

func TestNewTextGenerator_Providers(t *testing.T) {
	g, err := NewTextGenerator(context.Background(), config.LLMConfig{Provider: "ollama", Model: "llama3", Timeout: time.Second})
	require.NoError(t, err)
	assert.IsType(t, &LangchainGenerator{}, g)

	_, err = NewTextGenerator(context.Background(), config.LLMConfig{Provider: "gemini", Model: "m"})
	assert.Error(t, err, "missing api key")

	_, err = NewTextGenerator(context.Background(), config.LLMConfig{Provider: "claude"})
	assert.Error(t, err)
}
