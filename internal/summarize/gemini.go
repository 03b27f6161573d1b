package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/finsight/finserv-docs/config"
	"github.com/finsight/finserv-docs/internal/models"
	"github.com/finsight/finserv-docs/pkg/logger"
)

// DefaultQuestion is used when the caller supplies no summarizing question.
const DefaultQuestion = "What financial or banking services are governed by the act in the following document? Provide a detailed list of all the services you can find."

// Generator produces document summaries through the Gemini API.
type Generator struct {
	client        *genai.Client
	model         string
	maxInputChars int
	logger        logger.Logger
}

func NewGenerator(ctx context.Context, cfg *config.GeminiConfig, log logger.Logger) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}

	return &Generator{
		client:        client,
		model:         cfg.Model,
		maxInputChars: cfg.MaxInputChars,
		logger:        log,
	}, nil
}

// Summarize sends the document text and an optional custom question to the
// model and returns its summary. Any upstream failure maps onto
// ErrSummarizationUnavailable so callers can retry summarization without
// touching the already-persisted document.
func (g *Generator) Summarize(ctx context.Context, text, question string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no document text to summarize", models.ErrInvalidInput)
	}

	prompt := BuildPrompt(Truncate(text, g.maxInputChars), question)

	m := g.client.GenerativeModel(g.model)
	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		g.logger.Error("Gemini request failed",
			logger.String("model", g.model),
			logger.Error(err),
		)
		return "", fmt.Errorf("%w: %v", models.ErrSummarizationUnavailable, err)
	}

	summary := collectText(resp)
	if summary == "" {
		// blocked or empty candidate; treat like an unavailable service
		return "", fmt.Errorf("%w: model returned no summary", models.ErrSummarizationUnavailable)
	}
	return summary, nil
}

func (g *Generator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func collectText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}

// BuildPrompt combines the summarizing question and the document text into a
// single prompt. An empty question falls back to DefaultQuestion.
func BuildPrompt(text, question string) string {
	if strings.TrimSpace(question) == "" {
		question = DefaultQuestion
	}
	return fmt.Sprintf("%s\n\nDocument text:\n\n%s\n\nSummary:", question, text)
}

// Truncate head-truncates text to at most limit characters, on a rune
// boundary. The head of a filing carries the parties, the amounts and the
// governing clauses; the tail is usually boilerplate, so keeping the head is
// the deterministic policy used everywhere an input budget applies.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := 0
	for i := range text {
		if runes == limit {
			return text[:i]
		}
		runes++
	}
	return text
}
