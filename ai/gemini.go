package ai

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"fractal-bot/domain"
	"fractal-bot/errors"
)

const defaultModel = "gemini-2.0-flash"

// GeminiDigester delegates digest prose to the Gemini API.
type GeminiDigester struct {
	client *genai.Client
	model  string
	log    *slog.Logger
}

func NewGeminiDigester(ctx context.Context, apiKey, model string, log *slog.Logger) (*GeminiDigester, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing API key", errors.ErrDigestBackend)
	}
	if model == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrDigestBackend, err)
	}
	return &GeminiDigester{client: client, model: model, log: log}, nil
}

func (g *GeminiDigester) Digest(ctx context.Context, digest domain.Digest, msgs []domain.TranscriptMessage) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(buildPrompt(digest, msgs)), nil)
	if err != nil {
		g.log.Warn(fmt.Sprintf("Digest generation failed : %v", err))
		return "", fmt.Errorf("%w: %v", errors.ErrDigestBackend, err)
	}
	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty answer", errors.ErrDigestBackend)
	}
	return text, nil
}
