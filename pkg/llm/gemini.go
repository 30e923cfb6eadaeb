package llm

import (
	"context"
	"fmt"
	"strings"

	"personatranslator/pkg/logger"

	"google.golang.org/genai"
)

// GeminiConfig holds the settings for the Gemini backend.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// GeminiGateway talks to the Gemini API through the official SDK.
type GeminiGateway struct {
	config GeminiConfig
	client *genai.Client
	logger *logger.Logger
}

// NewGeminiGateway creates a GeminiGateway.
func NewGeminiGateway(ctx context.Context, cfg GeminiConfig, log *logger.Logger) (*GeminiGateway, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGateway{
		config: cfg,
		client: client,
		logger: log,
	}, nil
}

// Complete sends the prompt pair and returns the generated text.
func (g *GeminiGateway) Complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	g.logger.Tracef("gemini request: %s", logger.Truncate(user, 120))

	resp, err := g.client.Models.GenerateContent(ctx,
		g.config.Model,
		genai.Text(user),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
			Temperature:       genai.Ptr(float32(temperature)),
		},
	)
	if err != nil {
		return "", &BackendError{Provider: "gemini", Message: err.Error()}
	}

	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", ErrEmptyResponse
	}

	g.logger.Tracef("gemini response: %s", logger.Truncate(out, 200))
	return out, nil
}
