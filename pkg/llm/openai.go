package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"personatranslator/pkg/logger"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIConfig holds the settings for an OpenAI-compatible endpoint.
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// OpenAIGateway talks to an OpenAI-compatible chat-completions endpoint.
type OpenAIGateway struct {
	config OpenAIConfig
	client *openai.Client
	logger *logger.Logger
}

// NewOpenAIGateway creates an OpenAIGateway.
func NewOpenAIGateway(cfg OpenAIConfig, log *logger.Logger) *OpenAIGateway {
	client := openai.NewClient(
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(120*time.Second),
		// Retries are handled one level up, uniformly for all providers.
		option.WithMaxRetries(0),
	)

	return &OpenAIGateway{
		config: cfg,
		client: &client,
		logger: log,
	}
}

// Complete sends the prompt pair and returns the generated text.
func (g *OpenAIGateway) Complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	g.logger.Tracef("openai request: %s", logger.Truncate(user, 120))

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Model:       g.config.Model,
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &BackendError{Provider: "openai", Status: apiErr.StatusCode, Message: apiErr.Message}
		}
		return "", &BackendError{Provider: "openai", Message: err.Error()}
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", ErrEmptyResponse
	}

	g.logger.Tracef("openai response: %s", logger.Truncate(out, 200))
	return out, nil
}
