// Package llm provides the text-completion gateway: a (system, user) prompt
// pair in, generated text out. Providers are interchangeable behind the
// Gateway interface; the fill and learn pipelines never see provider details.
package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"personatranslator/config"
	"personatranslator/pkg/logger"
)

// Gateway sends a system+user prompt pair to a text-generation backend and
// returns the generated text.
type Gateway interface {
	Complete(ctx context.Context, system, user string, temperature float64) (string, error)
}

// New builds a Gateway for the configured provider, wrapped with retry and an
// in-memory completion cache. Game dialog repeats a lot of short lines, so
// the cache saves real calls on large sheets.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (Gateway, error) {
	var inner Gateway
	switch cfg.LLM.Provider {
	case "openai":
		inner = NewOpenAIGateway(OpenAIConfig{
			BaseURL: cfg.LLM.APIURL,
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.OpenAIModel,
		}, log)
	case "google":
		g, err := NewGeminiGateway(ctx, GeminiConfig{
			APIKey: cfg.LLM.APIKey,
			Model:  cfg.LLM.GeminiModel,
		}, log)
		if err != nil {
			return nil, err
		}
		inner = g
	default:
		return nil, fmt.Errorf("unsupported provider: %q", cfg.LLM.Provider)
	}

	return &cachedGateway{
		inner: &retryGateway{inner: inner, maxRetries: 2, backoff: 2 * time.Second, logger: log},
		cache: make(map[string]string),
	}, nil
}

// retryGateway retries transient backend failures with a fixed backoff.
type retryGateway struct {
	inner      Gateway
	maxRetries int
	backoff    time.Duration
	logger     *logger.Logger
}

func (g *retryGateway) Complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	var lastErr error
	for i := 0; i <= g.maxRetries; i++ {
		out, err := g.inner.Complete(ctx, system, user, temperature)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if i < g.maxRetries {
			g.logger.Warnf("completion failed, retrying (attempt %d/%d): %v", i+1, g.maxRetries+1, err)
			select {
			case <-time.After(g.backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", fmt.Errorf("completion failed after %d retries: %w", g.maxRetries, lastErr)
}

// cachedGateway memoizes completions for identical prompts.
type cachedGateway struct {
	inner Gateway
	mu    sync.RWMutex
	cache map[string]string
}

func (g *cachedGateway) Complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	key := cacheKey(system, user, temperature)

	g.mu.RLock()
	if out, ok := g.cache[key]; ok {
		g.mu.RUnlock()
		return out, nil
	}
	g.mu.RUnlock()

	out, err := g.inner.Complete(ctx, system, user, temperature)
	if err != nil {
		return "", err
	}

	g.mu.Lock()
	g.cache[key] = out
	g.mu.Unlock()
	return out, nil
}

func cacheKey(system, user string, temperature float64) string {
	var sb strings.Builder
	sb.WriteString(system)
	sb.WriteByte(0)
	sb.WriteString(user)
	sb.WriteByte(0)
	fmt.Fprintf(&sb, "%.3f", temperature)
	return sb.String()
}
