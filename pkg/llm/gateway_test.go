package llm

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"personatranslator/config"
	"personatranslator/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	calls int
	fn    func() (string, error)
}

func (s *stubGateway) Complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	s.calls++
	return s.fn()
}

func quietLogger() *logger.Logger {
	l := logger.NewWithWriter(io.Discard)
	l.SetLevel(logger.ERROR)
	return l
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.Provider = "bogus"
	cfg.LLM.APIKey = "key"

	_, err := New(context.Background(), cfg, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestNewOpenAIProvider(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.Provider = "openai"
	cfg.LLM.APIKey = "key"

	gw, err := New(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	assert.NotNil(t, gw)
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	stub := &stubGateway{}
	stub.fn = func() (string, error) {
		if stub.calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	}

	g := &retryGateway{inner: stub, maxRetries: 2, backoff: time.Millisecond, logger: quietLogger()}
	out, err := g.Complete(context.Background(), "s", "u", 0.4)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 3, stub.calls)
}

func TestRetryGivesUpAfterMaxRetries(t *testing.T) {
	stub := &stubGateway{fn: func() (string, error) { return "", errors.New("down") }}

	g := &retryGateway{inner: stub, maxRetries: 2, backoff: time.Millisecond, logger: quietLogger()}
	_, err := g.Complete(context.Background(), "s", "u", 0.4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "down")
	assert.Equal(t, 3, stub.calls)
}

func TestRetryStopsOnCancel(t *testing.T) {
	stub := &stubGateway{fn: func() (string, error) { return "", errors.New("down") }}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := &retryGateway{inner: stub, maxRetries: 2, backoff: time.Second, logger: quietLogger()}
	_, err := g.Complete(ctx, "s", "u", 0.4)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, stub.calls)
}

func TestCacheMemoizesIdenticalPrompts(t *testing.T) {
	stub := &stubGateway{fn: func() (string, error) { return "Halo", nil }}
	g := &cachedGateway{inner: stub, cache: make(map[string]string)}

	for i := 0; i < 3; i++ {
		out, err := g.Complete(context.Background(), "s", "u", 0.4)
		require.NoError(t, err)
		assert.Equal(t, "Halo", out)
	}
	assert.Equal(t, 1, stub.calls)

	// A different temperature is a different completion.
	_, err := g.Complete(context.Background(), "s", "u", 0.2)
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls)
}

func TestCacheSkipsFailures(t *testing.T) {
	stub := &stubGateway{fn: func() (string, error) { return "", errors.New("down") }}
	g := &cachedGateway{inner: stub, cache: make(map[string]string)}

	_, err := g.Complete(context.Background(), "s", "u", 0.4)
	require.Error(t, err)
	_, err = g.Complete(context.Background(), "s", "u", 0.4)
	require.Error(t, err)
	assert.Equal(t, 2, stub.calls, "errors are not cached")
}

func TestBackendErrorString(t *testing.T) {
	withStatus := &BackendError{Provider: "openai", Status: 429, Message: "rate limited"}
	assert.Equal(t, "openai error 429: rate limited", withStatus.Error())

	noStatus := &BackendError{Provider: "gemini", Message: "unreachable"}
	assert.Equal(t, "gemini error: unreachable", noStatus.Error())
}
