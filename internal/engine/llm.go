package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
	"github.com/anatolykoptev/go-kit/strutil"
)

//go:generate mockgen -destination=mocks/mock_generator.go -package=mocks . Generator

// Generator submits a single prompt to the model and returns its text completion.
// Implementations classify failures by returning a *CallError.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// CallClient invokes a Generator with the retry policy applied.
type CallClient struct {
	gen   Generator
	retry RetryConfig
	sleep func(context.Context, time.Duration) error
}

// NewCallClient wraps gen with retry config rc.
func NewCallClient(gen Generator, rc RetryConfig) *CallClient {
	return &CallClient{gen: gen, retry: rc, sleep: sleepCtx}
}

// Call sends prompt and returns the completion text.
// Quota failures return ErrQuotaExceeded without retrying; anything else that
// survives the retry loop returns ErrCallFailed. Both wrap the last cause.
func (c *CallClient) Call(ctx context.Context, prompt string) (string, error) {
	metrics.LLMCalls.Add(1)
	start := time.Now()

	text, retries, err := retryDo(ctx, c.retry, c.sleep, func() (string, error) {
		return c.gen.Generate(ctx, prompt)
	})
	metrics.LLMRetries.Add(int64(retries))
	observeLLMCall(time.Since(start), err)

	if err != nil {
		metrics.LLMErrors.Add(1)
		if KindOf(err) == KindQuota {
			metrics.LLMQuotaErrors.Add(1)
			return "", fmt.Errorf("%w: %w", ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("%w: %w", ErrCallFailed, err)
	}

	text = strings.TrimSpace(text)
	slog.Debug("llm call ok",
		slog.Int("retries", retries),
		slog.Int("chars", len(text)),
		slog.String("preview", strutil.TruncateWith(text, 120, "...")))
	return text, nil
}

// NewKitGenerator builds a Generator over the OpenAI-compatible Gemini endpoint.
func NewKitGenerator(c Config) Generator {
	client := llm.NewClient(c.APIBase, c.APIKey, c.Model,
		llm.WithFallbackKeys(c.APIKeyFallbacks),
		llm.WithMaxTokens(c.MaxOutputTokens),
		llm.WithTemperature(c.Temperature),
		llm.WithHTTPClient(&http.Client{Timeout: c.LLMTimeout}),
	)
	return GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.Complete(ctx, "", prompt)
		if err != nil {
			return "", classifyKitError(err)
		}
		return resp, nil
	})
}

// classifyKitError maps go-kit/llm errors to a CallError. The client only
// exposes status and provider error codes in the message text.
func classifyKitError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "429", "quota", "resource_exhausted", "rate limit", "rate_limit"):
		return NewCallError(KindQuota, http.StatusTooManyRequests, err)
	case containsAny(msg, "status 400", "status 401", "status 403", "status 404",
		"invalid_argument", "permission_denied", "api key not valid"):
		return NewCallError(KindPermanent, 0, err)
	}
	return NewCallError(KindTransient, 0, err)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
