// Package gemini calls the native Gemini generateContent REST API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/anatolykoptev/go_yttranslate/internal/engine"
)

// DefaultBaseURL is the public Generative Language API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client implements engine.Generator over generateContent.
type Client struct {
	baseURL     string
	model       string
	keys        []string // primary key first, then fallbacks
	temperature float64
	maxTokens   int
	http        *resty.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithFallbackKeys adds keys tried in order when the previous one is out of quota.
func WithFallbackKeys(keys []string) Option {
	return func(c *Client) {
		for _, k := range keys {
			if k = strings.TrimSpace(k); k != "" {
				c.keys = append(c.keys, k)
			}
		}
	}
}

// WithTemperature sets generationConfig.temperature.
func WithTemperature(t float64) Option { return func(c *Client) { c.temperature = t } }

// WithMaxOutputTokens sets generationConfig.maxOutputTokens.
func WithMaxOutputTokens(n int) Option { return func(c *Client) { c.maxTokens = n } }

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.http.SetTimeout(d) } }

// New returns a client for model authenticated with apiKey.
func New(apiKey, model string, opts ...Option) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		model:       model,
		keys:        []string{apiKey},
		temperature: 0.3,
		maxTokens:   8192,
		http:        resty.New().SetTimeout(120 * time.Second),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends prompt as a single user turn and returns the concatenated candidate text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for i, key := range c.keys {
		text, err := c.generate(ctx, key, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if engine.KindOf(err) != engine.KindQuota || i == len(c.keys)-1 {
			break
		}
		slog.Warn("gemini: key out of quota, trying fallback", slog.Int("key_index", i))
	}
	return "", lastErr
}

func (c *Client) generate(ctx context.Context, key, prompt string) (string, error) {
	body := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     c.temperature,
			MaxOutputTokens: c.maxTokens,
		},
	}
	var (
		resp   generateResponse
		errRes apiError
	)
	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	r, err := c.http.R().SetContext(ctx).
		SetHeader("x-goog-api-key", key).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&resp).
		SetError(&errRes).
		Post(url)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", engine.NewCallError(engine.KindTransient, 0, fmt.Errorf("gemini request: %w", err))
	}
	if r.IsError() {
		return "", classify(r.StatusCode(), errRes)
	}

	if reason := resp.PromptFeedback.BlockReason; reason != "" {
		return "", engine.NewCallError(engine.KindPermanent, r.StatusCode(), fmt.Errorf("gemini: prompt blocked: %s", reason))
	}
	if len(resp.Candidates) == 0 {
		return "", engine.NewCallError(engine.KindTransient, r.StatusCode(), errors.New("gemini: no candidates returned"))
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", engine.NewCallError(engine.KindTransient, r.StatusCode(),
			fmt.Errorf("gemini: empty candidate (finish reason %s)", resp.Candidates[0].FinishReason))
	}
	return text, nil
}

// classify maps an error response to a CallError kind.
// RESOURCE_EXHAUSTED counts as quota regardless of the HTTP status.
func classify(status int, e apiError) error {
	msg := e.Error.Message
	if msg == "" {
		msg = http.StatusText(status)
	}
	err := fmt.Errorf("gemini: %s (%s)", msg, e.Error.Status)
	kind := engine.KindForStatus(status)
	if e.Error.Status == "RESOURCE_EXHAUSTED" {
		kind = engine.KindQuota
	}
	return engine.NewCallError(kind, status, err)
}
