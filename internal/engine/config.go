package engine

import (
	"errors"
	"fmt"
	"net"
	"slices"
	"strings"
	"time"

	"github.com/anatolykoptev/go_yttranslate/internal/engine/cachestore"
)

// LLM providers.
const (
	ProviderOpenAI = "openai" // OpenAI-compatible Gemini endpoint via go-kit/llm
	ProviderGemini = "gemini" // native generateContent REST API
)

// Config holds all service configuration, built in main and passed to constructors.
type Config struct {
	Version     string
	Environment string
	Debug       bool
	LogLevel    string
	Host        string
	Port        string
	MCPPort     string // empty disables the MCP transport

	AllowedOrigins []string

	APIKey          string
	APIKeyFallbacks []string
	Provider        string
	APIBase         string
	Model           string
	Temperature     float64
	MaxOutputTokens int
	LLMTimeout      time.Duration
	Retry           RetryConfig

	DefaultLanguage    string
	MaxVideoDuration   int // seconds
	RateLimitPerMinute int // declared only, not enforced

	CacheEnabled      bool
	CacheTTL          time.Duration
	CacheBackend      string
	RedisURL          string
	SQLitePath        string
	DatabaseURL       string
	CacheL1MaxEntries int

	BatchConcurrency int
	BatchMaxURLs     int

	MetadataLookup bool
	WebshareAPIKey string

	AMQPURL        string
	AMQPQueue      string
	EventQueueSize int
}

// IsProduction reports whether the service runs with ENVIRONMENT=production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// LLMConfigured reports whether an API key for the model is present.
func (c Config) LLMConfigured() bool {
	return c.APIKey != ""
}

// Addr returns the HTTP listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// CacheOptions returns the backend options for cachestore.Open.
func (c Config) CacheOptions() cachestore.Options {
	return cachestore.Options{
		Backend:      c.CacheBackend,
		RedisURL:     c.RedisURL,
		SQLitePath:   c.SQLitePath,
		DatabaseURL:  c.DatabaseURL,
		L1MaxEntries: c.CacheL1MaxEntries,
		L1TTL:        c.CacheTTL,
	}
}

// Validate checks the configuration before the service starts.
func (c Config) Validate() error {
	var errs []error
	if c.IsProduction() && !c.LLMConfigured() {
		errs = append(errs, errors.New("GEMINI_API_KEY is required in production"))
	}
	if c.Provider != ProviderOpenAI && c.Provider != ProviderGemini {
		errs = append(errs, fmt.Errorf("LLM_PROVIDER %q: want %s or %s", c.Provider, ProviderOpenAI, ProviderGemini))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if !IsSupportedLanguage(c.DefaultLanguage) {
		errs = append(errs, fmt.Errorf("DEFAULT_TARGET_LANGUAGE %q is not supported", c.DefaultLanguage))
	}
	if c.BatchConcurrency < 1 {
		errs = append(errs, fmt.Errorf("BATCH_CONCURRENCY must be >= 1, got %d", c.BatchConcurrency))
	}
	if c.BatchMaxURLs < 1 {
		errs = append(errs, fmt.Errorf("BATCH_MAX_URLS must be >= 1, got %d", c.BatchMaxURLs))
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("RETRY_MAX_ATTEMPTS must be >= 1, got %d", c.Retry.MaxAttempts))
	}
	if c.CacheEnabled {
		if !slices.Contains(cachestore.Backends, c.CacheBackend) {
			errs = append(errs, fmt.Errorf("CACHE_BACKEND %q: want one of %s", c.CacheBackend, strings.Join(cachestore.Backends, ", ")))
		}
		if c.CacheTTL < 0 {
			errs = append(errs, errors.New("CACHE_TTL must not be negative"))
		}
	}
	return errors.Join(errs...)
}
