package engine

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Environment:      "development",
		Port:             "8000",
		Provider:         ProviderOpenAI,
		DefaultLanguage:  LangKO,
		BatchConcurrency: 3,
		BatchMaxURLs:     10,
		Retry:            DefaultRetryConfig,
		CacheEnabled:     true,
		CacheBackend:     "memory",
		CacheTTL:         24 * time.Hour,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"dev without key", func(c *Config) { c.APIKey = "" }, ""},
		{"production without key", func(c *Config) { c.Environment = "production" }, "GEMINI_API_KEY"},
		{"production with key", func(c *Config) { c.Environment = "Production"; c.APIKey = "k" }, ""},
		{"bad provider", func(c *Config) { c.Provider = "anthropic" }, "LLM_PROVIDER"},
		{"bad language", func(c *Config) { c.DefaultLanguage = "de" }, "DEFAULT_TARGET_LANGUAGE"},
		{"zero concurrency", func(c *Config) { c.BatchConcurrency = 0 }, "BATCH_CONCURRENCY"},
		{"zero batch size", func(c *Config) { c.BatchMaxURLs = 0 }, "BATCH_MAX_URLS"},
		{"zero attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }, "RETRY_MAX_ATTEMPTS"},
		{"unknown backend", func(c *Config) { c.CacheBackend = "memcached" }, "CACHE_BACKEND"},
		{"unknown backend ignored when disabled", func(c *Config) { c.CacheEnabled = false; c.CacheBackend = "memcached" }, ""},
		{"missing port", func(c *Config) { c.Port = "" }, "PORT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestConfigHelpers(t *testing.T) {
	c := validConfig()
	c.Host = "0.0.0.0"
	if got := c.Addr(); got != "0.0.0.0:8000" {
		t.Errorf("Addr() = %q", got)
	}
	if c.LLMConfigured() {
		t.Error("LLMConfigured() true without key")
	}
	opts := c.CacheOptions()
	if opts.Backend != "memory" || opts.L1TTL != 24*time.Hour {
		t.Errorf("CacheOptions() = %+v", opts)
	}
}
