package main

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_yttranslate/internal/engine"
	"github.com/anatolykoptev/go_yttranslate/internal/engine/gemini"
)

// unsetenv clears keys for the duration of the test.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	unsetenv(t, "LLM_PROVIDER", "LLM_API_BASE", "GEMINI_API_KEY", "CACHE_TTL", "ENVIRONMENT",
		"DEFAULT_TARGET_LANGUAGE", "BATCH_CONCURRENCY", "CACHE_ENABLED", "CACHE_BACKEND")

	cfg := loadConfig()
	assert.Equal(t, engine.ProviderOpenAI, cfg.Provider)
	assert.Equal(t, openAICompatBase, cfg.APIBase)
	assert.Equal(t, engine.LangKO, cfg.DefaultLanguage)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, engine.DefaultBatchConcurrency, cfg.BatchConcurrency)
	assert.True(t, cfg.CacheEnabled)
	assert.False(t, cfg.LLMConfigured())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	unsetenv(t, "LLM_API_BASE")
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("CACHE_TTL", "60")
	t.Setenv("DEBUG", "true")
	t.Setenv("DEFAULT_TARGET_LANGUAGE", "EN")
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")

	cfg := loadConfig()
	assert.Equal(t, engine.ProviderGemini, cfg.Provider)
	assert.Equal(t, gemini.DefaultBaseURL, cfg.APIBase)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.Debug)
	assert.Equal(t, engine.LangEN, cfg.DefaultLanguage)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.True(t, cfg.LLMConfigured())
}

func TestEnvBool(t *testing.T) {
	tests := []struct {
		val  string
		def  bool
		want bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"false", true, false},
		{"garbage", true, true},
		{"", false, false},
	}
	for _, tt := range tests {
		t.Setenv("YT_TEST_BOOL", tt.val)
		assert.Equal(t, tt.want, envBool("YT_TEST_BOOL", tt.def), tt.val)
	}
}

func TestPrintBatch(t *testing.T) {
	color.NoColor = true
	text := "번역문"
	out := engine.BatchTranslationOutput{
		Results: []*engine.TranslationResult{
			{Status: engine.StatusCompleted, SourceURL: "https://youtu.be/dQw4w9WgXcQ", TranslatedText: &text},
			{Status: engine.StatusFailed, SourceURL: "bad"},
		},
		Total: 2, Completed: 1, Failed: 1,
	}

	var buf bytes.Buffer
	printBatch(&buf, out, 0)
	s := buf.String()
	assert.Contains(t, s, "[1/2] https://youtu.be/dQw4w9WgXcQ")
	assert.Contains(t, s, "✓ completed")
	assert.Contains(t, s, "✗ failed")
	assert.Contains(t, s, "번역문")
	assert.Contains(t, s, "2 total, 1 completed, 1 failed")
}
