package main

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"

	"github.com/anatolykoptev/go_yttranslate/internal/engine"
	"github.com/anatolykoptev/go_yttranslate/internal/engine/cachestore"
	"github.com/anatolykoptev/go_yttranslate/internal/engine/gemini"
)

const openAICompatBase = "https://generativelanguage.googleapis.com/v1beta/openai"

func loadConfig() engine.Config {
	provider := strings.ToLower(env.Str("LLM_PROVIDER", engine.ProviderOpenAI))
	apiBase := openAICompatBase
	if provider == engine.ProviderGemini {
		apiBase = gemini.DefaultBaseURL
	}

	return engine.Config{
		Version:     version,
		Environment: env.Str("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),
		LogLevel:    env.Str("LOG_LEVEL", "info"),
		Host:        env.Str("HOST", "0.0.0.0"),
		Port:        env.Str("PORT", "8000"),
		MCPPort:     env.Str("MCP_PORT", ""),

		AllowedOrigins: env.List("ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000"),

		APIKey:          env.Str("GEMINI_API_KEY", ""),
		APIKeyFallbacks: env.List("LLM_API_KEY_FALLBACKS", ""),
		Provider:        provider,
		APIBase:         env.Str("LLM_API_BASE", apiBase),
		Model:           env.Str("GEMINI_MODEL", "gemini-2.5-flash"),
		Temperature:     env.Float("GEMINI_TEMPERATURE", 0.3),
		MaxOutputTokens: env.Int("GEMINI_MAX_OUTPUT_TOKENS", 8192),
		LLMTimeout:      env.Duration("LLM_TIMEOUT", 120*time.Second),
		Retry: engine.RetryConfig{
			MaxAttempts: env.Int("RETRY_MAX_ATTEMPTS", engine.DefaultRetryConfig.MaxAttempts),
			InitialWait: env.Duration("RETRY_INITIAL_DELAY", engine.DefaultRetryConfig.InitialWait),
			MaxWait:     engine.DefaultRetryConfig.MaxWait,
			Multiplier:  engine.DefaultRetryConfig.Multiplier,
		},

		DefaultLanguage:    strings.ToLower(env.Str("DEFAULT_TARGET_LANGUAGE", engine.DefaultLanguage)),
		MaxVideoDuration:   env.Int("MAX_VIDEO_DURATION", 3600),
		RateLimitPerMinute: env.Int("RATE_LIMIT_PER_MINUTE", 10),

		CacheEnabled:      envBool("CACHE_ENABLED", true),
		CacheTTL:          time.Duration(env.Int("CACHE_TTL", 86400)) * time.Second,
		CacheBackend:      strings.ToLower(env.Str("CACHE_BACKEND", cachestore.BackendMemory)),
		RedisURL:          env.Str("REDIS_URL", ""),
		SQLitePath:        env.Str("CACHE_SQLITE_PATH", "data/cache.db"),
		DatabaseURL:       env.Str("DATABASE_URL", ""),
		CacheL1MaxEntries: env.Int("CACHE_L1_MAX_ENTRIES", 1000),

		BatchConcurrency: env.Int("BATCH_CONCURRENCY", engine.DefaultBatchConcurrency),
		BatchMaxURLs:     env.Int("BATCH_MAX_URLS", 10),

		MetadataLookup: envBool("METADATA_LOOKUP", true),
		WebshareAPIKey: env.Str("WEBSHARE_API_KEY", ""),

		AMQPURL:        env.Str("AMQP_URL", ""),
		AMQPQueue:      env.Str("AMQP_QUEUE", "yt_translation_events"),
		EventQueueSize: env.Int("EVENT_QUEUE_SIZE", 256),
	}
}

// envBool reads a boolean variable; unparsable values fall back to def.
func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(env.Str(key, strconv.FormatBool(def))))
	if err != nil {
		return def
	}
	return v
}

// setupLogger installs the default slog handler: JSON in production, text otherwise.
func setupLogger(cfg engine.Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	if cfg.Debug {
		level = min(level, slog.LevelDebug)
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}
