// go_yttranslate — YouTube video translation service.
//
// Accepts YouTube URLs, asks Gemini to translate and summarize the video, and
// returns structured results over REST (echo), optionally MCP, or the CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/anatolykoptev/go_yttranslate/internal/engine"
	"github.com/anatolykoptev/go_yttranslate/internal/engine/cachestore"
	"github.com/anatolykoptev/go_yttranslate/internal/engine/events"
	"github.com/anatolykoptev/go_yttranslate/internal/engine/gemini"
	"github.com/anatolykoptev/go_yttranslate/internal/engine/sources"
	"github.com/anatolykoptev/go_yttranslate/internal/translateserver"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "go_yttranslate",
	Short:         "YouTube video translation service",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (and the MCP server when MCP_PORT is set)",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}
	if err := rootCmd.Execute(); err != nil {
		slog.Error("fatal", slog.Any("error", err))
		os.Exit(1)
	}
}

// app holds the wired engine and everything that must be closed on exit.
type app struct {
	cfg     engine.Config
	tr      *engine.Translator
	stats   *engine.Stats
	events  *engine.EventQueue
	closers []func() error
}

func (a *app) Close() {
	if a.events != nil {
		a.events.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("close failed", slog.Any("error", err))
		}
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	setupLogger(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := initEngine(ctx, cfg)
	defer a.Close()

	slog.Info("starting go_yttranslate",
		slog.String("version", cfg.Version),
		slog.String("environment", cfg.Environment),
		slog.String("addr", cfg.Addr()),
		slog.Bool("gemini_configured", a.tr.Configured()))

	srv := translateserver.New(cfg, a.tr, a.stats)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(cfg.Addr()) })
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), 10*time.Second)
		defer cancel()
		slog.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.MCPPort != "" {
		go runMCP(cfg, a.tr)
	}

	return g.Wait()
}

// runMCP serves the translate tools over MCP. Failures are logged; the REST API keeps running.
func runMCP(cfg engine.Config, tr *engine.Translator) {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_yttranslate",
		Version: cfg.Version,
	}, nil)
	translateserver.RegisterTools(server, tr, cfg.BatchMaxURLs)
	slog.Info("mcp tools registered", slog.Int("count", 2), slog.String("port", cfg.MCPPort))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_yttranslate",
		Version:      cfg.Version,
		Port:         cfg.MCPPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("mcp server failed", slog.Any("error", err))
	}
}

func initEngine(ctx context.Context, cfg engine.Config) *app {
	a := &app{cfg: cfg, stats: engine.NewStats()}

	sinks := []engine.EventSink{a.stats, engine.LogSink()}
	if cfg.AMQPURL != "" {
		mq, err := events.NewRabbitMQ(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			slog.Warn("rabbitmq sink init failed, events stay local", slog.Any("error", err))
		} else {
			sinks = append(sinks, mq)
			a.closers = append(a.closers, mq.Close)
		}
	}
	a.events = engine.NewEventQueue(cfg.EventQueueSize, sinks...)
	a.events.Start(context.WithoutCancel(ctx))

	opts := []engine.TranslatorOption{
		engine.WithDefaultLanguage(cfg.DefaultLanguage),
		engine.WithBatchConcurrency(cfg.BatchConcurrency),
		engine.WithEvents(a.events),
	}

	if cfg.CacheEnabled {
		store, err := cachestore.Open(ctx, cfg.CacheOptions())
		if err != nil {
			slog.Warn("cache backend init failed, falling back to memory",
				slog.String("backend", cfg.CacheBackend), slog.Any("error", err))
			store = cachestore.NewMemory()
		} else {
			slog.Info("cache initialized", slog.String("backend", cfg.CacheBackend), slog.Duration("ttl", cfg.CacheTTL))
		}
		a.closers = append(a.closers, store.Close)
		opts = append(opts, engine.WithCache(engine.NewStoreCache(store, cfg.CacheTTL)))
	}

	if cfg.MetadataLookup {
		opts = append(opts, engine.WithMetadata(newMetadataSource(cfg)))
	}

	var client *engine.CallClient
	if cfg.LLMConfigured() {
		client = engine.NewCallClient(newGenerator(cfg), cfg.Retry)
		slog.Info("llm client initialized", slog.String("provider", cfg.Provider), slog.String("model", cfg.Model))
	} else {
		slog.Warn("GEMINI_API_KEY not set, translations will fail until configured")
	}

	a.tr = engine.NewTranslator(client, opts...)
	return a
}

func newGenerator(cfg engine.Config) engine.Generator {
	if cfg.Provider == engine.ProviderGemini {
		return gemini.New(cfg.APIKey, cfg.Model,
			gemini.WithBaseURL(cfg.APIBase),
			gemini.WithFallbackKeys(cfg.APIKeyFallbacks),
			gemini.WithTemperature(cfg.Temperature),
			gemini.WithMaxOutputTokens(cfg.MaxOutputTokens),
			gemini.WithTimeout(cfg.LLMTimeout),
		)
	}
	return engine.NewKitGenerator(cfg)
}

func newMetadataSource(cfg engine.Config) engine.MetadataSource {
	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))

	if cfg.WebshareAPIKey != "" {
		pool, err := proxypool.NewWebshare(cfg.WebshareAPIKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	httpClient := &http.Client{Timeout: 10 * time.Second}
	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Warn("stealth client init failed, watch-page fallback disabled", slog.Any("error", err))
		return sources.NewYouTubeMeta(httpClient, nil)
	}
	slog.Info("stealth browser client initialized")
	return sources.NewYouTubeMeta(httpClient, sources.StealthFetcher(bc))
}
