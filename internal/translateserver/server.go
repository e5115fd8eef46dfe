// Package translateserver exposes the Translator over REST (echo) and MCP.
package translateserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anatolykoptev/go_yttranslate/internal/engine"
)

// Server is the REST surface of the translation service.
type Server struct {
	e        *echo.Echo
	tr       *engine.Translator
	stats    *engine.Stats
	cfg      engine.Config
	validate *validator.Validate
}

// New builds the echo instance with middleware and routes registered.
// stats may be nil; /api/stats then reports counters only.
func New(cfg engine.Config, tr *engine.Translator, stats *engine.Stats) *Server {
	s := &Server{
		e:        echo.New(),
		tr:       tr,
		stats:    stats,
		cfg:      cfg,
		validate: newValidator(),
	}
	if s.stats == nil {
		s.stats = engine.NewStats()
	}

	e := s.e
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogError:     true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			attrs := []any{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Int64("latency_ms", v.Latency.Milliseconds()),
				slog.String("request_id", v.RequestID),
			}
			if v.Error == nil {
				slog.InfoContext(ctx, "request completed", attrs...)
			} else {
				slog.ErrorContext(ctx, "request failed", append(attrs, slog.String("error", v.Error.Error()))...)
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, echo.HeaderXRequestID},
		AllowCredentials: !containsWildcard(cfg.AllowedOrigins),
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.e.GET("/health", s.handleHealth)
	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.e.Group("/api")
	api.POST("/translate", s.handleTranslate)
	api.POST("/translate/batch", s.handleTranslateBatch)
	api.GET("/estimate", s.handleEstimate)
	api.GET("/stats", s.debugOnly(s.handleStats))
	api.GET("/test", s.debugOnly(s.handleTest))
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler { return s.e }

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	slog.Info("http server listening", slog.String("addr", addr))
	if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Use JSON field names for validation error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return len(origins) == 0
}
