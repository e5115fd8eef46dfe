package translateserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/anatolykoptev/go_yttranslate/internal/engine"
	"github.com/anatolykoptev/go_yttranslate/internal/toolutil"
)

const msgInternal = "서버 내부 오류가 발생했습니다."

type translateBody struct {
	URL            string `json:"youtube_url" validate:"required,max=2048"`
	TargetLanguage string `json:"target_language" validate:"omitempty,oneof=en ko ja zh es fr"`
}

type batchBody struct {
	URLs           []string `json:"youtube_urls" validate:"required,min=1,dive,required,max=2048"`
	TargetLanguage string   `json:"target_language" validate:"omitempty,oneof=en ko ja zh es fr"`
}

// errorBody is the JSON shape of every non-2xx response except quota failures.
type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Path    string            `json:"path,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type healthBody struct {
	Status           string    `json:"status"`
	Version          string    `json:"version"`
	Timestamp        time.Time `json:"timestamp"`
	GeminiConfigured bool      `json:"gemini_configured"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthBody{
		Status:           "healthy",
		Version:          s.cfg.Version,
		Timestamp:        time.Now().UTC(),
		GeminiConfigured: s.tr.Configured(),
	})
}

func (s *Server) handleTranslate(c echo.Context) error {
	var body translateBody
	if err := s.bindAndValidate(c, &body); err != nil {
		return err
	}

	req := engine.TranslationRequest{
		URL:            body.URL,
		TargetLanguage: toolutil.NormLang(body.TargetLanguage, s.tr.DefaultLanguage()),
	}
	res, err := s.tr.Translate(c.Request().Context(), req)
	if err == nil {
		return c.JSON(http.StatusOK, res)
	}

	switch {
	case errors.Is(err, engine.ErrInvalidURL):
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid_url", Message: engine.UserMessage(err)})
	case errors.Is(err, engine.ErrQuotaExceeded):
		return c.JSON(http.StatusTooManyRequests, res)
	default:
		return c.JSON(http.StatusInternalServerError, errorBody{Error: "translation_failed", Message: engine.UserMessage(err)})
	}
}

func (s *Server) handleTranslateBatch(c echo.Context) error {
	var body batchBody
	if err := s.bindAndValidate(c, &body); err != nil {
		return err
	}
	if len(body.URLs) > s.cfg.BatchMaxURLs {
		return c.JSON(http.StatusUnprocessableEntity, errorBody{
			Error:   "validation_error",
			Message: fmt.Sprintf("한 번에 최대 %d개의 URL만 처리할 수 있습니다.", s.cfg.BatchMaxURLs),
			Details: map[string]string{"youtube_urls": fmt.Sprintf("youtube_urls must contain at most %d items", s.cfg.BatchMaxURLs)},
		})
	}

	lang := toolutil.NormLang(body.TargetLanguage, s.tr.DefaultLanguage())
	out := s.tr.TranslateBatch(c.Request().Context(), toolutil.TrimURLs(body.URLs), lang)
	return c.JSON(http.StatusOK, out)
}

type estimateBody struct {
	DurationSeconds  int     `json:"duration_seconds"`
	EstimatedSeconds float64 `json:"estimated_seconds"`
}

func (s *Server) handleEstimate(c echo.Context) error {
	var seconds int
	if err := echo.QueryParamsBinder(c).MustInt("duration_seconds", &seconds).BindError(); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorBody{
			Error:   "validation_error",
			Details: map[string]string{"duration_seconds": "duration_seconds must be an integer"},
		})
	}
	if seconds < 0 || (s.cfg.MaxVideoDuration > 0 && seconds > s.cfg.MaxVideoDuration) {
		return c.JSON(http.StatusUnprocessableEntity, errorBody{
			Error:   "validation_error",
			Details: map[string]string{"duration_seconds": fmt.Sprintf("duration_seconds must be between 0 and %d", s.cfg.MaxVideoDuration)},
		})
	}
	return c.JSON(http.StatusOK, estimateBody{
		DurationSeconds:  seconds,
		EstimatedSeconds: engine.EstimateTranslationTime(seconds),
	})
}

func (s *Server) handleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.stats.Snapshot())
}

func (s *Server) handleTest(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"message":             "API is working",
		"gemini_configured":   s.tr.Configured(),
		"default_language":    s.tr.DefaultLanguage(),
		"supported_languages": []string{engine.LangEN, engine.LangKO, engine.LangJA, engine.LangZH, engine.LangES, engine.LangFR},
		"timestamp":           time.Now().UTC(),
	})
}

// debugOnly hides h behind a 404 unless DEBUG is enabled.
func (s *Server) debugOnly(h echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.cfg.Debug {
			return echo.ErrNotFound
		}
		return h(c)
	}
}

// bindAndValidate decodes the JSON body into dst and runs struct validation.
// The returned error renders as 422 through handleError.
func (s *Server) bindAndValidate(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "요청 본문을 해석할 수 없습니다.").SetInternal(err)
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return &validationError{details: validationDetails(verrs)}
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}

type validationError struct {
	details map[string]string
}

func (e *validationError) Error() string { return fmt.Sprintf("validation failed: %v", e.details) }

func validationDetails(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			out[field] = fmt.Sprintf("%s is required", field)
		case "oneof":
			out[field] = fmt.Sprintf("%s must be one of: %s", field, fe.Param())
		case "min":
			out[field] = fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		case "max":
			out[field] = fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		default:
			out[field] = fmt.Sprintf("%s is invalid", field)
		}
	}
	return out
}

// handleError renders every error as JSON. 5xx responses never include internal details.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status = http.StatusInternalServerError
		body   = errorBody{Error: "internal_server_error", Message: msgInternal}
		ve     *validationError
		he     *echo.HTTPError
	)
	switch {
	case errors.As(err, &ve):
		status = http.StatusUnprocessableEntity
		body = errorBody{Error: "validation_error", Details: ve.details}
	case errors.As(err, &he):
		status = he.Code
		switch {
		case status == http.StatusNotFound:
			body = errorBody{Error: "not_found", Message: "요청한 리소스를 찾을 수 없습니다.", Path: c.Request().URL.Path}
		case status < http.StatusInternalServerError:
			body = errorBody{Error: http.StatusText(status), Message: fmt.Sprint(he.Message)}
		}
	}

	if status >= http.StatusInternalServerError {
		slog.Error("unhandled error", slog.String("path", c.Request().URL.Path), slog.Any("error", err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		slog.Error("write error response", slog.Any("error", err))
	}
}
