package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is returned when the input is not a recognized YouTube link.
	ErrInvalidURL = errors.New("invalid youtube url")
	// ErrQuotaExceeded is returned when the model API reports quota or rate-limit exhaustion.
	ErrQuotaExceeded = errors.New("llm quota exceeded")
	// ErrCallFailed is returned when the model call failed after all attempts.
	ErrCallFailed = errors.New("llm call failed")
	// ErrNotConfigured is returned when no API key was provided.
	ErrNotConfigured = errors.New("llm api key not configured")
)

// User-facing messages attached to failed results.
const (
	msgInvalidURL    = "유효하지 않은 YouTube URL입니다."
	msgQuotaExceeded = "API 사용량을 초과했습니다. 잠시 후 다시 시도해주세요."
	msgCallFailed    = "번역 처리 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요."
	msgNotConfigured = "번역 서비스가 설정되지 않았습니다. 관리자에게 문의해주세요."
)

// UserMessage returns the user-facing message for err. Internal details are never included.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidURL):
		return msgInvalidURL
	case errors.Is(err, ErrQuotaExceeded):
		return msgQuotaExceeded
	case errors.Is(err, ErrNotConfigured):
		return msgNotConfigured
	default:
		return msgCallFailed
	}
}

// ErrorKind classifies a model call failure for the retry policy.
type ErrorKind int

const (
	// KindTransient failures are retried.
	KindTransient ErrorKind = iota
	// KindQuota failures are terminal and surface immediately.
	KindQuota
	// KindPermanent failures are terminal (bad request, invalid key).
	KindPermanent
)

func (k ErrorKind) String() string {
	switch k {
	case KindQuota:
		return "quota"
	case KindPermanent:
		return "permanent"
	default:
		return "transient"
	}
}

// CallError is returned by Generator implementations.
type CallError struct {
	Kind       ErrorKind
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *CallError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s llm error (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s llm error: %v", e.Kind, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// NewCallError wraps err with the given kind.
func NewCallError(kind ErrorKind, status int, err error) *CallError {
	return &CallError{Kind: kind, StatusCode: status, Err: err}
}

// KindOf returns the kind of err. Unclassified errors count as transient.
func KindOf(err error) ErrorKind {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindTransient
}

// KindForStatus maps an HTTP status code from the model API to an error kind.
func KindForStatus(code int) ErrorKind {
	switch {
	case code == 429:
		return KindQuota
	case code == 408 || code >= 500:
		return KindTransient
	case code >= 400:
		return KindPermanent
	}
	return KindTransient
}
