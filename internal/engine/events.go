package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event sources.
const (
	SourceCache      = "cache"
	SourceLLM        = "llm"
	SourceValidation = "validation"
)

// TranslationEvent describes one terminal translation result.
// It is emitted after the result has been handed back to the caller.
type TranslationEvent struct {
	ID             string            `json:"id"`
	URL            string            `json:"url"`
	VideoID        string            `json:"video_id,omitempty"`
	TargetLanguage string            `json:"target_language"`
	Status         TranslationStatus `json:"status"`
	Source         string            `json:"source"`
	ErrorKind      string            `json:"error_kind,omitempty"`
	Duration       time.Duration     `json:"duration_ns"`
	WordCount      int               `json:"word_count,omitempty"`
	At             time.Time         `json:"at"`
}

func newTranslationEvent(res *TranslationResult, lang, source string, err error, d time.Duration) TranslationEvent {
	ev := TranslationEvent{
		ID:             uuid.NewString(),
		URL:            res.SourceURL,
		TargetLanguage: lang,
		Status:         res.Status,
		Source:         source,
		Duration:       d,
		At:             time.Now().UTC(),
	}
	if res.VideoID != nil {
		ev.VideoID = *res.VideoID
	}
	if res.WordCount != nil {
		ev.WordCount = *res.WordCount
	}
	if err != nil {
		ev.ErrorKind = errorKindLabel(err)
	}
	return ev
}

// EventSink consumes translation events off the request path.
type EventSink interface {
	Handle(ctx context.Context, ev TranslationEvent) error
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ctx context.Context, ev TranslationEvent) error

// Handle calls f.
func (f EventSinkFunc) Handle(ctx context.Context, ev TranslationEvent) error { return f(ctx, ev) }

// EventQueue is a bounded post-response queue drained by a single worker.
// Enqueue never blocks: events are dropped when the buffer is full.
type EventQueue struct {
	ch    chan TranslationEvent
	sinks []EventSink

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewEventQueue creates a queue buffering up to size events.
func NewEventQueue(size int, sinks ...EventSink) *EventQueue {
	if size <= 0 {
		size = 256
	}
	return &EventQueue{
		ch:    make(chan TranslationEvent, size),
		sinks: sinks,
		done:  make(chan struct{}),
	}
}

// Start launches the worker. ctx is passed to sinks.
func (q *EventQueue) Start(ctx context.Context) {
	go func() {
		defer close(q.done)
		for ev := range q.ch {
			for _, s := range q.sinks {
				if err := s.Handle(ctx, ev); err != nil {
					slog.Warn("event sink failed", slog.String("event_id", ev.ID), slog.Any("error", err))
				}
			}
		}
	}()
}

// Enqueue adds ev to the queue. It reports false when the event was dropped.
func (q *EventQueue) Enqueue(ev TranslationEvent) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}
	select {
	case q.ch <- ev:
		return true
	default:
		metrics.EventsDropped.Add(1)
		slog.Warn("event queue full, dropping event", slog.String("url", ev.URL))
		return false
	}
}

// Close stops accepting events and waits for the worker to drain the buffer.
// Start must have been called.
func (q *EventQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()
	<-q.done
}

// LogSink writes one structured log line per event.
func LogSink() EventSink {
	return EventSinkFunc(func(_ context.Context, ev TranslationEvent) error {
		slog.Info("translation finished",
			slog.String("id", ev.ID),
			slog.String("video_id", ev.VideoID),
			slog.String("lang", ev.TargetLanguage),
			slog.String("status", string(ev.Status)),
			slog.String("source", ev.Source),
			slog.String("error_kind", ev.ErrorKind),
			slog.Duration("elapsed", ev.Duration))
		return nil
	})
}
