package engine

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// DefaultBatchConcurrency bounds in-flight sub-requests of a batch.
const DefaultBatchConcurrency = 3

// MetadataSource looks up public metadata for a video id.
type MetadataSource interface {
	Lookup(ctx context.Context, videoID string) (VideoMeta, error)
}

// Translator runs the translate lifecycle:
// validate → cache lookup → prompt → model call → parse → cache write.
type Translator struct {
	llm         *CallClient // nil when no API key is configured
	cache       Cache
	meta        MetadataSource
	events      *EventQueue
	defaultLang string
	concurrency int
}

// TranslatorOption configures a Translator.
type TranslatorOption func(*Translator)

// WithCache sets the result cache. Defaults to NopCache.
func WithCache(c Cache) TranslatorOption {
	return func(t *Translator) {
		if c != nil {
			t.cache = c
		}
	}
}

// WithMetadata enables filling title/channel from an external source when the model omits them.
func WithMetadata(m MetadataSource) TranslatorOption {
	return func(t *Translator) { t.meta = m }
}

// WithEvents sets the queue receiving one event per terminal result.
func WithEvents(q *EventQueue) TranslatorOption {
	return func(t *Translator) { t.events = q }
}

// WithDefaultLanguage sets the language used when a request omits one.
func WithDefaultLanguage(lang string) TranslatorOption {
	return func(t *Translator) {
		if IsSupportedLanguage(lang) {
			t.defaultLang = lang
		}
	}
}

// WithBatchConcurrency sets the batch semaphore width.
func WithBatchConcurrency(n int) TranslatorOption {
	return func(t *Translator) {
		if n > 0 {
			t.concurrency = n
		}
	}
}

// NewTranslator builds a Translator. client may be nil, in which case every
// uncached translation fails with ErrNotConfigured.
func NewTranslator(client *CallClient, opts ...TranslatorOption) *Translator {
	t := &Translator{
		llm:         client,
		cache:       NopCache{},
		defaultLang: DefaultLanguage,
		concurrency: DefaultBatchConcurrency,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Configured reports whether a model client is available.
func (t *Translator) Configured() bool { return t.llm != nil }

// DefaultLanguage returns the language used for requests that omit one.
func (t *Translator) DefaultLanguage() string { return t.defaultLang }

// Translate runs a single translation. The returned result is never nil:
// on failure it has status failed and a user-facing error message, and err
// wraps one of ErrInvalidURL, ErrQuotaExceeded, ErrCallFailed or ErrNotConfigured.
func (t *Translator) Translate(ctx context.Context, req TranslationRequest) (*TranslationResult, error) {
	start := time.Now()
	metrics.TranslateRequests.Add(1)
	lang := t.resolveLang(req.TargetLanguage)

	res, source, err := t.translate(ctx, req.URL, lang, start)
	if err != nil {
		metrics.TranslateFailed.Add(1)
		res = failedResult(req.URL, lang, err)
		slog.Warn("translate failed",
			slog.String("url", req.URL),
			slog.String("lang", lang),
			slog.Any("error", err))
	}

	d := time.Since(start)
	observeTranslation(res.Status, source, d)
	if t.events != nil {
		t.events.Enqueue(newTranslationEvent(res, lang, source, err, d))
	}
	return res, err
}

func (t *Translator) translate(ctx context.Context, url, lang string, start time.Time) (*TranslationResult, string, error) {
	videoID, ok := ExtractVideoID(url)
	if !ok {
		return nil, SourceValidation, ErrInvalidURL
	}

	if cached, ok := t.cache.Get(ctx, url, lang); ok {
		return cached, SourceCache, nil
	}

	if t.llm == nil {
		return nil, SourceLLM, ErrNotConfigured
	}

	text, err := t.llm.Call(ctx, BuildPrompt(url, lang))
	if err != nil {
		return nil, SourceLLM, err
	}

	res := ParseResponse(text, url)
	res.VideoID = strPtr(videoID)
	res.TargetLanguage = strPtr(lang)
	res.ThumbnailURL = strPtr(ThumbnailURL(videoID))
	t.enrich(ctx, res, videoID)

	elapsed := roundTo(time.Since(start).Seconds(), 2)
	res.ProcessingTimeSeconds = &elapsed

	t.cache.Put(context.WithoutCancel(ctx), url, lang, res)
	return res, SourceLLM, nil
}

// enrich fills title, channel and duration from the metadata source when the model omitted them.
func (t *Translator) enrich(ctx context.Context, res *TranslationResult, videoID string) {
	if t.meta == nil || (res.VideoTitle != nil && res.ChannelName != nil && res.VideoDuration != nil) {
		return
	}
	var meta VideoMeta
	err := TrackOperation(ctx, "metadata_lookup", 3*time.Second, func(ctx context.Context) error {
		var err error
		meta, err = t.meta.Lookup(ctx, videoID)
		return err
	})
	if err != nil {
		slog.Debug("metadata lookup failed", slog.String("video_id", videoID), slog.Any("error", err))
		return
	}
	if res.VideoTitle == nil {
		res.VideoTitle = optStr(meta.Title)
	}
	if res.ChannelName == nil {
		res.ChannelName = optStr(meta.Channel)
	}
	if res.VideoDuration == nil {
		res.VideoDuration = optStr(meta.Duration)
	}
}

// TranslateBatch translates urls with at most the configured number of
// sub-requests in flight. Results keep submission order; a failing URL only
// affects its own entry.
func (t *Translator) TranslateBatch(ctx context.Context, urls []string, lang string) BatchTranslationOutput {
	metrics.BatchRequests.Add(1)
	lang = t.resolveLang(lang)
	results := make([]*TranslationResult, len(urls))
	sem := semaphore.NewWeighted(int64(t.concurrency))

	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				results[i] = failedResult(u, lang, err)
				return
			}
			promBatchInFlight.Inc()
			defer func() {
				promBatchInFlight.Dec()
				sem.Release(1)
			}()
			results[i], _ = t.Translate(ctx, TranslationRequest{URL: u, TargetLanguage: lang})
		}()
	}
	wg.Wait()

	out := NewBatchOutput(results)
	slog.Info("batch finished",
		slog.Int("total", out.Total),
		slog.Int("completed", out.Completed),
		slog.Int("failed", out.Failed))
	return out
}

func (t *Translator) resolveLang(lang string) string {
	if IsSupportedLanguage(lang) {
		return lang
	}
	return t.defaultLang
}

// failedResult builds the terminal failed result for url. No partial fields are set.
func failedResult(url, lang string, err error) *TranslationResult {
	res := &TranslationResult{
		Status:         StatusFailed,
		SourceURL:      url,
		TargetLanguage: strPtr(lang),
		CreatedAt:      time.Now().UTC(),
		ErrorMessage:   strPtr(UserMessage(err)),
	}
	if id, ok := ExtractVideoID(url); ok {
		res.VideoID = strPtr(id)
	}
	return res
}

// errorKindLabel names err for events and logs.
func errorKindLabel(err error) string {
	switch {
	case errors.Is(err, ErrInvalidURL):
		return "invalid_input"
	case errors.Is(err, ErrQuotaExceeded):
		return "quota"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	default:
		return "call_failed"
	}
}

// EstimateTranslationTime returns the expected processing time in seconds for a
// video of the given length: 2s base plus 2.5s per minute, capped at 30s.
func EstimateTranslationTime(durationSeconds int) float64 {
	minutes := float64(max(durationSeconds, 0)) / 60
	return roundTo(min(2.0+2.5*minutes, 30.0), 1)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
