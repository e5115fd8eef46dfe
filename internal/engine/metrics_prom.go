package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	promTranslations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yttranslate_translations_total",
		Help: "Translation results by status and source (cache or llm).",
	}, []string{"status", "source"})

	promTranslateDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "yttranslate_translate_duration_seconds",
		Help:    "End-to-end duration of a single translation.",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"status"})

	promLLMCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yttranslate_llm_calls_total",
		Help: "Model calls by outcome kind.",
	}, []string{"outcome"})

	promLLMDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "yttranslate_llm_call_duration_seconds",
		Help:    "Duration of model calls including retries.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
	})

	promCacheOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yttranslate_cache_operations_total",
		Help: "Cache lookups and writes by result.",
	}, []string{"op", "result"})

	promBatchInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "yttranslate_batch_inflight",
		Help: "Batch sub-requests currently holding a concurrency slot.",
	})
)

func observeLLMCall(d time.Duration, err error) {
	promLLMDuration.Observe(d.Seconds())
	outcome := "ok"
	if err != nil {
		outcome = KindOf(err).String()
	}
	promLLMCalls.WithLabelValues(outcome).Inc()
}

func observeTranslation(status TranslationStatus, source string, d time.Duration) {
	promTranslations.WithLabelValues(string(status), source).Inc()
	promTranslateDuration.WithLabelValues(string(status)).Observe(d.Seconds())
}

func observeCache(op, result string) {
	promCacheOps.WithLabelValues(op, result).Inc()
}
