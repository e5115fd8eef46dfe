package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// metrics tracks operational counters across the engine.
var metrics struct {
	TranslateRequests atomic.Int64
	TranslateFailed   atomic.Int64
	BatchRequests     atomic.Int64
	LLMCalls          atomic.Int64
	LLMErrors         atomic.Int64
	LLMRetries        atomic.Int64
	LLMQuotaErrors    atomic.Int64
	CacheHits         atomic.Int64
	CacheMisses       atomic.Int64
	CacheErrors       atomic.Int64
	MetadataLookups   atomic.Int64
	EventsDropped     atomic.Int64
}

var metricKeys = []string{
	"translate_requests", "translate_failed", "batch_requests",
	"llm_calls", "llm_errors", "llm_retries", "llm_quota_errors",
	"cache_hits", "cache_misses", "cache_errors",
	"metadata_lookups", "events_dropped",
}

// GetMetrics returns a snapshot of all counters.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"translate_requests": metrics.TranslateRequests.Load(),
		"translate_failed":   metrics.TranslateFailed.Load(),
		"batch_requests":     metrics.BatchRequests.Load(),
		"llm_calls":          metrics.LLMCalls.Load(),
		"llm_errors":         metrics.LLMErrors.Load(),
		"llm_retries":        metrics.LLMRetries.Load(),
		"llm_quota_errors":   metrics.LLMQuotaErrors.Load(),
		"cache_hits":         metrics.CacheHits.Load(),
		"cache_misses":       metrics.CacheMisses.Load(),
		"cache_errors":       metrics.CacheErrors.Load(),
		"metadata_lookups":   metrics.MetadataLookups.Load(),
		"events_dropped":     metrics.EventsDropped.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for the MCP server's metrics endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// IncrMetadataLookups is called by metadata sources on every outbound lookup.
func IncrMetadataLookups() { metrics.MetadataLookups.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
