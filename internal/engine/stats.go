package engine

import (
	"context"
	"sync"
	"time"
)

// Stats aggregates translation events for the /api/stats endpoint.
type Stats struct {
	mu        sync.Mutex
	total     int64
	completed int64
	failed    int64
	totalTime time.Duration
	timed     int64
	day       string
	today     int64
	now       func() time.Time
}

// StatsSnapshot is the JSON shape served by /api/stats.
type StatsSnapshot struct {
	TotalTranslations   int64            `json:"total_translations"`
	TodayTranslations   int64            `json:"today_translations"`
	Completed           int64            `json:"completed"`
	Failed              int64            `json:"failed"`
	SuccessRate         float64          `json:"success_rate"`
	AverageResponseTime float64          `json:"average_response_time"`
	Counters            map[string]int64 `json:"counters"`
}

// NewStats returns an empty aggregator.
func NewStats() *Stats {
	return &Stats{now: time.Now}
}

// Handle implements EventSink.
func (s *Stats) Handle(_ context.Context, ev TranslationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := s.now().UTC().Format("2006-01-02")
	if day != s.day {
		s.day = day
		s.today = 0
	}
	s.total++
	s.today++
	switch ev.Status {
	case StatusCompleted:
		s.completed++
	case StatusFailed:
		s.failed++
	}
	if ev.Source == SourceLLM {
		s.totalTime += ev.Duration
		s.timed++
	}
	return nil
}

// Snapshot returns the current aggregate. Success rate is a percentage.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := StatsSnapshot{
		TotalTranslations: s.total,
		Completed:         s.completed,
		Failed:            s.failed,
		Counters:          GetMetrics(),
	}
	if s.day == s.now().UTC().Format("2006-01-02") {
		snap.TodayTranslations = s.today
	}
	if s.total > 0 {
		snap.SuccessRate = roundTo(float64(s.completed)/float64(s.total)*100, 1)
	}
	if s.timed > 0 {
		snap.AverageResponseTime = roundTo((s.totalTime / time.Duration(s.timed)).Seconds(), 2)
	}
	return snap
}
