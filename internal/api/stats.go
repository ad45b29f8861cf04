package api

import (
	"fmt"
	"sync"
	"time"
)

// Stats tracks predictions served since the server started.
type Stats struct {
	start         time.Time
	now           func() time.Time
	total         int
	fake          int
	avgConfidence float64
	mu            sync.Mutex
}

// StatsSummary is a point-in-time copy of Stats.
type StatsSummary struct {
	TotalPredictions  int     `json:"total_predictions"`
	FakePredictions   int     `json:"fake_predictions"`
	RealPredictions   int     `json:"real_predictions"`
	FakePercentage    float64 `json:"fake_percentage"`
	AverageConfidence float64 `json:"average_confidence"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
	UptimeFormatted   string  `json:"uptime_formatted"`
}

// NewStats starts the uptime clock at now().
func NewStats(now func() time.Time) *Stats {
	if now == nil {
		now = time.Now
	}
	return &Stats{start: now(), now: now}
}

// Add records one prediction.
func (s *Stats) Add(isFake bool, confidence float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	if isFake {
		s.fake++
	}
	s.avgConfidence += (confidence - s.avgConfidence) / float64(s.total)
}

// Summary returns the current counters.
func (s *Stats) Summary() StatsSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	uptime := s.now().Sub(s.start)
	summary := StatsSummary{
		TotalPredictions:  s.total,
		FakePredictions:   s.fake,
		RealPredictions:   s.total - s.fake,
		AverageConfidence: s.avgConfidence,
		UptimeSeconds:     uptime.Seconds(),
		UptimeFormatted:   formatUptime(uptime),
	}
	if s.total > 0 {
		summary.FakePercentage = float64(s.fake) / float64(s.total) * 100
	}
	return summary
}

func formatUptime(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%dh %dm %ds", secs/3600, secs%3600/60, secs%60)
}
