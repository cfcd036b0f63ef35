package tagger

import (
	"slices"
	"sync"
	"time"
)

// LatencySnapshot aggregates the request latencies seen inside the window.
type LatencySnapshot struct {
	Requests int     `json:"requests"`
	Failures int     `json:"failures"`
	MinMs    int64   `json:"min_ms"`
	MaxMs    int64   `json:"max_ms"`
	MeanMs   float64 `json:"mean_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
	P99Ms    float64 `json:"p99_ms"`
}

type observation struct {
	at     time.Time
	ms     int64
	failed bool
}

// LatencyStats keeps tagger request latencies for a rolling window.
type LatencyStats struct {
	mu     sync.Mutex
	window time.Duration
	obs    []observation
	now    func() time.Time
}

func NewLatencyStats(window time.Duration) *LatencyStats {
	if window <= 0 {
		window = time.Hour
	}
	return &LatencyStats{window: window, now: time.Now}
}

// Record adds a successful request.
func (s *LatencyStats) Record(ms int64) { s.add(ms, false) }

// RecordFailure adds a failed request.
func (s *LatencyStats) RecordFailure(ms int64) { s.add(ms, true) }

func (s *LatencyStats) add(ms int64, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.expire(now)
	s.obs = append(s.obs, observation{at: now, ms: max(ms, 0), failed: failed})
}

// Snapshot summarises the window. Percentiles use linear interpolation
// between closest ranks.
func (s *LatencyStats) Snapshot() LatencySnapshot {
	s.mu.Lock()
	s.expire(s.now())
	ms := make([]int64, 0, len(s.obs))
	failures := 0
	for _, o := range s.obs {
		ms = append(ms, o.ms)
		if o.failed {
			failures++
		}
	}
	s.mu.Unlock()

	if len(ms) == 0 {
		return LatencySnapshot{}
	}
	slices.Sort(ms)
	var total int64
	for _, v := range ms {
		total += v
	}
	return LatencySnapshot{
		Requests: len(ms),
		Failures: failures,
		MinMs:    ms[0],
		MaxMs:    ms[len(ms)-1],
		MeanMs:   float64(total) / float64(len(ms)),
		P50Ms:    rank(ms, 0.50),
		P95Ms:    rank(ms, 0.95),
		P99Ms:    rank(ms, 0.99),
	}
}

// expire drops observations older than the window. Observations are
// appended in time order, so the expired ones form a prefix.
func (s *LatencyStats) expire(now time.Time) {
	cutoff := now.Add(-s.window)
	i := 0
	for i < len(s.obs) && s.obs[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		s.obs = slices.Delete(s.obs, 0, i)
	}
}

func rank(sorted []int64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo+1 >= len(sorted) {
		return float64(sorted[len(sorted)-1])
	}
	frac := pos - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}
