// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package middleware

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/meridian/internal/analytics"
	"github.com/tomtom215/meridian/internal/logging"
)

// requestSample is one observed request.
type requestSample struct {
	endpoint   string
	durationMS float64
	failed     bool
}

// EndpointLatency is the latency summary of one route over the recent window.
type EndpointLatency struct {
	Endpoint     string  `json:"endpoint"`
	RequestCount int     `json:"requestCount"`
	ErrorCount   int     `json:"errorCount"`
	AvgMS        float64 `json:"avgMs"`
	P50MS        float64 `json:"p50Ms"`
	P95MS        float64 `json:"p95Ms"`
	P99MS        float64 `json:"p99Ms"`
	MaxMS        float64 `json:"maxMs"`
}

// LatencyTracker keeps a sliding window of recent request latencies per route
// and logs requests slower than a threshold. It backs the latency health
// endpoint; Prometheus histograms remain the long-term record.
type LatencyTracker struct {
	mu      sync.Mutex
	samples []requestSample // ring buffer
	next    int
	full    bool

	slowThreshold time.Duration
}

// NewLatencyTracker keeps the last window requests. A slowThreshold of 0
// disables slow request logging.
func NewLatencyTracker(window int, slowThreshold time.Duration) *LatencyTracker {
	if window < 1 {
		window = 1
	}
	return &LatencyTracker{
		samples:       make([]requestSample, window),
		slowThreshold: slowThreshold,
	}
}

// Middleware records every request that passes through it.
func (lt *LatencyTracker) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		endpoint := r.Method + " " + RoutePattern(r)
		lt.record(requestSample{
			endpoint:   endpoint,
			durationMS: float64(duration) / float64(time.Millisecond),
			failed:     rec.statusCode >= http.StatusInternalServerError,
		})

		if lt.slowThreshold > 0 && duration > lt.slowThreshold {
			logging.Ctx(r.Context()).Warn().
				Str("endpoint", endpoint).
				Int("status", rec.statusCode).
				Dur("duration", duration).
				Dur("threshold", lt.slowThreshold).
				Msg("Slow request detected")
		}
	})
}

func (lt *LatencyTracker) record(s requestSample) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	lt.samples[lt.next] = s
	lt.next = (lt.next + 1) % len(lt.samples)
	if lt.next == 0 {
		lt.full = true
	}
}

// window returns a copy of the buffered samples.
func (lt *LatencyTracker) window() []requestSample {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	n := lt.next
	if lt.full {
		n = len(lt.samples)
	}
	out := make([]requestSample, n)
	copy(out, lt.samples[:n])
	return out
}

// Stats summarizes the window per endpoint, busiest endpoint first.
func (lt *LatencyTracker) Stats() []EndpointLatency {
	byEndpoint := make(map[string][]float64)
	errors := make(map[string]int)
	for _, s := range lt.window() {
		byEndpoint[s.endpoint] = append(byEndpoint[s.endpoint], s.durationMS)
		if s.failed {
			errors[s.endpoint]++
		}
	}

	stats := make([]EndpointLatency, 0, len(byEndpoint))
	for endpoint, durations := range byEndpoint {
		var sum, maxMS float64
		for _, d := range durations {
			sum += d
			if d > maxMS {
				maxMS = d
			}
		}

		st := EndpointLatency{
			Endpoint:     endpoint,
			RequestCount: len(durations),
			ErrorCount:   errors[endpoint],
			AvgMS:        sum / float64(len(durations)),
			MaxMS:        maxMS,
		}
		if ps, err := analytics.Percentiles(durations, 50, 95, 99); err == nil {
			st.P50MS, st.P95MS, st.P99MS = ps[0], ps[1], ps[2]
		}
		stats = append(stats, st)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].RequestCount != stats[j].RequestCount {
			return stats[i].RequestCount > stats[j].RequestCount
		}
		return stats[i].Endpoint < stats[j].Endpoint
	})
	return stats
}
