package types

import "sync/atomic"

// This file defines how the cache reports what it is doing.

/*
Metrics is an interface that defines what the cache wants to measure.
Each method represents an event in the cache lifecycle. The cache will call these methods whenever something happens.
*/
type Metrics interface {

	// Hit is called when Get returns a live entry.
	Hit()

	// Miss is called when Get finds nothing, or finds an expired entry.
	Miss()

	// Eviction is called with the number of entries dropped to respect a capacity bound.
	Eviction(n int)

	// Expire is called with the number of entries removed because they outlived the TTL.
	Expire(n int)

	// Reject is called when the Size Guard (or byte budget) refuses a payload.
	Reject(size int)
}

/*
NoopMetrics is a "do nothing" implementation of Metrics.
The cache always holds a non-nil Metrics, so callers that do not care
about metrics get this one.
*/
type NoopMetrics struct{}

func (NoopMetrics) Hit()         {}
func (NoopMetrics) Miss()        {}
func (NoopMetrics) Eviction(int) {}
func (NoopMetrics) Expire(int)   {}
func (NoopMetrics) Reject(int)   {}

// BasicMetrics keeps in-process counters.
// Useful for debugging and tests without an external monitoring system.
type BasicMetrics struct {
	hits          atomic.Int64
	misses        atomic.Int64
	evictions     atomic.Int64
	expirations   atomic.Int64
	rejections    atomic.Int64
	rejectedBytes atomic.Int64
}

func (b *BasicMetrics) Hit()           { b.hits.Add(1) }
func (b *BasicMetrics) Miss()          { b.misses.Add(1) }
func (b *BasicMetrics) Eviction(n int) { b.evictions.Add(int64(n)) }
func (b *BasicMetrics) Expire(n int)   { b.expirations.Add(int64(n)) }

func (b *BasicMetrics) Reject(size int) {
	b.rejections.Add(1)
	b.rejectedBytes.Add(int64(size))
}

// Stats returns a snapshot of the counters.
func (b *BasicMetrics) Stats() MetricsStats {
	return MetricsStats{
		Hits:          b.hits.Load(),
		Misses:        b.misses.Load(),
		Evictions:     b.evictions.Load(),
		Expirations:   b.expirations.Load(),
		Rejections:    b.rejections.Load(),
		RejectedBytes: b.rejectedBytes.Load(),
	}
}

// MetricsStats is a snapshot of BasicMetrics.
type MetricsStats struct {
	Hits          int64
	Misses        int64
	Evictions     int64
	Expirations   int64
	Rejections    int64
	RejectedBytes int64
}

// HitRatio returns hits / (hits + misses), or 0 before any lookup.
func (s MetricsStats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
