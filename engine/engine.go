package engine

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/krisalay/artifact-cache/admission"
	"github.com/krisalay/artifact-cache/expiration"
	"github.com/krisalay/artifact-cache/logging"
	"github.com/krisalay/artifact-cache/types"
)

// Rejection reasons reported to logs.
const (
	ReasonEntryTooLarge = "entry_too_large"
	ReasonBudgetFull    = "byte_budget_exhausted"
)

// rejectLogInterval bounds how often oversized payloads are logged.
// Every rejection is still counted by Metrics.
const rejectLogInterval = 10 * time.Second

/*
CacheEngine is the policy layer of the cache.
It decides whether an entry is expired, whether a payload may be admitted,
and reports what happened. It does NOT store data, lock, or order evictions.
*/
type CacheEngine struct {

	// Expiration decides when an entry can no longer be served.
	Expiration expiration.Strategy

	// Admission is the Size Guard.
	Admission admission.Policy

	// Metrics records hits, misses, evictions, expirations and rejections.
	Metrics types.Metrics

	// Logger receives rejection, eviction and sweep records.
	Logger *logging.Logger

	// Clock is the time source for insertion and expiry.
	Clock types.Clock

	rejectLog rate.Sometimes
}

/*
NewCacheEngine creates a CacheEngine.
Nil collaborators are replaced with harmless defaults so the cache never
needs nil checks on the hot path.
*/
func NewCacheEngine(
	exp expiration.Strategy,
	adm admission.Policy,
	metrics types.Metrics,
	logger *logging.Logger,
	clock types.Clock,
) *CacheEngine {
	if adm == nil {
		adm = admission.AdmitAll{}
	}
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}
	if logger == nil {
		logger = logging.NoopLogger()
	}
	if clock == nil {
		clock = time.Now
	}

	return &CacheEngine{
		Expiration: exp,
		Admission:  adm,
		Metrics:    metrics,
		Logger:     logger,
		Clock:      clock,
		rejectLog:  rate.Sometimes{First: 1, Interval: rejectLogInterval},
	}
}

// Now returns the engine's current time.
func (e *CacheEngine) Now() time.Time {
	return e.Clock()
}

// IsExpired checks an entry against the configured strategy at the current time.
// Returns false if no expiration strategy is configured.
func (e *CacheEngine) IsExpired(ent *types.ArtifactEntry, now time.Time) bool {
	return e.Expiration != nil && e.Expiration.IsExpired(ent, now)
}

/*
Admit applies the Size Guard to a candidate payload.
A refusal is reported through Metrics and a throttled warning; it is never an error.
*/
func (e *CacheEngine) Admit(ctx context.Context, key string, size int) bool {
	if e.Admission.Admit(key, size) {
		return true
	}

	var limit int64
	if g, ok := e.Admission.(admission.SizeGuard); ok {
		limit = g.MaxEntryBytes
	}
	e.Rejected(ctx, key, size, limit, ReasonEntryTooLarge)
	return false
}

// Rejected reports a payload that will not be memoized.
func (e *CacheEngine) Rejected(ctx context.Context, key string, size int, limit int64, reason string) {
	e.Metrics.Reject(size)
	e.rejectLog.Do(func() {
		e.Logger.LogReject(ctx, key, int64(size), limit, reason)
	})
}

// Evicted reports a capacity eviction batch.
func (e *CacheEngine) Evicted(ctx context.Context, n, remaining int, reason string) {
	if n == 0 {
		return
	}
	e.Metrics.Eviction(n)
	e.Logger.LogEviction(ctx, n, remaining, reason)
}

// Expired reports entries removed because they outlived their TTL.
func (e *CacheEngine) Expired(n int) {
	if n == 0 {
		return
	}
	e.Metrics.Expire(n)
}
