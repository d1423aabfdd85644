package cache

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/krisalay/artifact-cache/admission"
	"github.com/krisalay/artifact-cache/api"
	"github.com/krisalay/artifact-cache/engine"
	"github.com/krisalay/artifact-cache/eviction"
	"github.com/krisalay/artifact-cache/expiration"
	"github.com/krisalay/artifact-cache/resource"
	"github.com/krisalay/artifact-cache/store"
	"github.com/krisalay/artifact-cache/sweep"
	"github.com/krisalay/artifact-cache/types"
)

// NoEntry is returned by TTL for a key that is absent or already expired.
const NoEntry time.Duration = -2

var _ api.Cache = (*ArtifactCache)(nil)

/*
ArtifactCache memoizes generated artifacts by fingerprint.
This struct is the orchestrator that connects:
- the entry store
- the eviction policy (capacity, 10% batches)
- the engine (expiry, size guard, metrics, logging)
- the byte budget
- the background sweeper

A single mutex guards the store and the eviction policy, so every Get, Set,
Cleanup and Clear is one atomic step with respect to the others.
*/
type ArtifactCache struct {
	mu sync.Mutex

	// store is the authoritative fingerprint → entry mapping.
	store store.Store

	// eviction tracks insertion order for capacity eviction.
	eviction eviction.Policy

	// engine contains the rules: TTL, size guard, metrics, logging, clock.
	engine *engine.CacheEngine

	// budget accounts resident bytes and enforces MaxTotalBytes when set.
	budget *resource.Controller

	cfg Config

	// sweeper is nil when WithoutSweeper is used.
	sweeper *sweep.Sweeper
}

/*
New builds a cache from cfg and starts its background sweeper.
Call Close during shutdown to stop the sweeper.
*/
func New(cfg Config, opts ...Option) (*ArtifactCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{policy: eviction.FIFO}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.policy.Valid() {
		return nil, invalidConfig("eviction policy", string(o.policy), "unknown policy type")
	}

	eng := engine.NewCacheEngine(
		&expiration.ExpireAfterWrite{TTL: cfg.TTL},
		admission.SizeGuard{MaxEntryBytes: cfg.MaxEntryBytes},
		o.metrics,
		o.logger,
		o.clock,
	)
	eng.Logger = eng.Logger.WithComponent("artifact-cache")

	c := &ArtifactCache{
		store:    store.New(),
		eviction: eviction.NewEvictionPolicy(o.policy),
		engine:   eng,
		budget:   resource.NewController(resource.Config{MemoryLimitBytes: cfg.MaxTotalBytes}),
		cfg:      cfg,
	}

	if !o.noSweeper {
		c.sweeper = sweep.Start(context.Background(), cfg.SweepInterval, func(ctx context.Context) {
			c.Cleanup(ctx)
		})
	}

	return c, nil
}

// Config returns the configuration the cache was built with.
func (c *ArtifactCache) Config() Config {
	return c.cfg
}

/*
Get retrieves an artifact from the cache.
An expired entry is deleted here and reported as a miss.
The returned payload is a copy; the stored entry never changes after Set.
*/
func (c *ArtifactCache) Get(ctx context.Context, key string) ([]byte, string, bool) {
	if key == "" {
		c.engine.Metrics.Miss()
		return nil, "", false
	}

	c.mu.Lock()
	ent, ok := c.store.Get(key)
	if !ok {
		c.mu.Unlock()
		c.engine.Metrics.Miss()
		return nil, "", false
	}

	if c.engine.IsExpired(ent, c.engine.Now()) {
		c.removeLocked(key)
		c.mu.Unlock()
		c.engine.Expired(1)
		c.engine.Metrics.Miss()
		return nil, "", false
	}

	c.eviction.OnGet(key)
	c.mu.Unlock()

	c.engine.Metrics.Hit()
	return bytes.Clone(ent.Payload), ent.MediaType, true
}

/*
Set stores an artifact.

Steps:
------
1. Reject an empty key (the only error)
2. Size Guard: an oversized payload is dropped silently, prior state untouched
3. Remove any previous entry for the key
4. If the store is at capacity, evict the oldest 10%
5. If a byte budget is set, evict 10% batches until the payload fits
6. Insert the new entry stamped with the current time

Overwriting a key destroys the old entry before the capacity check, so
replacing a key in a full cache never triggers a batch eviction. A
check-then-write cache would drop the oldest 10% first; this one does not.
*/
func (c *ArtifactCache) Set(ctx context.Context, key string, payload []byte, mediaType string) error {
	if key == "" {
		return ErrEmptyKey
	}

	size := len(payload)
	if !c.engine.Admit(ctx, key, size) {
		return nil
	}
	if c.budget.Limited() && int64(size) > c.budget.Limit() {
		c.engine.Rejected(ctx, key, size, c.budget.Limit(), engine.ReasonBudgetFull)
		return nil
	}

	ent := &types.ArtifactEntry{
		Key:       key,
		Payload:   bytes.Clone(payload),
		MediaType: mediaType,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeLocked(key)

	if c.store.Len() >= c.cfg.MaxEntries {
		c.evictLocked(ctx, "capacity")
	}

	for !c.budget.TryAcquireMemory(ent.Size()) {
		if c.store.Len() == 0 {
			c.engine.Rejected(ctx, key, size, c.budget.Limit(), engine.ReasonBudgetFull)
			return nil
		}
		c.evictLocked(ctx, "byte_budget")
	}

	ent.InsertedAt = c.engine.Now()
	c.store.Put(ent)
	c.eviction.OnPut(ent)
	return nil
}

/*
Cleanup removes every entry whose age exceeds the TTL, whether or not it is
ever looked up again. Returns the number removed.
*/
func (c *ArtifactCache) Cleanup(ctx context.Context) int {
	start := time.Now()

	c.mu.Lock()
	now := c.engine.Now()

	var expired []string
	c.store.Range(func(ent *types.ArtifactEntry) bool {
		if c.engine.IsExpired(ent, now) {
			expired = append(expired, ent.Key)
		}
		return true
	})
	for _, k := range expired {
		c.removeLocked(k)
	}
	remaining := c.store.Len()
	c.mu.Unlock()

	c.engine.Expired(len(expired))
	c.engine.Logger.LogSweep(ctx, len(expired), remaining, time.Since(start))
	return len(expired)
}

// Clear removes every entry.
func (c *ArtifactCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.budget.ReleaseMemory(c.store.Bytes())
	c.store.Reset()
	c.eviction.Reset()
}

// Size returns the current entry count.
func (c *ArtifactCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Len()
}

// MemoryUsage returns the entry count and resident payload bytes.
func (c *ArtifactCache) MemoryUsage() types.MemoryUsage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return types.MemoryUsage{
		Entries: c.store.Len(),
		Bytes:   c.store.Bytes(),
	}
}

// TTL returns the remaining lifetime of key, or NoEntry.
func (c *ArtifactCache) TTL(key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.store.Get(key)
	if !ok {
		return NoEntry
	}
	now := c.engine.Now()
	if c.engine.IsExpired(ent, now) {
		return NoEntry
	}
	return c.engine.Expiration.Remaining(ent, now)
}

/*
Close stops the background sweeper and waits for it.
Safe to call more than once.
*/
func (c *ArtifactCache) Close() {
	if c.sweeper != nil {
		c.sweeper.Stop()
	}
}

// removeLocked deletes key from the store and the policy. c.mu must be held.
func (c *ArtifactCache) removeLocked(key string) {
	ent, ok := c.store.Delete(key)
	if !ok {
		return
	}
	c.eviction.Remove(key)
	c.budget.ReleaseMemory(ent.Size())
}

// evictLocked drops the oldest BatchSize(MaxEntries) entries. c.mu must be held.
func (c *ArtifactCache) evictLocked(ctx context.Context, reason string) {
	victims := c.eviction.Evict(eviction.BatchSize(c.cfg.MaxEntries))
	for _, k := range victims {
		if ent, ok := c.store.Delete(k); ok {
			c.budget.ReleaseMemory(ent.Size())
		}
	}
	c.engine.Evicted(ctx, len(victims), c.store.Len(), reason)
}
