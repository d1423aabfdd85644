package cache_test

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cache "github.com/krisalay/artifact-cache"
	"github.com/krisalay/artifact-cache/eviction"
	"github.com/krisalay/artifact-cache/types"
)

//
// ================= TEST CLOCK =================
//

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *manualClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *manualClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

//
// ================= HELPER: CREATE CACHE =================
//

func newTestCache(t *testing.T, mutate func(*cache.Config), opts ...cache.Option) (*cache.ArtifactCache, *manualClock) {
	t.Helper()

	cfg := cache.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	clock := newManualClock()
	opts = append([]cache.Option{cache.WithClock(clock.Now), cache.WithoutSweeper()}, opts...)

	c, err := cache.New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, clock
}

func withMaxEntries(n int) func(*cache.Config) {
	return func(cfg *cache.Config) { cfg.MaxEntries = n }
}

func has(c *cache.ArtifactCache, key string) bool {
	_, _, ok := c.Get(context.Background(), key)
	return ok
}

//
// ================= BASIC OPERATIONS =================
//

func TestSetAndGet_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, nil)

	payload := []byte{0x89, 'P', 'N', 'G', 0, 1, 2}
	require.NoError(t, c.Set(ctx, "qr-hello-png-300", payload, "image/png"))

	got, mt, ok := c.Get(ctx, "qr-hello-png-300")
	require.True(t, ok)
	assert.Equal(t, payload, got)
	assert.Equal(t, "image/png", mt)
}

func TestSet_CopiesPayload(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, nil)

	payload := []byte("hello")
	require.NoError(t, c.Set(ctx, "k", payload, "text/plain"))
	payload[0] = 'H'

	got, _, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), got)
}

func TestGet_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, nil)

	require.NoError(t, c.Set(ctx, "k", []byte("hello"), "text/plain"))

	got, _, ok := c.Get(ctx, "k")
	require.True(t, ok)
	got[0] = 'J'

	again, _, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), again)
}

func TestGet_Miss(t *testing.T) {
	c, _ := newTestCache(t, nil)

	got, mt, ok := c.Get(context.Background(), "missing")
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Empty(t, mt)
}

func TestSet_OverwritesExistingKey(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, nil)

	require.NoError(t, c.Set(ctx, "k", []byte("v1"), "image/png"))
	require.NoError(t, c.Set(ctx, "k", []byte("v2"), "image/svg+xml"))

	got, mt, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), got)
	assert.Equal(t, "image/svg+xml", mt)
	assert.Equal(t, 1, c.Size())
}

func TestEmptyKey(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, nil)

	err := c.Set(ctx, "", []byte("x"), "image/png")
	require.Error(t, err)
	assert.ErrorIs(t, err, cache.ErrEmptyKey)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Equal(t, 0, c.Size())
	assert.False(t, has(c, ""))
}

//
// ================= EXPIRY =================
//

func TestExpiry(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(t, func(cfg *cache.Config) { cfg.TTL = time.Hour })

	require.NoError(t, c.Set(ctx, "k", []byte("v"), "image/png"))

	clock.Advance(time.Hour)
	assert.True(t, has(c, "k"), "age == ttl is still servable")

	clock.Advance(time.Millisecond)
	assert.False(t, has(c, "k"))
	// lazily removed
	assert.Equal(t, 0, c.Size())
}

func TestExpiry_ReadsDoNotExtendLifetime(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(t, func(cfg *cache.Config) { cfg.TTL = time.Minute })

	require.NoError(t, c.Set(ctx, "k", []byte("v"), "image/png"))
	for i := 0; i < 5; i++ {
		clock.Advance(10 * time.Second)
		require.True(t, has(c, "k"))
	}
	clock.Advance(11 * time.Second)
	assert.False(t, has(c, "k"))
}

func TestTTL(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(t, func(cfg *cache.Config) { cfg.TTL = time.Hour })

	assert.Equal(t, cache.NoEntry, c.TTL("k"))

	require.NoError(t, c.Set(ctx, "k", []byte("v"), "image/png"))
	clock.Advance(15 * time.Minute)
	assert.Equal(t, 45*time.Minute, c.TTL("k"))

	clock.Advance(time.Hour)
	assert.Equal(t, cache.NoEntry, c.TTL("k"))
}

//
// ================= SIZE GUARD =================
//

func TestSizeGuard_RejectsSilently(t *testing.T) {
	ctx := context.Background()
	metrics := &types.BasicMetrics{}
	c, _ := newTestCache(t, func(cfg *cache.Config) { cfg.MaxEntryBytes = 8 }, cache.WithMetrics(metrics))

	require.NoError(t, c.Set(ctx, "big", make([]byte, 9), "image/png"))
	assert.Equal(t, 0, c.Size())
	assert.False(t, has(c, "big"))

	require.NoError(t, c.Set(ctx, "exact", make([]byte, 8), "image/png"))
	assert.True(t, has(c, "exact"))

	assert.Equal(t, int64(1), metrics.Stats().Rejections)
}

func TestSizeGuard_KeepsPriorEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, func(cfg *cache.Config) { cfg.MaxEntryBytes = 8 })

	require.NoError(t, c.Set(ctx, "k", []byte("small"), "image/png"))
	require.NoError(t, c.Set(ctx, "k", make([]byte, 64), "image/png"))

	got, _, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("small"), got)
}

//
// ================= CAPACITY & EVICTION =================
//

func fill(t *testing.T, c *cache.ArtifactCache, clock *manualClock, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, c.Set(context.Background(), fmt.Sprintf("k%03d", i), []byte{byte(i)}, "image/png"))
		clock.Advance(time.Second)
	}
}

func TestCapacityEviction_SingleOldest(t *testing.T) {
	c, clock := newTestCache(t, withMaxEntries(10))

	fill(t, c, clock, 11)

	assert.Equal(t, 10, c.Size())
	assert.False(t, has(c, "k000"))
	for i := 1; i <= 10; i++ {
		assert.True(t, has(c, fmt.Sprintf("k%03d", i)))
	}
}

func TestCapacityEviction_TenPercentBatch(t *testing.T) {
	metrics := &types.BasicMetrics{}
	c, clock := newTestCache(t, withMaxEntries(100), cache.WithMetrics(metrics))

	fill(t, c, clock, 101)

	assert.Equal(t, 91, c.Size())
	assert.Equal(t, int64(10), metrics.Stats().Evictions)
	for i := 0; i < 10; i++ {
		assert.False(t, has(c, fmt.Sprintf("k%03d", i)))
	}
	assert.True(t, has(c, "k010"))
}

func TestCapacityEviction_Scenario(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(t, withMaxEntries(3))

	for _, k := range []string{"A", "B", "C", "D"} {
		require.NoError(t, c.Set(ctx, k, []byte(k), "image/png"))
		clock.Advance(time.Second)
	}

	assert.Equal(t, 3, c.Size())
	assert.False(t, has(c, "A"))
	assert.True(t, has(c, "B"))
	assert.True(t, has(c, "C"))
	assert.True(t, has(c, "D"))
}

func TestCapacityEviction_ReadsDoNotProtect(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(t, withMaxEntries(3))
	fill(t, c, clock, 3)

	for i := 0; i < 1000; i++ {
		has(c, "k000")
	}
	require.NoError(t, c.Set(ctx, "new", []byte("x"), "image/png"))

	assert.False(t, has(c, "k000"))
	assert.True(t, has(c, "k001"))
}

func TestCapacityEviction_LRUOption(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(t, withMaxEntries(3), cache.WithEvictionPolicy(eviction.LRU))
	fill(t, c, clock, 3)

	has(c, "k000")
	require.NoError(t, c.Set(ctx, "new", []byte("x"), "image/png"))

	assert.True(t, has(c, "k000"))
	assert.False(t, has(c, "k001"))
}

func TestCapacityEviction_ListPolicyMatchesSort(t *testing.T) {
	c, clock := newTestCache(t, withMaxEntries(100), cache.WithEvictionPolicy(eviction.FIFOList))

	fill(t, c, clock, 101)

	assert.Equal(t, 91, c.Size())
	assert.False(t, has(c, "k009"))
	assert.True(t, has(c, "k010"))
}

func TestOverwriteInFullStoreDoesNotEvict(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(t, withMaxEntries(3))
	fill(t, c, clock, 3)

	require.NoError(t, c.Set(ctx, "k001", []byte("again"), "image/png"))

	assert.Equal(t, 3, c.Size())
	assert.True(t, has(c, "k000"))
	assert.True(t, has(c, "k002"))
}

//
// ================= BYTE BUDGET =================
//

func TestByteBudget_EvictsUntilFit(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(t, func(cfg *cache.Config) {
		cfg.MaxEntries = 10
		cfg.MaxTotalBytes = 100
	})

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, make([]byte, 30), "image/png"))
		clock.Advance(time.Second)
	}
	require.NoError(t, c.Set(ctx, "d", make([]byte, 30), "image/png"))

	assert.False(t, has(c, "a"))
	usage := c.MemoryUsage()
	assert.Equal(t, 3, usage.Entries)
	assert.Equal(t, int64(90), usage.Bytes)
}

func TestByteBudget_RejectsLargerThanBudget(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, func(cfg *cache.Config) {
		cfg.MaxTotalBytes = 100
	})

	require.NoError(t, c.Set(ctx, "a", make([]byte, 10), "image/png"))
	require.NoError(t, c.Set(ctx, "huge", make([]byte, 101), "image/png"))

	assert.False(t, has(c, "huge"))
	assert.True(t, has(c, "a"))
}

//
// ================= SWEEP =================
//

func TestCleanup_RemovesExactlyExpired(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(t, func(cfg *cache.Config) { cfg.TTL = 10 * time.Second })

	require.NoError(t, c.Set(ctx, "old1", []byte("o1"), "image/png"))
	require.NoError(t, c.Set(ctx, "old2", []byte("o2"), "image/png"))
	clock.Advance(6 * time.Second)
	require.NoError(t, c.Set(ctx, "young", []byte("y"), "image/svg+xml"))
	clock.Advance(5 * time.Second)

	assert.Equal(t, 2, c.Cleanup(ctx))
	assert.Equal(t, 1, c.Size())

	got, mt, ok := c.Get(ctx, "young")
	require.True(t, ok)
	assert.Equal(t, []byte("y"), got)
	assert.Equal(t, "image/svg+xml", mt)

	assert.Equal(t, 0, c.Cleanup(ctx))
}

func TestBackgroundSweeper(t *testing.T) {
	ctx := context.Background()
	clock := newManualClock()
	cfg := cache.DefaultConfig()
	cfg.TTL = time.Minute
	cfg.SweepInterval = 5 * time.Millisecond

	c, err := cache.New(cfg, cache.WithClock(clock.Now))
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "never-read", []byte("x"), "image/png"))
	clock.Advance(2 * time.Minute)

	assert.Eventually(t, func() bool { return c.Size() == 0 }, time.Second, 5*time.Millisecond)
}

//
// ================= CLEAR / USAGE =================
//

func TestClear_Idempotent(t *testing.T) {
	c, clock := newTestCache(t, nil)
	fill(t, c, clock, 5)

	c.Clear()
	assert.Equal(t, 0, c.Size())
	assert.Equal(t, types.MemoryUsage{}, c.MemoryUsage())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestClear_ReleasesByteBudget(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, func(cfg *cache.Config) { cfg.MaxTotalBytes = 50 })

	require.NoError(t, c.Set(ctx, "a", make([]byte, 50), "image/png"))
	c.Clear()
	require.NoError(t, c.Set(ctx, "b", make([]byte, 50), "image/png"))

	assert.True(t, has(c, "b"))
}

func TestMemoryUsage(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, nil)

	require.NoError(t, c.Set(ctx, "a", make([]byte, 1<<20), "image/png"))
	require.NoError(t, c.Set(ctx, "b", make([]byte, 1<<20), "image/png"))

	usage := c.MemoryUsage()
	assert.Equal(t, 2, usage.Entries)
	assert.Equal(t, int64(2<<20), usage.Bytes)
	assert.InDelta(t, 2.0, usage.Megabytes(), 0.001)
}

//
// ================= METRICS =================
//

func TestMetrics_HitMissExpire(t *testing.T) {
	ctx := context.Background()
	metrics := &types.BasicMetrics{}
	c, clock := newTestCache(t, func(cfg *cache.Config) { cfg.TTL = time.Second }, cache.WithMetrics(metrics))

	require.NoError(t, c.Set(ctx, "k", []byte("v"), "image/png"))
	has(c, "k")
	has(c, "missing")
	clock.Advance(2 * time.Second)
	has(c, "k")

	stats := metrics.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, int64(1), stats.Expirations)
	assert.InDelta(t, 1.0/3.0, stats.HitRatio(), 0.0001)
}

//
// ================= CONCURRENCY TEST =================
//

func TestConcurrentSet_DistinctKeys(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, withMaxEntries(1000))

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			payload := bytes.Repeat([]byte{byte(id)}, 64)
			if err := c.Set(ctx, fmt.Sprintf("key-%d", id), payload, "image/png"); err != nil {
				t.Errorf("set failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, n, c.Size())
	for i := 0; i < n; i++ {
		got, _, ok := c.Get(ctx, fmt.Sprintf("key-%d", i))
		require.True(t, ok)
		assert.Equal(t, bytes.Repeat([]byte{byte(i)}, 64), got)
	}
}

func TestConcurrentMixedTraffic(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(t, withMaxEntries(50))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				key := fmt.Sprintf("key-%d", (id*500+j)%120)
				if _, _, ok := c.Get(ctx, key); !ok {
					_ = c.Set(ctx, key, []byte(key), "image/png")
				}
				if j%100 == 0 {
					clock.Advance(time.Second)
					c.Cleanup(ctx)
				}
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Size(), 50)
	for i := 0; i < 120; i++ {
		key := fmt.Sprintf("key-%d", i)
		if got, _, ok := c.Get(ctx, key); ok {
			assert.Equal(t, []byte(key), got)
		}
	}
}

//
// ================= CONSTRUCTION =================
//

func TestNew_InvalidConfig(t *testing.T) {
	cfg := cache.DefaultConfig()
	cfg.MaxEntries = 0

	c, err := cache.New(cfg)
	require.Error(t, err)
	assert.Nil(t, c)
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
}

func TestNew_UnknownEvictionPolicy(t *testing.T) {
	var (
		c   *cache.ArtifactCache
		err error
	)
	require.NotPanics(t, func() {
		c, err = cache.New(cache.DefaultConfig(), cache.WithEvictionPolicy("bogus"), cache.WithoutSweeper())
	})
	require.Error(t, err)
	assert.Nil(t, c)
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
}

func TestClose_Idempotent(t *testing.T) {
	c, err := cache.New(cache.DefaultConfig())
	require.NoError(t, err)

	c.Close()
	c.Close()

	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), "image/png"))
	assert.True(t, has(c, "k"))
}
