package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	cache "github.com/krisalay/artifact-cache"
	"github.com/krisalay/artifact-cache/types"
)

// ================= BENCHMARK =================

func main() {
	ctx := context.Background()

	const (
		capacity    = 1000
		preloadKeys = 1000
		keySpace    = 4000
		goroutines  = 200
		opsPerG     = 5000
		payloadSize = 16 << 10
	)

	fmt.Println("\n================ CACHE LOAD BENCHMARK =================")
	fmt.Println("CONFIG")
	fmt.Println("---------------------------------")
	fmt.Println("Capacity     :", capacity)
	fmt.Println("Preload Keys :", preloadKeys)
	fmt.Println("Key Space    :", keySpace)
	fmt.Println("Goroutines   :", goroutines)
	fmt.Println("Ops/Goroutine:", opsPerG)
	fmt.Println("Payload      :", payloadSize, "bytes")
	fmt.Println("---------------------------------")

	cfg := cache.DefaultConfig()
	cfg.MaxEntries = capacity

	metrics := &types.BasicMetrics{}
	c, err := cache.New(cfg, cache.WithMetrics(metrics))
	if err != nil {
		panic(err)
	}
	defer c.Close()

	payload := make([]byte, payloadSize)

	// ---------------- Preload Cache ----------------
	fmt.Println("Preloading cache...")
	for i := 0; i < preloadKeys; i++ {
		_ = c.Set(ctx, fmt.Sprintf("key-%d", i), payload, "image/png")
	}
	fmt.Println("Preload complete.")

	// ---------------- Load Test ----------------
	fmt.Println("Running concurrency benchmark (get, set on miss)...")
	start := time.Now()

	wg := sync.WaitGroup{}
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < opsPerG; j++ {
				key := fmt.Sprintf("key-%d", (id*31+j)%keySpace)
				if _, _, ok := c.Get(ctx, key); !ok {
					_ = c.Set(ctx, key, payload, "image/png")
				}
			}
		}(i)
	}
	wg.Wait()

	duration := time.Since(start)
	totalOps := goroutines * opsPerG
	stats := metrics.Stats()
	usage := c.MemoryUsage()

	fmt.Println("\n================ RESULTS =================")
	fmt.Printf("Total Operations : %d\n", totalOps)
	fmt.Printf("Total Time       : %v\n", duration)
	fmt.Printf("Throughput       : %.2f ops/sec\n", float64(totalOps)/duration.Seconds())
	fmt.Printf("Hit Ratio        : %.2f%%\n", stats.HitRatio()*100)
	fmt.Printf("Evictions        : %d\n", stats.Evictions)
	fmt.Printf("Resident         : %d entries, %.2f MB\n", usage.Entries, usage.Megabytes())
	fmt.Println("=========================================")
}
