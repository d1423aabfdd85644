package main

import (
	"context"
	"flag"
	"fmt"
	"html"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	cache "github.com/krisalay/artifact-cache"
	"github.com/krisalay/artifact-cache/logging"
	"github.com/krisalay/artifact-cache/render"
	"github.com/krisalay/artifact-cache/types"
)

// ================= GENERATOR =================

// svgGenerator stands in for the real renderer: deterministic, and slow on purpose.
type svgGenerator struct {
	delay time.Duration
}

func (g svgGenerator) Generate(ctx context.Context, kind string, params map[string]string) ([]byte, string, error) {
	select {
	case <-time.After(g.delay):
	case <-ctx.Done():
		return nil, "", ctx.Err()
	}

	size := params["size"]
	if size == "" {
		size = "300"
	}
	svg := fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%[1]s" height="%[1]s"><text x="10" y="20">%[2]s:%[3]s</text></svg>`,
		html.EscapeString(size), html.EscapeString(kind), html.EscapeString(params["data"]),
	)
	return []byte(svg), "image/svg+xml", nil
}

func loadConfig(path string) (cache.Config, error) {
	if path == "" {
		return cache.DefaultConfig(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cache.Config{}, err
	}
	defer f.Close()
	return cache.LoadConfig(f)
}

// ================= MAIN =================

func main() {
	configPath := flag.String("config", "", "path to a YAML cache config")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := logging.NewTextLogger(level)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	// keep the demo short
	cfg.MaxEntries = 20
	cfg.MaxEntryBytes = 1 << 10

	ctx := context.Background()

	fmt.Println("\n==================== SYSTEM BOOT ====================")
	fmt.Println("EVICTION POLICY : FIFO (10% batches)")
	fmt.Println("TTL             :", cfg.TTL)
	fmt.Println("CAPACITY        :", cfg.MaxEntries, "entries")
	fmt.Println("MAX ENTRY BYTES :", cfg.MaxEntryBytes)
	fmt.Println("SWEEP INTERVAL  :", cfg.SweepInterval)

	metrics := &types.BasicMetrics{}
	c, err := cache.New(cfg, cache.WithLogger(logger), cache.WithMetrics(metrics))
	if err != nil {
		logger.Error("failed to build cache", "error", err)
		os.Exit(1)
	}

	svc := render.NewService(c, svgGenerator{delay: 50 * time.Millisecond}, render.WithLogger(logger))
	hello := render.Request{Kind: "basic", Params: map[string]string{"data": "hello", "format": "svg", "size": "300"}}

	// ====================================================
	fmt.Println("\n==================== 1) CACHE MISS ====================")
	start := time.Now()
	art, err := svc.Render(ctx, hello)
	if err != nil {
		logger.Error("render failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("RENDER → %s cached=%v took=%v\n", art.Key, art.Cached, time.Since(start))
	helloKey := art.Key

	// ====================================================
	fmt.Println("\n==================== 2) CACHE HIT ====================")
	start = time.Now()
	art, _ = svc.Render(ctx, hello)
	fmt.Printf("RENDER → %s cached=%v took=%v\n", art.Key, art.Cached, time.Since(start))

	// ====================================================
	fmt.Println("\n==================== 3) OVERSIZED ====================")
	big := render.Request{Kind: "basic", Params: map[string]string{"data": strings.Repeat("x", 2048)}}
	art, _ = svc.Render(ctx, big)
	_, _, ok := c.Get(ctx, art.Key)
	fmt.Printf("RENDER → %d bytes served, cached=%v\n", len(art.Payload), ok)

	// ====================================================
	fmt.Println("\n==================== 4) CONCURRENT MISSES ====================")
	wg := sync.WaitGroup{}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			req := render.Request{Kind: "vcard", Params: map[string]string{"name": "Ada"}}
			a, _ := svc.Render(ctx, req)
			fmt.Printf("GOROUTINE-%d → cached=%v\n", id, a.Cached)
		}(i)
	}
	wg.Wait()

	// ====================================================
	fmt.Println("\n==================== 5) EVICTION ====================")
	for i := 0; i < 50; i++ {
		_ = c.Set(ctx, fmt.Sprintf("k%d", i), []byte("payload"), "image/png")
	}
	_, _, ok = c.Get(ctx, helloKey)
	fmt.Println("CACHE  → size after 50 inserts =", c.Size(), "| hello still cached =", ok)

	// ====================================================
	fmt.Println("\n==================== 6) BULK ====================")
	reqs := make([]render.Request, 10)
	for i := range reqs {
		reqs[i] = render.Request{Kind: "basic", Params: map[string]string{"data": fmt.Sprintf("item-%d", i)}}
	}
	res, err := svc.RenderBulk(ctx, reqs)
	if err != nil {
		logger.Error("bulk render failed", "error", err)
	} else {
		fmt.Println("BULK   →", res.ID, "items =", len(res.Items))
	}

	// ====================================================
	usage := c.MemoryUsage()
	stats := metrics.Stats()
	fmt.Println("\n==================== METRICS ====================")
	fmt.Printf("ENTRIES   : %d (%.2f MB)\n", usage.Entries, usage.Megabytes())
	fmt.Printf("HITS      : %d\n", stats.Hits)
	fmt.Printf("MISSES    : %d\n", stats.Misses)
	fmt.Printf("EVICTIONS : %d\n", stats.Evictions)
	fmt.Printf("EXPIRED   : %d\n", stats.Expirations)
	fmt.Printf("REJECTED  : %d\n", stats.Rejections)

	// ====================================================
	fmt.Println("\n==================== SHUTDOWN ====================")
	c.Close()
	fmt.Println("SYSTEM → sweeper stopped cleanly")
}
