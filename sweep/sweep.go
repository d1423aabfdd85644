// Package sweep runs a periodic background pass over the cache.
package sweep

import (
	"context"
	"sync"
	"time"
)

// Func is one sweep pass. It must return promptly; it runs while the cache
// holds its store lock for the duration of the pass.
type Func func(ctx context.Context)

/*
Sweeper owns the background goroutine that calls Func on a fixed interval.

Lifecycle:
----------
1. Start launches the goroutine
2. Every interval, Func runs once
3. Stop cancels the goroutine and waits for an in-flight pass to finish

Stop is deterministic: when it returns, no pass is running and none will start.
*/
type Sweeper struct {
	interval time.Duration
	fn       Func

	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// Start launches a sweeper. Cancelling parent has the same effect as Stop,
// except that Stop also waits.
func Start(parent context.Context, interval time.Duration, fn Func) *Sweeper {
	ctx, cancel := context.WithCancel(parent)
	s := &Sweeper{
		interval: interval,
		fn:       fn,
		cancel:   cancel,
	}

	s.wg.Add(1)
	go s.run(ctx)
	return s
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fn(ctx)
		}
	}
}

// Interval returns the configured period.
func (s *Sweeper) Interval() time.Duration {
	return s.interval
}

// Stop cancels the sweeper and waits for it to exit. Safe to call more than once.
func (s *Sweeper) Stop() {
	s.once.Do(func() {
		s.cancel()
	})
	s.wg.Wait()
}
