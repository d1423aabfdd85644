package cache

import (
	"github.com/krisalay/artifact-cache/eviction"
	"github.com/krisalay/artifact-cache/logging"
	"github.com/krisalay/artifact-cache/types"
)

type options struct {
	logger    *logging.Logger
	metrics   types.Metrics
	clock     types.Clock
	policy    eviction.PolicyType
	noSweeper bool
}

// Option configures optional collaborators of the cache.
type Option func(*options)

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics sets the metrics sink. Defaults to NoopMetrics.
func WithMetrics(m types.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithClock replaces time.Now as the source of insertion and expiry times.
func WithClock(c types.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithEvictionPolicy selects the eviction ordering. Defaults to eviction.FIFO.
//
// eviction.LRU changes which entries a full cache drops: recently served
// entries survive longer. Expiry is unaffected.
func WithEvictionPolicy(t eviction.PolicyType) Option {
	return func(o *options) {
		o.policy = t
	}
}

// WithoutSweeper disables the background sweep. The embedder is then
// responsible for calling Cleanup.
func WithoutSweeper() Option {
	return func(o *options) {
		o.noSweeper = true
	}
}
