package render

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmgilman/go/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/krisalay/artifact-cache/api"
	"github.com/krisalay/artifact-cache/logging"
	"github.com/krisalay/artifact-cache/types"
)

const defaultBulkConcurrency = 8

// Service renders artifacts through the cache.
type Service struct {
	cache api.Cache
	gen   types.Generator

	logger *logging.Logger

	// limiter throttles Generator calls; nil means unlimited.
	limiter *rate.Limiter

	// coalesce routes concurrent misses for one key through sf.
	coalesce bool
	sf       singleflight.Group

	bulkConcurrency int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRateLimit caps Generator calls at r per second with the given burst.
// Cache hits are never throttled.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(s *Service) {
		s.limiter = rate.NewLimiter(r, burst)
	}
}

// WithCoalescing makes concurrent misses for the same fingerprint share a
// single Generator call.
func WithCoalescing() Option {
	return func(s *Service) {
		s.coalesce = true
	}
}

// WithBulkConcurrency bounds how many items of a bulk request render at once.
func WithBulkConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.bulkConcurrency = n
		}
	}
}

// NewService returns a Service backed by c and gen.
func NewService(c api.Cache, gen types.Generator, opts ...Option) *Service {
	s := &Service{
		cache:           c,
		gen:             gen,
		logger:          logging.NoopLogger(),
		bulkConcurrency: defaultBulkConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("render")
	return s
}

/*
Render returns the artifact for req.

1. Build the fingerprint
2. Serve it from the cache when present
3. Otherwise generate, hand the result to the cache, and serve it
*/
func (s *Service) Render(ctx context.Context, req Request) (Artifact, error) {
	if err := req.Validate(); err != nil {
		return Artifact{}, err
	}
	key := Fingerprint(req.Kind, req.Params)

	if payload, mt, ok := s.cache.Get(ctx, key); ok {
		return Artifact{Key: key, Payload: payload, MediaType: mt, Cached: true}, nil
	}

	if !s.coalesce {
		return s.generate(ctx, key, req)
	}

	// The shared call outlives any single caller; each caller still
	// stops waiting when its own ctx is done.
	shared := context.WithoutCancel(ctx)
	ch := s.sf.DoChan(key, func() (any, error) {
		return s.generate(shared, key, req)
	})
	select {
	case <-ctx.Done():
		return Artifact{}, errors.Wrap(ctx.Err(), errors.CodeTimeout, "waiting for shared artifact generation")
	case res := <-ch:
		if res.Err != nil {
			return Artifact{}, res.Err
		}
		return res.Val.(Artifact), nil
	}
}

func (s *Service) generate(ctx context.Context, key string, req Request) (Artifact, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return Artifact{}, errors.WrapWithContext(err, errors.CodeRateLimit,
				"artifact generation throttled", map[string]interface{}{"key": key})
		}
	}

	payload, mt, err := s.gen.Generate(ctx, req.Kind, req.Params)
	if err != nil {
		return Artifact{}, errors.WrapWithContext(err, errors.CodeExecutionFailed,
			"artifact generation failed", map[string]interface{}{"key": key})
	}

	if err := s.cache.Set(ctx, key, payload, mt); err != nil {
		// never fails the request; the artifact is still served
		s.logger.WarnContext(ctx, "artifact not memoized", "key", key, "error", err)
	}

	return Artifact{Key: key, Payload: payload, MediaType: mt}, nil
}

/*
RenderBulk renders 1..MaxBulkItems requests in parallel, bounded by the bulk
concurrency. Results keep the input order. The whole call fails if any item fails.
*/
func (s *Service) RenderBulk(ctx context.Context, reqs []Request) (BulkResult, error) {
	switch {
	case len(reqs) == 0:
		return BulkResult{}, errors.New(errors.CodeInvalidInput, "bulk render needs at least one item")
	case len(reqs) > MaxBulkItems:
		return BulkResult{}, errors.Newf(errors.CodeInvalidInput,
			"too many items: %d (maximum %d per request)", len(reqs), MaxBulkItems)
	}

	id := uuid.NewString()
	items := make([]BulkItem, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.bulkConcurrency)

	for i, req := range reqs {
		g.Go(func() error {
			art, err := s.Render(gctx, req)
			if err != nil {
				return errors.WithContext(err, "item", i)
			}
			items[i] = BulkItem{ID: uuid.NewString(), Kind: req.Kind, Artifact: art}
			return nil
		})
	}

	err := g.Wait()
	s.logger.LogBulk(ctx, id, len(reqs), err)
	if err != nil {
		return BulkResult{}, err
	}
	return BulkResult{ID: id, Items: items}, nil
}
