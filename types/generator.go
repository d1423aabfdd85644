package types

import "context"

// Generator is the contract between the render service and the expensive
// artifact producer (image / document renderer).

/*
Generate is called on a cache miss.
1. Service builds the fingerprint
2. Cache misses
3. Service calls Generate(params)
4. Service hands the bytes back to the cache
5. Service returns the artifact

Generate must be deterministic for a given fingerprint. It may be slow.
*/
type Generator interface {
	Generate(ctx context.Context, kind string, params map[string]string) (payload []byte, mediaType string, err error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, kind string, params map[string]string) ([]byte, string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, kind string, params map[string]string) ([]byte, string, error) {
	return f(ctx, kind, params)
}
