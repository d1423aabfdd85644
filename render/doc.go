// Package render fronts an expensive artifact Generator with the artifact cache.
//
// A Request is reduced to a fingerprint, the cache is consulted, and only on a
// miss is the Generator called; the result is handed back to the cache. Cache
// admission failures never fail a render: an oversized artifact is served
// and simply not memoized.
//
// Concurrent misses for the same fingerprint each call the Generator unless
// the service is built WithCoalescing.
package render
