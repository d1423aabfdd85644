package api

import (
	"context"
	"time"

	"github.com/krisalay/artifact-cache/types"
)

/*
Cache defines the PUBLIC API of the artifact cache.
Embedding layers (render service, request handlers) depend on this interface
and never on the eviction, expiry or storage details behind it.
*/
type Cache interface {

	/*
		Get retrieves the artifact stored under key.

		BEHAVIOR:
		-------------------
		1. If the key exists and is NOT expired:
		   - Return payload, media type, true (cache hit)

		2. If the key does NOT exist, or exists but is expired:
		   - Return found=false (cache miss)
		   - An expired entry is removed on the way out

		Returned payloads are shared with the cache and must be treated as read-only.
	*/
	Get(ctx context.Context, key string) (payload []byte, mediaType string, found bool)

	/*
		Set stores an artifact under key, replacing any previous entry.

		BEHAVIOR:
		---------
		- Oversized payloads are silently not cached (nil error)
		- When the store is full, the oldest 10% of entries are evicted first
		- The payload is copied; the caller may reuse its slice

		The only error is for malformed input (an empty key).
	*/
	Set(ctx context.Context, key string, payload []byte, mediaType string) error

	/*
		Clear removes every entry.
		This operation is idempotent.
	*/
	Clear()

	// Size returns the current entry count.
	Size() int

	// MemoryUsage returns the entry count and resident payload bytes.
	MemoryUsage() types.MemoryUsage

	/*
		Cleanup removes every expired entry now and returns how many were removed.
		The background sweeper calls this on its interval.
	*/
	Cleanup(ctx context.Context) int

	/*
		TTL returns the remaining lifetime of a key.

		RETURN VALUES:
		--------------
		> 0   : Duration remaining before expiration
		-2    : Key does not exist or is already expired
	*/
	TTL(key string) time.Duration

	/*
		Close stops the background sweeper and waits for it to exit.
		Entries stay readable after Close; only the periodic sweep ends.
	*/
	Close()
}
