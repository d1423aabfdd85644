package expiration

import (
	"time"

	"github.com/krisalay/artifact-cache/types"
)

/*
ExpireAfterWrite implements a fixed lifetime measured from insertion.
Reads never extend it. An entry whose age is exactly TTL is still live;
one nanosecond later it is expired.
*/
type ExpireAfterWrite struct {
	TTL time.Duration
}

// IsExpired checks whether now - InsertedAt > TTL.
func (e *ExpireAfterWrite) IsExpired(ent *types.ArtifactEntry, now time.Time) bool {
	return now.Sub(ent.InsertedAt) > e.TTL
}

// Remaining returns InsertedAt + TTL - now.
func (e *ExpireAfterWrite) Remaining(ent *types.ArtifactEntry, now time.Time) time.Duration {
	return ent.InsertedAt.Add(e.TTL).Sub(now)
}
