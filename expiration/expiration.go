// This file defines how cache entries expire over time.

package expiration

import (
	"time"

	"github.com/krisalay/artifact-cache/types"
)

/*
Strategy is the interface that all expiration rules must follow. Instead of hard-coding
expiration logic into the cache, we define a strategy so expiration behavior can be swapped easily.

Entries are immutable, so strategies only ever look at InsertedAt.
*/
type Strategy interface {

	// IsExpired reports whether the entry must no longer be served at now.
	IsExpired(*types.ArtifactEntry, time.Time) bool

	// Remaining returns how long the entry stays servable after now (<= 0 once expired).
	Remaining(*types.ArtifactEntry, time.Time) time.Duration
}
