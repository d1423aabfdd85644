// This file implements sort-based FIFO eviction.

package eviction

import (
	"sort"
	"time"

	"github.com/krisalay/artifact-cache/types"
)

type fifo struct {
	// inserted maps each tracked key to its insertion time.
	inserted map[string]time.Time
}

func newFIFO() *fifo {
	return &fifo{inserted: make(map[string]time.Time)}
}

// OnGet is a no-op: an entry read a thousand times is as evictable as one never read.
func (f *fifo) OnGet(string) {}

// OnPut records (or re-records) the entry's insertion time.
func (f *fifo) OnPut(ent *types.ArtifactEntry) {
	f.inserted[ent.Key] = ent.InsertedAt
}

func (f *fifo) Remove(k string) {
	delete(f.inserted, k)
}

/*
Evict picks the n oldest keys.

Steps:
------
1. Collect every tracked key with its insertion time
2. Sort ascending by time, then by key
3. Drop the first n from tracking and return them
*/
func (f *fifo) Evict(n int) []string {
	if n <= 0 || len(f.inserted) == 0 {
		return nil
	}

	keys := make([]string, 0, len(f.inserted))
	for k := range f.inserted {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ti, tj := f.inserted[keys[i]], f.inserted[keys[j]]
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return keys[i] < keys[j]
	})

	if n > len(keys) {
		n = len(keys)
	}
	victims := keys[:n]
	for _, k := range victims {
		delete(f.inserted, k)
	}
	return victims
}

func (f *fifo) Reset() {
	clear(f.inserted)
}
