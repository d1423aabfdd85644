package eviction

import "github.com/krisalay/artifact-cache/types"

/*
This file defines how the cache decides what to remove when it runs out of space.
*/

/*
Policy is the interface that all eviction strategies must follow.

The cache does NOT care how ordering is tracked internally.
It only calls these methods, always while holding its store lock.
*/
type Policy interface {

	// OnGet is called whenever a live entry is served.
	// FIFO policies ignore it.
	OnGet(string)

	// OnPut is called whenever an entry is added to the store.
	OnPut(*types.ArtifactEntry)

	// Remove is called when an entry leaves the store for any reason
	// other than Evict (expiry, replacement).
	Remove(string)

	// Evict removes the n oldest tracked keys from the policy and returns them,
	// oldest first. The cache then deletes them from storage.
	Evict(n int) []string

	// Reset forgets every tracked key.
	Reset()
}

// PolicyType is a simple identifier for supported eviction strategies.
type PolicyType string

const (
	// FIFO evicts by insertion time, oldest first, using a full sort on every overflow.
	// Ties on insertion time are broken by key order.
	FIFO PolicyType = "FIFO"

	// FIFOList evicts in insertion order using a linked list, so finding the
	// oldest batch costs O(batch) instead of a sort. Ties follow call order.
	FIFOList PolicyType = "FIFO_LIST"

	// LRU evicts the least recently served keys first. This is a semantic change
	// from insertion order: reads protect an entry from eviction (not from expiry).
	LRU PolicyType = "LRU"
)

// Valid reports whether NewEvictionPolicy accepts t. The empty type means FIFO.
func (t PolicyType) Valid() bool {
	switch t {
	case FIFO, FIFOList, LRU, "":
		return true
	}
	return false
}

// NewEvictionPolicy is a small factory function.
// Given a PolicyType, it creates the correct eviction policy.
// It panics on a type for which Valid is false.
func NewEvictionPolicy(t PolicyType) Policy {
	switch t {
	case FIFO, "":
		return newFIFO()
	case FIFOList:
		return newInsertionList(false)
	case LRU:
		return newLRU()
	default:
		panic("unknown eviction policy")
	}
}

// BatchFraction is the share of capacity dropped by one overflow.
const BatchFraction = 10 // percent

// BatchSize returns ceil(maxEntries * 10%), and at least 1 for a positive capacity.
func BatchSize(maxEntries int) int {
	if maxEntries <= 0 {
		return 0
	}
	return (maxEntries*BatchFraction + 99) / 100
}
