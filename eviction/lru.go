// This file implements LRU eviction.

package eviction

// newLRU returns a list policy that treats every served read as a touch.
// Expiry still follows insertion time; only the eviction order changes.
func newLRU() *insertionList {
	return newInsertionList(true)
}
