// Package admission decides whether a candidate payload may enter the cache.
package admission

// Policy decides whether a value should be cached.
// A refusal is not an error: the caller still serves the artifact, it is
// simply not memoized this time.
type Policy interface {
	Admit(key string, sizeBytes int) bool
}

// SizeGuard refuses any payload larger than MaxEntryBytes.
// It looks only at the candidate, never at what is already resident.
type SizeGuard struct {
	MaxEntryBytes int64
}

// Admit reports whether sizeBytes <= MaxEntryBytes.
func (g SizeGuard) Admit(_ string, sizeBytes int) bool {
	return int64(sizeBytes) <= g.MaxEntryBytes
}

// AdmitAll admits everything.
type AdmitAll struct{}

func (AdmitAll) Admit(string, int) bool { return true }
