package types

import "time"

// ArtifactEntry is one memoized artifact.
// Entries are immutable once stored; replacing a key creates a new entry.
type ArtifactEntry struct {
	Key        string
	Payload    []byte
	MediaType  string
	InsertedAt time.Time // never refreshed on read
}

// Size returns the payload length in bytes.
func (e *ArtifactEntry) Size() int64 {
	return int64(len(e.Payload))
}

// MemoryUsage is an observational snapshot of resident payloads.
type MemoryUsage struct {
	Entries int
	Bytes   int64
}

// Megabytes returns Bytes expressed in MiB.
func (m MemoryUsage) Megabytes() float64 {
	return float64(m.Bytes) / (1024 * 1024)
}

// Clock returns the current time. Tests swap it for a manual clock.
type Clock func() time.Time
