// Package resource tracks the aggregate byte footprint of resident artifacts.
package resource

import (
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for resident payload bytes.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64
}

// Controller accounts payload bytes and, when limited, refuses reservations
// that would exceed the budget.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}
	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	return c
}

// Limited reports whether a hard limit is configured.
func (c *Controller) Limited() bool {
	return c != nil && c.memSem != nil
}

// Limit returns the configured limit, 0 when unlimited.
func (c *Controller) Limit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// TryAcquireMemory attempts to reserve memory without blocking.
// Returns true if acquired, false if limit would be exceeded.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil {
		return true
	}
	if bytes <= 0 {
		return true
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return false
		}
	}

	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil {
		return
	}
	if bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current reserved bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}
