// Package accel bounds how much concurrent work a batch of jobs may run.
package accel

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// DefaultLimit is used when a non-positive limit is requested
const DefaultLimit = 8

// Limiter caps the number of concurrently running operations
type Limiter struct {
	size int
	sem  *semaphore.Weighted
}

// NewLimiter creates a limiter allowing size concurrent holders
func NewLimiter(size int) *Limiter {
	if size <= 0 {
		size = DefaultLimit
	}
	return &Limiter{size: size, sem: semaphore.NewWeighted(int64(size))}
}

// Size returns the concurrency limit
func (l *Limiter) Size() int {
	return l.size
}

// Acquire blocks until a slot is free or ctx is done
func (l *Limiter) Acquire(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

// Release frees a slot taken by Acquire
func (l *Limiter) Release() {
	l.sem.Release(1)
}
