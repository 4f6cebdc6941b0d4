// Package jobs runs asynchronous file reads whose results are applied by a
// single consumer in completion order.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/dsjohal14/taskpop/internal/libs/accel"
	"github.com/google/uuid"
)

// Status values for a Job
const (
	StatusPending = "pending"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// ReadFunc produces the payload of a job
type ReadFunc func(ctx context.Context) ([]byte, error)

// Job represents one asynchronous read
type Job struct {
	ID          string
	Source      string
	Status      string
	CreatedAt   time.Time
	CompletedAt time.Time
	Err         error
}

// Result is delivered once per job, in the order jobs complete
type Result struct {
	Job  Job
	Data []byte
	Err  error
}

// Queue manages asynchronous read jobs
type Queue struct {
	mu      sync.Mutex
	jobs    []*Job
	wg      sync.WaitGroup
	results chan Result
	closed  bool
	limit   *accel.Limiter
}

// Option configures a Queue
type Option func(*Queue)

// WithLimit caps how many reads run at once
func WithLimit(n int) Option {
	return func(q *Queue) {
		q.limit = accel.NewLimiter(n)
	}
}

// NewQueue creates a new job queue
func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		jobs:    make([]*Job, 0),
		results: make(chan Result),
		limit:   accel.NewLimiter(accel.DefaultLimit),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue starts read in its own goroutine and returns the tracking job.
// Enqueue must not be called after Close.
func (q *Queue) Enqueue(ctx context.Context, source string, read ReadFunc) *Job {
	job := &Job{
		ID:        uuid.NewString(),
		Source:    source,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}

	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()

		var data []byte
		err := q.limit.Acquire(ctx)
		if err == nil {
			data, err = read(ctx)
			q.limit.Release()
		}

		q.mu.Lock()
		job.CompletedAt = time.Now()
		if err != nil {
			job.Status = StatusFailed
			job.Err = err
		} else {
			job.Status = StatusDone
		}
		snapshot := *job
		q.mu.Unlock()

		q.results <- Result{Job: snapshot, Data: data, Err: err}
	}()

	return job
}

// Close stops accepting jobs; Results is closed once every job has reported.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	go func() {
		q.wg.Wait()
		close(q.results)
	}()
}

// Results yields one Result per job in completion order
func (q *Queue) Results() <-chan Result {
	return q.results
}

// Count returns the number of jobs in the queue
func (q *Queue) Count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Pending returns the number of jobs that have not completed
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, j := range q.jobs {
		if j.Status == StatusPending {
			n++
		}
	}
	return n
}
