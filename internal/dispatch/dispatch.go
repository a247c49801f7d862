// Package dispatch provides the in-memory job queue between webhook ingress
// and the page processor: a fixed worker pool with short-window
// deduplication of redelivered events.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Gabee01/pii-detector-sub000/internal/metrics"
)

const (
	defaultWorkers     = 4
	defaultQueueSize   = 256
	defaultDedupWindow = 30 * time.Second
)

// Job is one unit of page processing work
type Job struct {
	// ID is assigned at enqueue time
	ID string
	// PageID is the page to process
	PageID string
	// AuthorID is the user that triggered the change event
	AuthorID string
	// WebhookID identifies the delivery, when the event carries one
	WebhookID string
	// EnqueuedAt is when the job entered the queue
	EnqueuedAt time.Time
}

// Handler processes one job
type Handler func(ctx context.Context, job Job) error

// Dispatcher fans jobs out to a fixed pool of workers. Events that repeat
// the same page, author and delivery within the dedup window are dropped:
// the platform redelivers webhooks aggressively and processing is
// idempotent but not free.
type Dispatcher struct {
	handler   Handler
	jobs      chan Job
	workers   int
	window    time.Duration
	now       func() time.Time
	mu        sync.Mutex
	recent    map[string]time.Time
	wg        sync.WaitGroup
	startOnce sync.Once
}

// Option configures the Dispatcher
type Option func(*Dispatcher)

// WithWorkers sets the worker pool size
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithQueueSize sets the job buffer size
func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.jobs = make(chan Job, n)
		}
	}
}

// WithDedupWindow sets how long a {page, author, delivery} triple suppresses
// repeat events
func WithDedupWindow(window time.Duration) Option {
	return func(d *Dispatcher) {
		if window > 0 {
			d.window = window
		}
	}
}

// New creates a dispatcher that hands jobs to the given handler
func New(handler Handler, opts ...Option) (*Dispatcher, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}

	d := &Dispatcher{
		handler: handler,
		jobs:    make(chan Job, defaultQueueSize),
		workers: defaultWorkers,
		window:  defaultDedupWindow,
		now:     time.Now,
		recent:  make(map[string]time.Time),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Start launches the worker pool. Workers run until ctx is canceled; Wait
// blocks until they have all exited.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		for i := 0; i < d.workers; i++ {
			d.wg.Add(1)

			go d.work(ctx)
		}

		log.Info().Int("workers", d.workers).Msg("dispatcher started")
	})
}

// Wait blocks until all workers have stopped
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue queues one page-changed event for processing and returns the
// assigned job. A duplicate within the dedup window returns
// ErrDuplicateJob; a full queue returns ErrQueueFull.
func (d *Dispatcher) Enqueue(pageID, authorID, webhookID string) (Job, error) {
	if pageID == "" {
		return Job{}, ErrMissingPageID
	}

	if d.isDuplicate(pageID, authorID, webhookID) {
		metrics.JobsDeduplicated.Inc()
		log.Debug().Str("page_id", pageID).Str("author_id", authorID).Msg("duplicate event dropped")

		return Job{}, ErrDuplicateJob
	}

	job := Job{
		ID:         uuid.NewString(),
		PageID:     pageID,
		AuthorID:   authorID,
		WebhookID:  webhookID,
		EnqueuedAt: d.now(),
	}

	select {
	case d.jobs <- job:
		metrics.QueueDepth.Inc()
		return job, nil
	default:
		d.forget(pageID, authorID, webhookID)
		return Job{}, ErrQueueFull
	}
}

// work consumes jobs until the context is canceled
func (d *Dispatcher) work(ctx context.Context) {
	defer d.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-d.jobs:
			metrics.QueueDepth.Dec()

			if err := d.handler(ctx, job); err != nil {
				log.Error().Err(err).Str("job_id", job.ID).Str("page_id", job.PageID).Msg("job failed")
			}
		}
	}
}

// isDuplicate records the event's dedup key and reports whether it was seen
// within the window. Stale entries are pruned on the way.
func (d *Dispatcher) isDuplicate(pageID, authorID, webhookID string) bool {
	key := dedupKey(pageID, authorID, webhookID)
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	for k, seen := range d.recent {
		if now.Sub(seen) > d.window {
			delete(d.recent, k)
		}
	}

	if seen, ok := d.recent[key]; ok && now.Sub(seen) <= d.window {
		return true
	}

	d.recent[key] = now

	return false
}

// forget drops the dedup record for an event that was never queued
func (d *Dispatcher) forget(pageID, authorID, webhookID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.recent, dedupKey(pageID, authorID, webhookID))
}

func dedupKey(pageID, authorID, webhookID string) string {
	return fmt.Sprintf("%s|%s|%s", pageID, authorID, webhookID)
}
