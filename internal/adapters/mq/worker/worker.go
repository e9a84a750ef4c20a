// Package worker runs queued jobs on a fixed pool of goroutines.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Job outcomes for metrics.
const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Handler processes one job.
type Handler[T any] func(ctx context.Context, job T) error

// Queue defines how workers receive jobs.
type Queue[T any] interface {
	Dequeue(ctx context.Context) <-chan T
}

// InMemoryWorker pulls jobs off a queue and hands them to a Handler.
type InMemoryWorker[T any] struct {
	queue  Queue[T]
	handle Handler[T]
	name   string
	log    logger.Logger

	processed *atomic.Int64
	failed    *atomic.Int64

	stopOnce sync.Once
	shutdown chan struct{}
	done     chan struct{}
}

// NewInMemoryWorker creates a worker reading from q.
func NewInMemoryWorker[T any](q Queue[T], h Handler[T], opts ...Option) *InMemoryWorker[T] {
	s := settings{name: "worker"}
	for _, opt := range opts {
		opt(&s)
	}
	if s.log == nil {
		s.log = logger.Get()
	}

	return &InMemoryWorker[T]{
		queue:     q,
		handle:    h,
		name:      s.name,
		log:       s.log.Named(s.name),
		processed: new(atomic.Int64),
		failed:    new(atomic.Int64),
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Run processes jobs until the queue drains, ctx is cancelled or Shutdown
// is called.
func (w *InMemoryWorker[T]) Run(ctx context.Context) {
	metrics.AddWorkerActive(1)
	defer func() {
		metrics.AddWorkerActive(-1)
		close(w.done)
	}()

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

func (w *InMemoryWorker[T]) process(ctx context.Context, job T) {
	w.processed.Add(1)
	if err := w.handle(ctx, job); err != nil {
		w.failed.Add(1)
		metrics.RecordWorkerJob(outcomeFailure)
		w.log.Debug(ctx, "job failed", logger.Error(err))
		return
	}
	metrics.RecordWorkerJob(outcomeSuccess)
}

// Shutdown stops the worker after its current job.
func (w *InMemoryWorker[T]) Shutdown(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.log.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Pool manages multiple workers sharing one queue.
type Pool[T any] struct {
	workers []*InMemoryWorker[T]
	queue   Queue[T]

	processed atomic.Int64
	failed    atomic.Int64

	log logger.Logger
}

// NewPool creates a pool of workerCount workers. A count below 1 means one
// worker per CPU.
func NewPool[T any](workerCount int, q Queue[T], h Handler[T], opts ...Option) *Pool[T] {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	s := settings{name: "worker-pool"}
	for _, opt := range opts {
		opt(&s)
	}
	if s.log == nil {
		s.log = logger.Get()
	}

	p := &Pool[T]{
		workers: make([]*InMemoryWorker[T], workerCount),
		queue:   q,
		log:     s.log.Named(s.name),
	}
	for i := range p.workers {
		w := NewInMemoryWorker(q, h, WithName(s.name+"-"+strconv.Itoa(i)), WithLogger(s.log))
		w.processed, w.failed = &p.processed, &p.failed
		p.workers[i] = w
	}
	return p
}

// Start starts all workers in the pool.
func (p *Pool[T]) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Size returns the number of workers.
func (p *Pool[T]) Size() int { return len(p.workers) }

// Processed returns how many jobs were handed to a handler.
func (p *Pool[T]) Processed() int64 { return p.processed.Load() }

// Failed returns how many handled jobs returned an error.
func (p *Pool[T]) Failed() int64 { return p.failed.Load() }

// Wait closes the queue to intake and blocks until every queued job is
// handled or ctx is done.
func (p *Pool[T]) Wait(ctx context.Context) error {
	p.closeQueue(ctx)
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Shutdown stops every worker after its current job. Queued jobs that were
// not picked up are dropped.
func (p *Pool[T]) Shutdown(ctx context.Context) error {
	p.closeQueue(ctx)
	for i, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			p.log.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return err
		}
	}
	return nil
}

func (p *Pool[T]) closeQueue(ctx context.Context) {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.log.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
}
