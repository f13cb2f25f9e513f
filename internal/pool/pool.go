// Package pool implements the Worker Pool: a set of long-lived workers
// pulling Tasks from a shared queue.Queue and executing them, outliving any
// single Scheduler run.
//
// The worker loop — batched tryPop falling back to a blocking waitPop, a
// recovered panic never poisoning the pool — is grounded on
// internal/dag/executor.go's worker() in the teacher
// (specialistvlad-burstgridgo), adapted from a single fixed channel to the
// queue.Queue abstraction and generalized from DAG-node execution to
// arbitrary submitted functions.
package pool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vk/gridwork/internal/ctxlog"
	"github.com/vk/gridwork/internal/queue"
	"golang.org/x/sync/semaphore"
)

// ShutdownPolicy controls what happens to queued-but-not-yet-started tasks
// when Shutdown is called.
type ShutdownPolicy int

const (
	// Drain lets every already-queued task run to completion before
	// Shutdown returns. No new submissions are accepted.
	Drain ShutdownPolicy = iota
	// Discard completes anything still sitting in the queue with
	// ErrShutdown without running it, then cancels the pool's context.
	// In-flight tasks are not interrupted, but the context they received is
	// cancelled, so a task that watches it can return early.
	Discard
)

// Config configures a Pool's fixed worker count, per-pop batch size, and
// shutdown behavior.
type Config struct {
	// ThreadCount is the number of long-lived workers. Defaults to 1 if <= 0.
	ThreadCount int
	// MaxPoolBatchSize caps how many tasks a single tryPop drain pulls
	// before falling back to a blocking wait. Defaults to 1 if <= 0.
	MaxPoolBatchSize int
	// MaxThreadCount bounds Resize growth; defaults to ThreadCount (no
	// elasticity) if <= 0.
	MaxThreadCount int
	ShutdownPolicy ShutdownPolicy
}

func (c Config) normalized() Config {
	if c.ThreadCount <= 0 {
		c.ThreadCount = 1
	}
	if c.MaxPoolBatchSize <= 0 {
		c.MaxPoolBatchSize = 1
	}
	if c.MaxThreadCount <= 0 {
		c.MaxThreadCount = c.ThreadCount
	}
	if c.MaxThreadCount < c.ThreadCount {
		c.MaxThreadCount = c.ThreadCount
	}
	return c
}

// Fn is a unit of work submitted to the pool. It receives the pool's
// run-scoped context, which is cancelled on a Discard shutdown.
type Fn func(ctx context.Context) (any, error)

// Result is the outcome of a completed task.
type Result struct {
	Value any
	Err   error
}

// Future is the completion handle returned by Submit.
type Future struct {
	done   chan struct{}
	result Result
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) complete(r Result) {
	f.result = r
	close(f.done)
}

// Wait blocks until the task completes or ctx is done, whichever comes
// first.
func (f *Future) Wait(ctx context.Context) (Result, error) {
	select {
	case <-f.done:
		return f.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

type task struct {
	fn     Fn
	future *Future
}

// Pool is a fixed-or-elastic set of workers draining a shared queue.Queue.
type Pool struct {
	cfg Config

	q *queue.Queue[task]

	ctx    context.Context
	cancel context.CancelFunc

	wg         sync.WaitGroup
	workersMu  sync.Mutex
	cancels    []context.CancelFunc
	sem        *semaphore.Weighted
	shutdown   atomic.Bool
	shutdownMu sync.Mutex

	metrics *metrics
}

// New constructs a Pool and starts cfg.ThreadCount workers. The returned
// Pool is immediately ready to accept Submit calls.
func New(ctx context.Context, cfg Config) *Pool {
	cfg = cfg.normalized()
	runCtx, cancel := context.WithCancel(ctx)

	p := &Pool{
		cfg:     cfg,
		q:       queue.New[task](),
		ctx:     runCtx,
		cancel:  cancel,
		sem:     semaphore.NewWeighted(int64(cfg.MaxThreadCount)),
		metrics: newMetrics(),
	}

	for i := 0; i < cfg.ThreadCount; i++ {
		p.spawnWorker()
	}
	return p
}

// spawnWorker acquires a slot in the elasticity semaphore and starts a
// worker bound to its own child of p.ctx, so Resize can cancel individual
// workers without tearing down the whole pool. It is a no-op once the
// semaphore is exhausted (growth capped at Config.MaxThreadCount).
func (p *Pool) spawnWorker() bool {
	if !p.sem.TryAcquire(1) {
		return false
	}
	wctx, cancel := context.WithCancel(p.ctx)
	p.workersMu.Lock()
	p.cancels = append(p.cancels, cancel)
	p.workersMu.Unlock()

	p.wg.Add(1)
	p.metrics.activeWorkers.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.sem.Release(1)
		defer p.metrics.activeWorkers.Add(-1)
		p.workerLoop(wctx)
	}()
	return true
}

// Resize grows or shrinks the pool toward n workers, bounded by
// Config.MaxThreadCount. Growing beyond the max is a no-op for the excess
// workers (they simply aren't started). Shrinking cancels the most
// recently started workers' contexts, unblocking any that are parked in a
// blocking wait.
func (p *Pool) Resize(n int) {
	p.workersMu.Lock()
	current := len(p.cancels)
	switch {
	case n > current:
		toAdd := n - current
		p.workersMu.Unlock()
		for i := 0; i < toAdd; i++ {
			if !p.spawnWorker() {
				return
			}
		}
	case n < current:
		toRemove := current - n
		for i := 0; i < toRemove; i++ {
			last := len(p.cancels) - 1
			p.cancels[last]()
			p.cancels = p.cancels[:last]
		}
		p.workersMu.Unlock()
	default:
		p.workersMu.Unlock()
	}
}

// Submit wraps fn so its result is retrievable via the returned Future.
// Submit never blocks; it returns a Future that is already failed if the
// pool has begun shutting down.
func (p *Pool) Submit(fn Fn) *Future {
	f := newFuture()
	if p.shutdown.Load() {
		f.complete(Result{Err: ErrShutdown})
		return f
	}
	p.metrics.queued.Add(1)
	p.q.Push(task{fn: fn, future: f})
	return f
}

// SubmitBatch submits every fn in fns, preserving order within the queue's
// single critical section, and returns their Futures in the same order.
func (p *Pool) SubmitBatch(fns []Fn) []*Future {
	futures := make([]*Future, len(fns))
	tasks := make([]task, len(fns))
	for i, fn := range fns {
		f := newFuture()
		futures[i] = f
		if p.shutdown.Load() {
			f.complete(Result{Err: ErrShutdown})
			continue
		}
		tasks[i] = task{fn: fn, future: f}
	}
	if !p.shutdown.Load() {
		p.metrics.queued.Add(float64(len(tasks)))
		p.q.PushBatch(tasks)
	}
	return futures
}

// Shutdown stops accepting new submissions and, per Config.ShutdownPolicy,
// either drains queued work or discards it, then joins all workers.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.shutdownMu.Lock()
	defer p.shutdownMu.Unlock()
	if !p.shutdown.CompareAndSwap(false, true) {
		return nil
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("pool: shutting down", "policy", p.cfg.ShutdownPolicy)

	if p.cfg.ShutdownPolicy == Discard {
		for _, t := range p.q.DrainAll() {
			p.metrics.failed.Add(1)
			t.future.complete(Result{Err: ErrShutdown})
		}
		p.cancel()
	}
	p.q.Close()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Collector exposes the pool's Prometheus collector (tasks submitted, active
// worker count, tasks completed/failed, batch-drain sizes). It has no
// queue-depth gauge.
func (p *Pool) Collector() *metrics {
	return p.metrics
}

func (p *Pool) workerLoop(ctx context.Context) {
	logger := ctxlog.FromContext(p.ctx)
	batch := make([]task, 0, p.cfg.MaxPoolBatchSize)
	for {
		batch = batch[:0]
		if p.q.TryPopBatch(&batch, p.cfg.MaxPoolBatchSize) {
			p.metrics.batchSizes.Observe(float64(len(batch)))
			for _, t := range batch {
				p.execute(t)
			}
			continue
		}

		t, ok := p.q.WaitPopContext(ctx)
		if !ok {
			if ctx.Err() != nil {
				logger.Debug("pool: worker stopping", "reason", ctx.Err())
			}
			return
		}
		p.execute(t)
	}
}

// execute runs a single task, converting a panic into a captured error so
// one bad task never brings down its worker.
func (p *Pool) execute(t task) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("pool: task panicked: %v", r)
			}
			p.metrics.failed.Add(1)
			t.future.complete(Result{Err: err})
		}
	}()

	v, err := t.fn(p.ctx)
	if err != nil {
		p.metrics.failed.Add(1)
	} else {
		p.metrics.completed.Add(1)
	}
	t.future.complete(Result{Value: v, Err: err})
}

// ErrShutdown is returned by a Future when Submit was called after the pool
// began shutting down.
var ErrShutdown = fmt.Errorf("pool: shutdown in progress")
