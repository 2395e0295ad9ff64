// Package tasks runs named background jobs on a small worker pool with a
// bounded queue. Errors and panics are logged per task and never escape the
// pool.
package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

type task struct {
	name string
	fn   func(ctx context.Context) error
}

type Runner struct {
	queue   chan task
	wg      conc.WaitGroup
	cancel  context.CancelFunc
	timeout time.Duration
}

// NewRunner starts workers goroutines draining a queue of up to queueSize
// pending tasks.
func NewRunner(workers, queueSize int, taskTimeout time.Duration) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		queue:   make(chan task, queueSize),
		cancel:  cancel,
		timeout: taskTimeout,
	}
	for i := 0; i < workers; i++ {
		r.wg.Go(func() { r.work(ctx) })
	}
	return r
}

func (r *Runner) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-r.queue:
			if !ok {
				return
			}
			r.run(ctx, t)
		}
	}
}

func (r *Runner) run(ctx context.Context, t task) {
	taskCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	started := time.Now()
	var err error
	recovered := panics.Try(func() {
		err = t.fn(taskCtx)
	})
	switch {
	case recovered != nil:
		slog.Error("Background task panicked", "task", t.name, "panic", recovered.Value)
	case err != nil:
		slog.Error("Background task failed", "task", t.name, "duration", time.Since(started), "error", err)
	default:
		slog.Info("Background task finished", "task", t.name, "duration", time.Since(started))
	}
}

// Submit queues a task. Returns false when the queue is full; the caller
// decides whether that is worth surfacing.
func (r *Runner) Submit(name string, fn func(ctx context.Context) error) bool {
	select {
	case r.queue <- task{name: name, fn: fn}:
		return true
	default:
		return false
	}
}

// Stop cancels running tasks and waits for the workers to drain.
func (r *Runner) Stop() {
	r.cancel()
	r.wg.Wait()
}
