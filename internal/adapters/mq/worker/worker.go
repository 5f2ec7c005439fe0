// Package worker runs queued tasks on a fixed pool of goroutines.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/yaculator/internal/adapters/mq/queue"
	"github.com/okian/yaculator/pkg/logger"
	"github.com/okian/yaculator/pkg/metrics"
)

// Queue defines how workers receive tasks.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Task
}

// Pool manages a fixed set of workers reading one queue.
type Pool struct {
	size        int
	queue       Queue
	name        string
	stopOnError bool
	logger      logger.Logger

	wg      sync.WaitGroup
	started atomic.Bool
	failed  atomic.Bool
	active  atomic.Int64

	mu   sync.Mutex
	errs []error
}

// NewPool creates a pool of size workers. A size below one uses NumCPU.
func NewPool(size int, q Queue, opts ...Option) *Pool {
	if size < 1 {
		size = runtime.NumCPU()
	}
	p := &Pool{
		size:   size,
		queue:  q,
		name:   "worker-pool",
		logger: logger.Get(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named(p.name)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Start launches the workers. They exit when the queue is closed and
// drained or ctx is done.
func (p *Pool) Start(ctx context.Context) error {
	if !p.started.CompareAndSwap(false, true) {
		return ErrStarted
	}
	p.wg.Add(p.size)
	for i := 0; i < p.size; i++ {
		go p.run(ctx, "worker-"+strconv.Itoa(i))
	}
	return nil
}

// Wait blocks until every worker has exited and returns the joined task
// errors.
func (p *Pool) Wait() error {
	p.wg.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	return errors.Join(p.errs...)
}

func (p *Pool) run(ctx context.Context, id string) {
	defer p.wg.Done()

	tasks := p.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-tasks:
			if !ok {
				return
			}
			if p.stopOnError && p.failed.Load() {
				metrics.RecordWorkerTask("skipped", 0)
				continue
			}
			p.process(ctx, id, t)
		}
	}
}

func (p *Pool) process(ctx context.Context, id string, t queue.Task) {
	metrics.UpdateWorkerActiveCount(int(p.active.Add(1)))
	start := time.Now()
	err := execute(ctx, t)
	latency := float64(time.Since(start).Microseconds()) / 1000
	metrics.UpdateWorkerActiveCount(int(p.active.Add(-1)))

	if err == nil {
		metrics.RecordWorkerTask("success", latency)
		return
	}

	metrics.RecordWorkerTask("error", latency)
	metrics.RecordErrorByComponent("worker", "task_error")
	p.logger.Error(ctx, "task failed",
		logger.String("worker", id),
		logger.String("task", t.Name),
		logger.Error(err),
	)
	p.failed.Store(true)
	p.mu.Lock()
	p.errs = append(p.errs, fmt.Errorf("%s: %w", t.Name, err))
	p.mu.Unlock()
}

func execute(ctx context.Context, t queue.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
	}()
	if t.Run == nil {
		return nil
	}
	return t.Run(ctx)
}

// Run executes tasks on a pool of size workers and returns once all of them
// have finished. Errors from every task are joined.
func Run(ctx context.Context, size int, tasks []queue.Task, opts ...Option) error {
	return RunBounded(ctx, size, len(tasks), tasks, opts...)
}

// RunBounded is Run with at most capacity tasks waiting in the queue.
// Submission blocks while the queue is full.
func RunBounded(ctx context.Context, size, capacity int, tasks []queue.Task, opts ...Option) error {
	if len(tasks) == 0 {
		return nil
	}
	if capacity < 1 || capacity > len(tasks) {
		capacity = len(tasks)
	}
	q := queue.NewInMemoryQueue(queue.WithCapacity(capacity))
	p := NewPool(size, q, opts...)
	if err := p.Start(ctx); err != nil {
		return err
	}

	var submitErr error
	for _, t := range tasks {
		if err := q.Submit(ctx, t); err != nil {
			submitErr = err
			break
		}
	}
	_ = q.Close()
	return errors.Join(submitErr, p.Wait())
}
