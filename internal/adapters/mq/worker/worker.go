// Package worker runs jobs from a queue on a fixed set of goroutines.
package worker

import (
	"context"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/okian/coachboard/pkg/logger"
	"github.com/okian/coachboard/pkg/metrics"
)

// Job is one unit of work with its position in the input.
type Job[T any] struct {
	Seq     int
	Payload T
}

// Result is the outcome of a Job.
type Result[R any] struct {
	Seq   int
	Value R
	Err   error
}

// Handler processes one payload.
type Handler[T, R any] func(ctx context.Context, payload T) (R, error)

// Source is where workers read jobs from.
type Source[T any] interface {
	Dequeue() <-chan Job[T]
}

// Pool runs a Handler on a fixed number of workers.
type Pool[T, R any] struct {
	size    int
	handler Handler[T, R]
	name    string
	logger  logger.Logger
}

// NewPool creates a worker pool. A size below 1 uses runtime.NumCPU().
func NewPool[T, R any](size int, handler Handler[T, R], opts ...Option) *Pool[T, R] {
	c := config{name: "worker-pool", logger: logger.Nop()}
	for _, opt := range opts {
		opt(&c)
	}
	if size < 1 {
		size = runtime.NumCPU()
	}
	return &Pool[T, R]{size: size, handler: handler, name: c.name, logger: c.logger.Named(c.name)}
}

// Size returns the number of workers.
func (p *Pool[T, R]) Size() int { return p.size }

// Run starts the workers and returns the channel results are delivered on.
// The channel is closed once src is drained or ctx is done. Results arrive
// in completion order.
func (p *Pool[T, R]) Run(ctx context.Context, src Source[T]) <-chan Result[R] {
	out := make(chan Result[R], p.size)
	jobs := src.Dequeue()

	var wg sync.WaitGroup
	for i := 0; i < p.size; i++ {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			p.work(ctx, name, jobs, out)
		}(p.name + "-" + strconv.Itoa(i))
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

func (p *Pool[T, R]) work(ctx context.Context, name string, jobs <-chan Job[T], out chan<- Result[R]) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			res := p.process(ctx, name, job)
			select {
			case out <- res:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (p *Pool[T, R]) process(ctx context.Context, name string, job Job[T]) Result[R] {
	start := time.Now()
	v, err := p.handler(ctx, job.Payload)
	status := "ok"
	if err != nil {
		status = "error"
		metrics.RecordErrorByComponent("worker", "job_failed")
		p.logger.Debug(ctx, "job failed",
			logger.String("worker", name),
			logger.Int("seq", job.Seq),
			logger.Error(err),
		)
	}
	metrics.RecordJob(p.name, status, time.Since(start))
	return Result[R]{Seq: job.Seq, Value: v, Err: err}
}

// Collect drains results and returns them ordered by Seq.
func Collect[R any](results <-chan Result[R]) []Result[R] {
	var all []Result[R]
	for r := range results {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Seq < all[j].Seq })
	return all
}
