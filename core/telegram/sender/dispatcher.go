// Package sender delivers outbound Telegram messages, optionally through a
// bounded worker pool. Failed sends are logged and counted, never retried.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/proverbbot/core/logger"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

const defaultJobTimeout = 12 * time.Second

// Options controls the outbound dispatcher. Zero values pick defaults.
type Options struct {
	QueueSize int
	Workers   int
	// JobTimeout bounds a single send.
	JobTimeout time.Duration
}

type job struct {
	ctx    context.Context
	action string
	run    func(context.Context) error
}

// Dispatcher runs send jobs on a fixed pool of workers.
type Dispatcher struct {
	opts Options

	mu     sync.RWMutex
	closed bool
	jobs   chan job

	wg   sync.WaitGroup
	errs atomic.Uint64
}

// NewDispatcher starts the worker pool.
func NewDispatcher(opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = defaultJobTimeout
	}

	d := &Dispatcher{opts: opts, jobs: make(chan job, opts.QueueSize)}
	d.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go d.worker()
	}
	return d
}

// Enqueue schedules run without blocking. run is invoked at most once.
func (d *Dispatcher) Enqueue(ctx context.Context, action string, run func(context.Context) error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.jobs <- job{ctx: context.WithoutCancel(ctx), action: action, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending returns the number of queued jobs.
func (d *Dispatcher) Pending() int {
	return len(d.jobs)
}

// ErrorCount returns the number of jobs that ultimately failed.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// Close stops accepting jobs and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.jobs {
		if err := d.runJob(j); err != nil {
			d.errs.Add(1)
		}
	}
}

func (d *Dispatcher) runJob(j job) error {
	ctx, cancel := context.WithTimeout(j.ctx, d.opts.JobTimeout)
	defer cancel()

	start := time.Now()
	err := j.run(ctx)
	if err == nil {
		logger.Debug(j.ctx, logger.CompSender, "send.ok",
			slog.String("status", "ok"),
			slog.String("command", j.action),
			slog.Duration("duration", logger.Took(start)),
		)
		return nil
	}
	logger.Error(j.ctx, logger.CompSender, "send.fail",
		slog.String("status", "fail"),
		slog.String("command", j.action),
		slog.String("err", RedactToken(err.Error())),
		slog.String("err_code", Classify(err)),
		slog.Duration("duration", logger.Took(start)),
	)
	return err
}
