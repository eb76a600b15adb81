// Package executor runs external matchmaker handlers (persistence
// write-through) off the façade's
// critical path: QueueTeam/DequeueTeam/InsertResult dispatch built-in
// handlers synchronously under the façade mutex, but a handler that only
// observes an event (it never mutates queue/games state) can be queued
// here instead and run by an auto-scaling background worker pool backed
// by an in-process channel, since these jobs don't need to survive a
// restart.
package executor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/duoqueue/matchmaker/internal/config"
	"github.com/duoqueue/matchmaker/pkg/logger"
	"github.com/duoqueue/matchmaker/pkg/metrics"
	"go.uber.org/zap"
)

// Job is one unit of asynchronous work: a handler invocation detached
// from the event that produced it. Label identifies the job in logs and
// metrics (typically the handler kind plus tag).
type Job struct {
	Label string
	Run   func(ctx context.Context) error
}

// Pool is an auto-scaling pool of goroutines draining an in-process job
// queue.
type Pool struct {
	config config.WorkerConfig
	jobs   chan Job
	log    *logger.Logger
	metric *metrics.Metrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	activeWorkers atomic.Int32
	totalWorkers  atomic.Int32
	processed     atomic.Int64
	failed        atomic.Int64
}

// NewPool builds a pool backed by a buffered channel of size
// cfg.QueueSize.
func NewPool(cfg config.WorkerConfig, log *logger.Logger, m *metrics.Metrics) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		config: cfg,
		jobs:   make(chan Job, cfg.QueueSize),
		log:    log,
		metric: m,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start spawns the configured minimum number of workers and the
// auto-scaler.
func (p *Pool) Start() {
	p.log.Info("Starting executor pool",
		zap.Int("min_workers", p.config.MinWorkers),
		zap.Int("max_workers", p.config.MaxWorkers),
	)
	for i := 0; i < p.config.MinWorkers; i++ {
		p.spawnWorker()
	}
	go p.autoScaler()
}

// Stop cancels outstanding work and waits for in-flight jobs to return.
func (p *Pool) Stop() {
	p.log.Info("Stopping executor pool...")
	p.cancel()
	p.wg.Wait()
	p.log.Info("Executor pool stopped",
		zap.Int64("processed", p.processed.Load()),
		zap.Int64("failed", p.failed.Load()),
	)
}

// Submit enqueues a job. It blocks if the queue is full, exerting
// backpressure on the caller rather than dropping work silently.
func (p *Pool) Submit(job Job) {
	select {
	case p.jobs <- job:
	case <-p.ctx.Done():
	}
}

func (p *Pool) spawnWorker() {
	p.totalWorkers.Add(1)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.totalWorkers.Add(-1)
		for {
			select {
			case <-p.ctx.Done():
				return
			case job := <-p.jobs:
				p.run(job)
			}
		}
	}()
}

func (p *Pool) run(job Job) {
	p.activeWorkers.Add(1)
	defer p.activeWorkers.Add(-1)

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= p.config.RetryAttempts; attempt++ {
		if attempt > 1 {
			time.Sleep(p.config.RetryDelay * time.Duration(attempt))
		}
		ctx, cancel := context.WithTimeout(p.ctx, p.config.Timeout)
		lastErr = job.Run(ctx)
		cancel()
		if lastErr == nil {
			break
		}
		p.log.LogError("executor job attempt failed", lastErr,
			zap.String("job", job.Label),
			zap.Int("attempt", attempt),
		)
	}

	status := "completed"
	if lastErr != nil {
		status = "failed"
		p.failed.Add(1)
	} else {
		p.processed.Add(1)
	}
	p.metric.RecordMatchComplete(job.Label, status, time.Since(start))
}

func (p *Pool) autoScaler() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.scale()
		}
	}
}

func (p *Pool) scale() {
	queued := len(p.jobs)
	current := int(p.totalWorkers.Load())
	active := int(p.activeWorkers.Load())

	var target int
	switch {
	case queued > 100:
		target = current + 10
	case queued > 50:
		target = current + 5
	case queued < 10 && active < current/2:
		target = current - 5
	default:
		p.metric.SetWorkerPoolSize(current)
		p.metric.SetActiveWorkers(active)
		return
	}
	if target < p.config.MinWorkers {
		target = p.config.MinWorkers
	}
	if target > p.config.MaxWorkers {
		target = p.config.MaxWorkers
	}
	if target > current {
		for i := 0; i < target-current; i++ {
			p.spawnWorker()
		}
	}
	p.metric.SetWorkerPoolSize(int(p.totalWorkers.Load()))
	p.metric.SetActiveWorkers(active)
}

// Stats reports the pool's current counters.
type Stats struct {
	TotalWorkers  int
	ActiveWorkers int
	Processed     int64
	Failed        int64
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool) Stats() Stats {
	return Stats{
		TotalWorkers:  int(p.totalWorkers.Load()),
		ActiveWorkers: int(p.activeWorkers.Load()),
		Processed:     p.processed.Load(),
		Failed:        p.failed.Load(),
	}
}
