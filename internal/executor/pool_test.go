package executor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/duoqueue/matchmaker/internal/config"
	"github.com/duoqueue/matchmaker/pkg/logger"
	"github.com/duoqueue/matchmaker/pkg/metrics"
	"github.com/stretchr/testify/assert"
)

var (
	sharedMetrics     *metrics.Metrics
	sharedMetricsOnce sync.Once
)

func testMetrics() *metrics.Metrics {
	sharedMetricsOnce.Do(func() {
		sharedMetrics = metrics.New()
	})
	return sharedMetrics
}

func testLogger() *logger.Logger {
	log, _ := logger.New("error", "json")
	return log
}

func testConfig() config.WorkerConfig {
	return config.WorkerConfig{
		MinWorkers:    2,
		MaxWorkers:    10,
		QueueSize:     16,
		Timeout:       time.Second,
		RetryAttempts: 3,
		RetryDelay:    10 * time.Millisecond,
	}
}

func TestNewPool(t *testing.T) {
	pool := NewPool(testConfig(), testLogger(), testMetrics())
	assert.NotNil(t, pool)
}

func TestPool_StartStopRunsJob(t *testing.T) {
	pool := NewPool(testConfig(), testLogger(), testMetrics())
	pool.Start()

	var ran atomic.Bool
	done := make(chan struct{})
	pool.Submit(Job{
		Label: "test-job",
		Run: func(ctx context.Context) error {
			ran.Store(true)
			close(done)
			return nil
		},
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not run in time")
	}
	pool.Stop()

	assert.True(t, ran.Load())
	stats := pool.Stats()
	assert.Equal(t, int64(1), stats.Processed)
	assert.Equal(t, int64(0), stats.Failed)
}

func TestPool_RetriesOnFailure(t *testing.T) {
	pool := NewPool(testConfig(), testLogger(), testMetrics())
	pool.Start()

	var attempts atomic.Int32
	done := make(chan struct{})
	pool.Submit(Job{
		Label: "flaky-job",
		Run: func(ctx context.Context) error {
			n := attempts.Add(1)
			if n < 2 {
				return errors.New("transient failure")
			}
			close(done)
			return nil
		},
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not succeed after retry")
	}
	pool.Stop()

	assert.GreaterOrEqual(t, attempts.Load(), int32(2))
}

func TestPool_StopWaitsForInFlightJob(t *testing.T) {
	pool := NewPool(testConfig(), testLogger(), testMetrics())
	pool.Start()

	started := make(chan struct{})
	var finished atomic.Bool
	pool.Submit(Job{
		Label: "slow-job",
		Run: func(ctx context.Context) error {
			close(started)
			time.Sleep(50 * time.Millisecond)
			finished.Store(true)
			return nil
		},
	})

	<-started
	pool.Stop()
	assert.True(t, finished.Load())
}
