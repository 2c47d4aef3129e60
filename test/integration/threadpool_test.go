// Package integration contains integration tests that verify cross-package functionality.
// These tests ensure that different components work together correctly in realistic scenarios.
package integration

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vnykmshr/poolman/internal/config"
	"github.com/vnykmshr/poolman/internal/logger"
	itestutil "github.com/vnykmshr/poolman/internal/testutil"
	pmerrors "github.com/vnykmshr/poolman/pkg/common/errors"
	"github.com/vnykmshr/poolman/pkg/metrics"
	"github.com/vnykmshr/poolman/pkg/scheduling/scheduler"
	"github.com/vnykmshr/poolman/pkg/threadpool"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// TestLifecycleSoak repeatedly initializes, loads and destroys one manager.
func TestLifecycleSoak(t *testing.T) {
	logger, _ := itestutil.NewLogger()
	m := threadpool.NewManager(threadpool.Config{Name: "soak", Logger: logger})

	var executed atomic.Int64
	for round := 0; round < 25; round++ {
		require.NoError(t, m.Initialize(1+round%4))

		completions := make([]*threadpool.Completion, 20)
		for i := range completions {
			completions[i] = threadpool.NewCompletion()
			require.NoError(t, m.Submit(func(any) error {
				executed.Add(1)
				return nil
			}, nil, completions[i]))
		}

		ctx, cancel := itestutil.WithTimeout(t)
		for _, c := range completions {
			require.NoError(t, c.Wait(ctx))
		}
		cancel()

		if round%2 == 0 {
			m.Destroy()
		}
	}
	m.Destroy()

	assert.Equal(t, int64(25*20), executed.Load())
	assert.Equal(t, int64(0), m.Stats().Dropped)
}

// TestReinitializeUnderLoad swaps pools while producers keep submitting.
// Every submission either runs exactly once, is dropped at a teardown, or
// is rejected with ErrNotInitialized or ErrClosed.
func TestReinitializeUnderLoad(t *testing.T) {
	logger, _ := itestutil.NewLogger()
	m := threadpool.NewManager(threadpool.Config{Name: "churn", Logger: logger})
	require.NoError(t, m.Initialize(2))

	var (
		accepted atomic.Int64
		rejected atomic.Int64
		executed atomic.Int64
		stop     = make(chan struct{})
		wg       sync.WaitGroup
	)

	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 5000; i++ {
				select {
				case <-stop:
					return
				default:
				}
				err := m.Submit(func(any) error {
					executed.Add(1)
					return nil
				}, nil, nil)
				switch {
				case err == nil:
					accepted.Add(1)
				case errors.Is(err, pmerrors.ErrNotInitialized), errors.Is(err, pmerrors.ErrClosed):
					rejected.Add(1)
				default:
					t.Errorf("unexpected submit error: %v", err)
					return
				}
			}
		}()
	}

	for i := 0; i < 20; i++ {
		require.NoError(t, m.Initialize(1+i%3))
		time.Sleep(time.Millisecond)
	}
	close(stop)
	wg.Wait()
	m.Destroy()

	stats := m.Stats()
	assert.Equal(t, accepted.Load(), stats.Submitted)
	assert.Equal(t, rejected.Load(), stats.Rejected)
	assert.Equal(t, executed.Load(), stats.Executed)
	assert.Equal(t, stats.Submitted, stats.Executed+stats.Dropped)
}

// TestConfiguredDaemonPipeline wires config, logging, metrics, the pool
// and the scheduler the way the scheduled_cleanup example does.
func TestConfiguredDaemonPipeline(t *testing.T) {
	cfg, err := config.Parse([]byte(`
name: integration
threads: 2
log:
  level: debug
  format: json
schedules:
  - id: sweep
    every: 1s
    pattern: "tmp:*"
`))
	require.NoError(t, err)

	var logs itestutil.LogBuffer
	log, err := logger.New(&logs, cfg.Log.Level, cfg.Log.Format)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	registry := metrics.Config{Enabled: true, Registry: reg}.Build()

	pool := threadpool.NewManager(threadpool.Config{Name: cfg.Name, Logger: log, Metrics: registry})
	require.NoError(t, pool.Initialize(cfg.Threads))
	defer pool.Destroy()

	mock := quartz.NewMock(t)
	sched, err := scheduler.New(scheduler.Config{
		Name:         cfg.Name,
		Pool:         pool,
		Logger:       log,
		Metrics:      registry,
		Clock:        mock,
		TickInterval: time.Second,
	})
	require.NoError(t, err)

	var (
		mu       sync.Mutex
		patterns []string
	)
	for _, entry := range cfg.Schedules {
		every, err := entry.Interval()
		require.NoError(t, err)
		require.NoError(t, sched.ScheduleRepeating(entry.ID, func(arg any) error {
			mu.Lock()
			defer mu.Unlock()
			patterns = append(patterns, arg.(string))
			return nil
		}, entry.Pattern, every))
	}

	require.NoError(t, sched.Start())
	defer sched.Stop()

	for i := 0; i < 3; i++ {
		ctx, cancel := itestutil.WithTimeout(t)
		mock.Advance(time.Second).MustWait(ctx)
		cancel()

		want := i + 1
		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(patterns) == want
		}, itestutil.TestTimeout, time.Millisecond)
	}

	assert.Equal(t, []string{"tmp:*", "tmp:*", "tmp:*"}, patterns)
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(registry.SchedulerSubmissions.WithLabelValues("integration")) == 3
	}, itestutil.TestTimeout, time.Millisecond)
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(registry.InstructionsExecuted.WithLabelValues("integration")) == 3
	}, itestutil.TestTimeout, time.Millisecond)
	assert.True(t, logs.Contains(`"pool":"integration"`))
}
