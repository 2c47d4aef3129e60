package threadpool

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	pmerrors "github.com/vnykmshr/poolman/pkg/common/errors"
	"github.com/vnykmshr/poolman/pkg/metrics"
)

// counters accumulate over every pool instance created by one Manager.
type counters struct {
	submitted atomic.Int64
	rejected  atomic.Int64
	executed  atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// pool is one live instance: a fixed worker set draining one queue.
// A Manager creates a new pool on every Initialize and never reuses one
// after stop.
type pool struct {
	name    string
	logger  *slog.Logger
	metrics *metrics.Registry
	clock   quartz.Clock
	stats   *counters

	// mu guards queue and workers, and linearizes submissions with exit.
	mu      sync.Mutex
	queue   *instructionQueue
	workers []*worker
	exit    atomic.Bool

	signal *dispatchSignal
}

func newPool(name string, logger *slog.Logger, reg *metrics.Registry, clock quartz.Clock, stats *counters) *pool {
	return &pool{
		name:    name,
		logger:  logger,
		metrics: reg,
		clock:   clock,
		stats:   stats,
		queue:   newInstructionQueue(),
		signal:  newDispatchSignal(),
	}
}

// start launches count worker goroutines.
func (p *pool) start(count int) {
	p.exit.Store(false)

	workers := make([]*worker, count)
	for i := range workers {
		workers[i] = newWorker(i, p)
	}

	p.mu.Lock()
	p.workers = workers
	p.mu.Unlock()

	for _, w := range workers {
		go w.run()
	}

	if p.metrics != nil {
		p.metrics.PoolThreads.WithLabelValues(p.name).Set(float64(count))
		p.metrics.PoolQueued.WithLabelValues(p.name).Set(0)
		p.metrics.PoolActive.WithLabelValues(p.name).Set(0)
	}
	p.logger.Info("thread pool started", "threads", count)
}

// stop runs the shutdown fence: raise the exit flag, wake every worker once,
// join them all, then reset the signal. In-flight work always completes;
// instructions still queued are discarded without signalling completion.
func (p *pool) stop() {
	p.mu.Lock()
	workers := p.workers
	if len(workers) == 0 {
		p.mu.Unlock()
		p.logger.Info("no threads are running, nothing to stop")
		return
	}
	p.exit.Store(true)
	p.mu.Unlock()

	for range workers {
		p.signal.post()
	}

	for _, w := range workers {
		<-w.stopped
		p.logger.Debug("joined worker", "worker", w.id)
	}

	p.mu.Lock()
	p.workers = nil
	dropped := p.queue.clear()
	p.mu.Unlock()

	p.signal.drain()

	if dropped > 0 {
		p.stats.dropped.Add(int64(dropped))
		p.logger.Warn("discarded queued instructions at shutdown; their completions will not be signalled",
			"dropped", dropped)
	}

	if p.metrics != nil {
		p.metrics.PoolThreads.WithLabelValues(p.name).Set(0)
		p.metrics.PoolQueued.WithLabelValues(p.name).Set(0)
		p.metrics.PoolActive.WithLabelValues(p.name).Set(0)
		if dropped > 0 {
			p.metrics.InstructionsDropped.WithLabelValues(p.name).Add(float64(dropped))
		}
	}
	p.logger.Info("thread pool stopped", "threads", len(workers))
}

func (p *pool) exiting() bool {
	return p.exit.Load()
}

// push appends ins to the queue and posts the dispatch signal.
func (p *pool) push(ins Instruction) error {
	p.mu.Lock()
	if p.exit.Load() {
		p.mu.Unlock()
		return pmerrors.ErrClosed
	}
	ins.submitted = p.clock.Now()
	p.queue.pushBack(ins)
	p.setQueuedLocked()
	p.mu.Unlock()

	p.signal.post()

	p.stats.submitted.Add(1)
	if p.metrics != nil {
		p.metrics.InstructionsSubmitted.WithLabelValues(p.name).Inc()
	}
	return nil
}

// claim pops the head of the queue, reporting false when it is empty.
func (p *pool) claim() (Instruction, bool) {
	p.mu.Lock()
	if p.queue.len() == 0 {
		p.mu.Unlock()
		return Instruction{}, false
	}
	ins := p.queue.popFront()
	p.setQueuedLocked()
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.PoolActive.WithLabelValues(p.name).Inc()
	}
	return ins, true
}

// setQueuedLocked publishes the queue length. p.mu must be held so that
// concurrent pushes and claims publish in queue order.
func (p *pool) setQueuedLocked() {
	if p.metrics != nil {
		p.metrics.PoolQueued.WithLabelValues(p.name).Set(float64(p.queue.len()))
	}
}

func (p *pool) observeQueueWait(d time.Duration) {
	if p.metrics != nil {
		p.metrics.QueueWaitDuration.WithLabelValues(p.name).Observe(d.Seconds())
	}
}

func (p *pool) recordExecution(d time.Duration, err error) {
	p.stats.executed.Add(1)
	if err != nil {
		p.stats.failed.Add(1)
	}
	if p.metrics == nil {
		return
	}
	p.metrics.PoolActive.WithLabelValues(p.name).Dec()
	p.metrics.InstructionDuration.WithLabelValues(p.name).Observe(d.Seconds())
	p.metrics.InstructionsExecuted.WithLabelValues(p.name).Inc()
	if err != nil {
		p.metrics.InstructionsFailed.WithLabelValues(p.name).Inc()
	}
}

func (p *pool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

func (p *pool) queueLength() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.len()
}

func (p *pool) activeWorkers() int {
	p.mu.Lock()
	workers := p.workers
	p.mu.Unlock()

	active := 0
	for _, w := range workers {
		if w.State() == StateExecuting {
			active++
		}
	}
	return active
}
