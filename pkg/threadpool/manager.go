package threadpool

import (
	"log/slog"
	"sync"

	"github.com/coder/quartz"
	"github.com/oklog/ulid/v2"
	pmerrors "github.com/vnykmshr/poolman/pkg/common/errors"
	"github.com/vnykmshr/poolman/pkg/common/validation"
	"github.com/vnykmshr/poolman/pkg/metrics"
)

// DefaultName labels logs and metrics of a Manager created without a name.
const DefaultName = "default"

// Config holds configuration options for a Manager.
type Config struct {
	// Name labels every log line and metric of the managed pools.
	Name string

	// Logger receives diagnostics. Nil means slog.Default().
	Logger *slog.Logger

	// Metrics records pool and instruction metrics. Nil disables recording.
	Metrics *metrics.Registry

	// Clock timestamps submissions and measures execution time.
	// Nil means the real clock.
	Clock quartz.Clock
}

// Stats is a point-in-time view of a Manager. Counters accumulate across
// every pool the Manager has initialized.
type Stats struct {
	Name      string
	Running   bool
	Threads   int
	Queued    int
	Active    int
	Submitted int64
	Rejected  int64
	Executed  int64
	Failed    int64
	Dropped   int64
}

// Manager owns at most one live pool of fixed-size workers.
//
// Initialize and Destroy are serialized against each other and swap the
// live pool under a lock that Submit also takes, so a submission observes
// either the old pool, the new one, or none. Initialize and Destroy must
// not be called from inside a WorkFunc running on the same Manager: they
// wait for every worker, including the caller, to stop.
type Manager struct {
	name    string
	logger  *slog.Logger
	metrics *metrics.Registry
	clock   quartz.Clock
	stats   counters

	// lifecycle serializes Initialize and Destroy.
	lifecycle sync.Mutex

	// mu guards live.
	mu   sync.RWMutex
	live *pool
}

// NewManager creates a Manager with no live pool.
func NewManager(cfg Config) *Manager {
	name := cfg.Name
	if name == "" {
		name = DefaultName
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Manager{
		name:    name,
		logger:  logger.With("pool", name),
		metrics: cfg.Metrics,
		clock:   clock,
	}
}

// Initialize starts a pool with threadCount workers. A pool that is already
// live is torn down first; its queued instructions are discarded, never
// carried into the new pool. A threadCount below 1 is rejected with a
// *errors.ValidationError before anything is torn down.
func (m *Manager) Initialize(threadCount int) error {
	if err := validation.ValidatePositive("threadpool", "threads", threadCount); err != nil {
		m.logger.Error("refusing to create thread pool", "threads", threadCount, "error", err)
		return err
	}

	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	if old := m.swap(nil); old != nil {
		m.logger.Warn("thread pool already exists, re-creating it")
		old.stop()
	}

	p := newPool(m.name, m.logger, m.metrics, m.clock, &m.stats)
	p.start(threadCount)
	m.swap(p)
	return nil
}

// Destroy stops the live pool, if any, and waits for in-flight work to
// finish. Calling it with no live pool is a no-op.
func (m *Manager) Destroy() {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	if old := m.swap(nil); old != nil {
		old.stop()
	}
}

// Submit enqueues work(arg) for execution on the live pool. done, if
// non-nil, is signalled once the work returns. Submit never waits for the
// work to run.
//
// It returns errors.ErrNotInitialized when no pool is live and
// errors.ErrClosed when the pool it found was being torn down.
func (m *Manager) Submit(work WorkFunc, arg any, done *Completion) error {
	return m.Instruct(Instruction{Work: work, Arg: arg, Done: done})
}

// Instruct enqueues a prepared Instruction. See Submit.
func (m *Manager) Instruct(ins Instruction) error {
	if err := validation.ValidateNotNil("threadpool", "work", ins.Work); err != nil {
		return err
	}

	m.mu.RLock()
	p := m.live
	m.mu.RUnlock()

	if p == nil {
		m.reject()
		m.logger.Warn("thread pool is not initialized yet")
		return pmerrors.ErrNotInitialized
	}

	if ins.ID == (ulid.ULID{}) {
		ins.ID = ulid.Make()
	}
	if err := p.push(ins); err != nil {
		m.reject()
		m.logger.Warn("thread pool is shutting down, instruction rejected", "instruction", ins.ID.String())
		return err
	}
	return nil
}

// Running reports whether a pool is live.
func (m *Manager) Running() bool {
	return m.current() != nil
}

// Size returns the number of workers in the live pool, or 0.
func (m *Manager) Size() int {
	if p := m.current(); p != nil {
		return p.size()
	}
	return 0
}

// QueueLength returns the number of instructions waiting for a worker.
func (m *Manager) QueueLength() int {
	if p := m.current(); p != nil {
		return p.queueLength()
	}
	return 0
}

// Stats returns a snapshot of the Manager.
func (m *Manager) Stats() Stats {
	s := Stats{
		Name:      m.name,
		Submitted: m.stats.submitted.Load(),
		Rejected:  m.stats.rejected.Load(),
		Executed:  m.stats.executed.Load(),
		Failed:    m.stats.failed.Load(),
		Dropped:   m.stats.dropped.Load(),
	}
	if p := m.current(); p != nil {
		s.Running = true
		s.Threads = p.size()
		s.Queued = p.queueLength()
		s.Active = p.activeWorkers()
	}
	return s
}

func (m *Manager) current() *pool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.live
}

func (m *Manager) swap(p *pool) *pool {
	m.mu.Lock()
	defer m.mu.Unlock()
	old := m.live
	m.live = p
	return old
}

func (m *Manager) reject() {
	m.stats.rejected.Add(1)
	if m.metrics != nil {
		m.metrics.InstructionsRejected.WithLabelValues(m.name).Inc()
	}
}
