package scheduler

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/robfig/cron/v3"

	pmerrors "github.com/vnykmshr/poolman/pkg/common/errors"
	"github.com/vnykmshr/poolman/pkg/common/validation"
	"github.com/vnykmshr/poolman/pkg/metrics"
	"github.com/vnykmshr/poolman/pkg/threadpool"
)

const (
	// DefaultTickInterval is how often due jobs are checked when Config.TickInterval is unset.
	DefaultTickInterval = 50 * time.Millisecond

	// DefaultMaxJobs bounds the number of registered jobs when Config.MaxJobs is unset.
	DefaultMaxJobs = 10000

	maxIDLength = 255
)

// Submitter accepts instructions for background execution.
// *threadpool.Manager satisfies it.
type Submitter interface {
	Submit(work threadpool.WorkFunc, arg any, done *threadpool.Completion) error
}

// Job describes a registered job.
type Job struct {
	ID       string
	RunAt    time.Time
	Interval time.Duration // zero for one-shot and cron jobs
	Cron     string        // empty unless scheduled with ScheduleCron
	Created  time.Time
	Runs     int64
}

// Config holds scheduler configuration.
type Config struct {
	// Name labels logs and metrics.
	Name string

	// Pool receives every due job. Required.
	Pool Submitter

	// Logger receives diagnostics. Nil means slog.Default().
	Logger *slog.Logger

	// Metrics records submissions and refusals. Nil disables recording.
	Metrics *metrics.Registry

	// Clock drives the tick loop. Nil means the real clock.
	Clock quartz.Clock

	// Location is used to evaluate cron expressions. Nil means time.Local.
	Location *time.Location

	// TickInterval is how often due jobs are checked.
	TickInterval time.Duration

	// MaxJobs bounds the number of registered jobs.
	MaxJobs int
}

type scheduledJob struct {
	id           string
	work         threadpool.WorkFunc
	arg          any
	runAt        time.Time
	interval     time.Duration
	cronExpr     string
	cronSchedule cron.Schedule
	created      time.Time
	runs         int64
}

// Scheduler submits registered jobs to a pool when they fall due.
// Jobs run on the pool's workers, never on the scheduler goroutine, so a
// slow job delays only itself.
type Scheduler struct {
	name         string
	pool         Submitter
	logger       *slog.Logger
	metrics      *metrics.Registry
	clock        quartz.Clock
	location     *time.Location
	tickInterval time.Duration
	maxJobs      int
	cronParser   cron.Parser

	mu      sync.RWMutex
	jobs    map[string]*scheduledJob
	ticker  *quartz.Ticker
	done    chan struct{}
	stopped chan struct{}
	running bool
}

// New creates a scheduler. It returns a validation error when cfg.Pool is nil.
func New(cfg Config) (*Scheduler, error) {
	if err := validation.ValidateNotNil("scheduler", "pool", cfg.Pool); err != nil {
		return nil, err
	}

	name := cfg.Name
	if name == "" {
		name = "default"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}
	location := cfg.Location
	if location == nil {
		location = time.Local
	}
	tickInterval := cfg.TickInterval
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}
	maxJobs := cfg.MaxJobs
	if maxJobs <= 0 {
		maxJobs = DefaultMaxJobs
	}

	return &Scheduler{
		name:         name,
		pool:         cfg.Pool,
		logger:       logger.With("scheduler", name),
		metrics:      cfg.Metrics,
		clock:        clock,
		location:     location,
		tickInterval: tickInterval,
		maxJobs:      maxJobs,
		cronParser: cron.NewParser(
			cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
		),
		jobs: make(map[string]*scheduledJob),
	}, nil
}

// Schedule registers a one-shot job due at runAt.
func (s *Scheduler) Schedule(id string, work threadpool.WorkFunc, arg any, runAt time.Time) error {
	if err := validateJob(id, work); err != nil {
		return err
	}
	if runAt.IsZero() {
		return pmerrors.NewValidationError("scheduler", "runAt", runAt, "must not be zero")
	}
	return s.add(&scheduledJob{id: id, work: work, arg: arg, runAt: runAt})
}

// ScheduleAfter registers a one-shot job due after delay.
func (s *Scheduler) ScheduleAfter(id string, work threadpool.WorkFunc, arg any, delay time.Duration) error {
	return s.Schedule(id, work, arg, s.clock.Now().Add(delay))
}

// ScheduleRepeating registers a job submitted every interval, first at the next tick.
func (s *Scheduler) ScheduleRepeating(id string, work threadpool.WorkFunc, arg any, interval time.Duration) error {
	if err := validateJob(id, work); err != nil {
		return err
	}
	if interval <= 0 {
		return pmerrors.NewValidationError("scheduler", "interval", interval, "must be positive")
	}
	return s.add(&scheduledJob{id: id, work: work, arg: arg, runAt: s.clock.Now(), interval: interval})
}

// ScheduleCron registers a job driven by a cron expression. Both five-field
// and six-field (leading seconds) expressions are accepted, as are
// descriptors such as "@hourly" and "@every 10m".
func (s *Scheduler) ScheduleCron(id string, expr string, work threadpool.WorkFunc, arg any) error {
	if err := validateJob(id, work); err != nil {
		return err
	}
	if err := validation.ValidateNotEmpty("scheduler", "cron", expr); err != nil {
		return err
	}
	schedule, err := s.cronParser.Parse(expr)
	if err != nil {
		return pmerrors.NewValidationError("scheduler", "cron", expr, err.Error())
	}
	return s.add(&scheduledJob{
		id:           id,
		work:         work,
		arg:          arg,
		runAt:        schedule.Next(s.clock.Now().In(s.location)),
		cronExpr:     expr,
		cronSchedule: schedule,
	})
}

func validateJob(id string, work threadpool.WorkFunc) error {
	if err := validation.ValidateNotEmpty("scheduler", "id", id); err != nil {
		return err
	}
	if err := validation.ValidateMaxLength("scheduler", "id", id, maxIDLength); err != nil {
		return err
	}
	return validation.ValidateNotNil("scheduler", "work", work)
}

func (s *Scheduler) add(job *scheduledJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.id]; exists {
		return fmt.Errorf("job %q already exists, cancel it first: %w", job.id, pmerrors.ErrInvalidArgument)
	}
	if len(s.jobs) >= s.maxJobs {
		return fmt.Errorf("cannot schedule job %q: maximum number of jobs (%d) reached: %w",
			job.id, s.maxJobs, pmerrors.ErrInvalidArgument)
	}

	job.created = s.clock.Now()
	s.jobs[job.id] = job
	s.logger.Debug("job scheduled", "job", job.id, "run_at", job.runAt)
	return nil
}

// Cancel removes a job, reporting whether it existed. An instruction
// already submitted for it still runs.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; exists {
		delete(s.jobs, id)
		return true
	}
	return false
}

// CancelAll removes every job.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = make(map[string]*scheduledJob)
}

// List returns the registered jobs ordered by next run time.
func (s *Scheduler) List() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, Job{
			ID:       j.id,
			RunAt:    j.runAt,
			Interval: j.interval,
			Cron:     j.cronExpr,
			Created:  j.created,
			Runs:     j.runs,
		})
	}

	sort.Slice(jobs, func(i, k int) bool {
		if jobs[i].RunAt.Equal(jobs[k].RunAt) {
			return jobs[i].ID < jobs[k].ID
		}
		return jobs[i].RunAt.Before(jobs[k].RunAt)
	})
	return jobs
}

// Start begins checking for due jobs every tick interval.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running, call Stop first: %w", pmerrors.ErrInvalidArgument)
	}

	s.running = true
	s.done = make(chan struct{})
	s.stopped = make(chan struct{})
	s.ticker = s.clock.NewTicker(s.tickInterval, "scheduler", "tick")

	go s.run(s.ticker, s.done, s.stopped)
	s.logger.Info("scheduler started", "tick", s.tickInterval)
	return nil
}

// Stop halts the tick loop and waits for it to exit. Instructions already
// submitted keep running on the pool. Stop on a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.done)
	stopped := s.stopped
	s.mu.Unlock()

	<-stopped
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) run(ticker *quartz.Ticker, done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.submitDue()
		}
	}
}

// submitDue hands every due job to the pool and reschedules the repeating ones.
func (s *Scheduler) submitDue() {
	now := s.clock.Now()

	s.mu.Lock()
	due := make([]*scheduledJob, 0)
	for id, job := range s.jobs {
		if job.runAt.After(now) {
			continue
		}
		job.runs++
		due = append(due, job)

		switch {
		case job.interval > 0:
			job.runAt = now.Add(job.interval)
		case job.cronSchedule != nil:
			job.runAt = job.cronSchedule.Next(now.In(s.location))
		default:
			delete(s.jobs, id)
		}
	}
	s.mu.Unlock()

	for _, job := range due {
		s.submit(job)
	}
}

func (s *Scheduler) submit(job *scheduledJob) {
	err := s.pool.Submit(job.work, job.arg, nil)
	if err != nil {
		s.logger.Warn("pool refused scheduled job", "job", job.id, "error", err)
		if s.metrics != nil {
			s.metrics.SchedulerFailures.WithLabelValues(s.name).Inc()
		}
		return
	}
	s.logger.Debug("scheduled job submitted", "job", job.id)
	if s.metrics != nil {
		s.metrics.SchedulerSubmissions.WithLabelValues(s.name).Inc()
	}
}
