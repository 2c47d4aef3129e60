package threadpool

import (
	"errors"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
)

// WorkerState is the position of a worker in its consume-execute loop.
type WorkerState int32

const (
	// StateWaiting means the worker is blocked on the dispatch signal.
	StateWaiting WorkerState = iota
	// StateCheckExit means the worker woke and is checking the exit flag.
	StateCheckExit
	// StateDequeue means the worker is claiming the head of the queue.
	StateDequeue
	// StateExecuting means the worker is running an instruction's work.
	StateExecuting
	// StateSignalCompletion means the worker is signalling the instruction's completion.
	StateSignalCompletion
	// StateStopped means the worker loop has exited.
	StateStopped
)

// String returns the string representation of WorkerState
func (s WorkerState) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateCheckExit:
		return "check_exit"
	case StateDequeue:
		return "dequeue"
	case StateExecuting:
		return "executing"
	case StateSignalCompletion:
		return "signal_completion"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// worker is one goroutine draining the pool's instruction queue.
type worker struct {
	id      int
	pool    *pool
	logger  *slog.Logger
	state   atomic.Int32
	stopped chan struct{}
}

func newWorker(id int, p *pool) *worker {
	return &worker{
		id:      id,
		pool:    p,
		logger:  p.logger.With("worker", id),
		stopped: make(chan struct{}),
	}
}

func (w *worker) State() WorkerState {
	return WorkerState(w.state.Load())
}

func (w *worker) setState(s WorkerState) {
	w.state.Store(int32(s))
}

// run is the main loop for a worker.
func (w *worker) run() {
	defer close(w.stopped)
	defer w.setState(StateStopped)

	w.logger.Debug("worker started")

	for {
		w.setState(StateWaiting)
		w.pool.signal.wait()

		w.setState(StateCheckExit)
		if w.pool.exiting() {
			w.logger.Debug("worker exiting")
			return
		}

		w.setState(StateDequeue)
		ins, ok := w.pool.claim()
		if !ok {
			w.logger.Debug("woke on dispatch signal but the queue is empty")
			continue
		}

		w.setState(StateExecuting)
		w.execute(ins)

		w.setState(StateSignalCompletion)
		if ins.Done != nil {
			ins.Done.signal()
		}
	}
}

// execute runs the instruction's work and records the outcome.
func (w *worker) execute(ins Instruction) {
	start := w.pool.clock.Now()
	w.pool.observeQueueWait(start.Sub(ins.submitted))

	err := invoke(ins)

	w.pool.recordExecution(w.pool.clock.Since(start), err)

	if err == nil {
		return
	}
	var pe *PanicError
	if errors.As(err, &pe) {
		w.logger.Error("instruction work panicked",
			"instruction", ins.ID.String(),
			"panic", pe.Value,
			"stack", string(pe.Stack))
		return
	}
	w.logger.Warn("instruction work returned an error",
		"instruction", ins.ID.String(),
		"error", err)
}

// invoke calls the work function, converting a panic into a *PanicError.
func invoke(ins Instruction) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return ins.Work(ins.Arg)
}
