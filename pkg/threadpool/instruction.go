package threadpool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// WorkFunc is the unit of work carried by an Instruction.
// A non-nil error is logged by the executing worker and otherwise ignored;
// the work is responsible for publishing its own outcome.
type WorkFunc func(arg any) error

// Instruction describes one unit of work submitted to a pool.
type Instruction struct {
	// ID identifies the instruction in logs. A zero ID is replaced with a
	// fresh ULID on submission.
	ID ulid.ULID

	// Work is invoked exactly once with Arg on a worker goroutine.
	Work WorkFunc

	// Arg is handed to Work unchanged. The pool never copies or releases it.
	Arg any

	// Done, if non-nil, is signalled once after Work returns, whatever the
	// outcome. It is never signalled for an instruction discarded at shutdown.
	Done *Completion

	submitted time.Time
}

// Completion is a single-use signal that an Instruction has finished.
// It reports only that the work returned, not whether it succeeded.
// The zero value is ready to use.
type Completion struct {
	init sync.Once
	once sync.Once
	ch   chan struct{}
}

// NewCompletion returns a Completion that has not been signalled.
func NewCompletion() *Completion {
	c := &Completion{}
	c.channel()
	return c
}

func (c *Completion) channel() chan struct{} {
	c.init.Do(func() {
		c.ch = make(chan struct{})
	})
	return c.ch
}

// Done returns a channel that is closed once the instruction has finished.
func (c *Completion) Done() <-chan struct{} {
	return c.channel()
}

// Finished reports whether the instruction has finished.
func (c *Completion) Finished() bool {
	select {
	case <-c.channel():
		return true
	default:
		return false
	}
}

// Wait blocks until the instruction has finished or ctx is done.
// An instruction discarded at shutdown never finishes, so callers that
// may race with Destroy should wait with a deadline.
func (c *Completion) Wait(ctx context.Context) error {
	select {
	case <-c.channel():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Completion) signal() {
	c.once.Do(func() {
		close(c.channel())
	})
}

// PanicError is reported for work that panicked instead of returning.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("work panicked: %v", e.Value)
}
