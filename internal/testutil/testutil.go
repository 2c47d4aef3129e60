// Package testutil holds helpers shared by the poolman test suites.
package testutil

import (
	"context"
	"testing"
	"time"
)

// TestTimeout is the default timeout for tests
const TestTimeout = 5 * time.Second

// WithTimeout creates a context with the default test timeout
func WithTimeout(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), TestTimeout)
}

// WaitClosed fails the test if ch is not closed within TestTimeout.
func WaitClosed(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(TestTimeout):
		t.Fatalf("timed out waiting for %s", what)
	}
}

// Latch is a one-shot gate used to hold work functions until the test
// releases them.
type Latch struct {
	ch chan struct{}
}

// NewLatch returns a closed-once gate.
func NewLatch() *Latch {
	return &Latch{ch: make(chan struct{})}
}

// Release opens the latch. It must be called at most once.
func (l *Latch) Release() {
	close(l.ch)
}

// Wait blocks until Release is called.
func (l *Latch) Wait() {
	<-l.ch
}

// Done returns a channel closed on Release.
func (l *Latch) Done() <-chan struct{} {
	return l.ch
}
