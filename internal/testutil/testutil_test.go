package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLatch(t *testing.T) {
	l := NewLatch()

	select {
	case <-l.Done():
		t.Fatal("latch open before Release")
	default:
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.Wait()
	}()

	l.Release()
	wg.Wait()
	WaitClosed(t, l.Done(), "latch")
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(t)
	defer cancel()

	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(TestTimeout), deadline, time.Second)
}

func TestLogBuffer(t *testing.T) {
	logger, buf := NewLogger()
	logger.Debug("first", "k", 1)
	logger.Warn("second")
	logger.Warn("second again")

	assert.True(t, buf.Contains("first"))
	assert.Equal(t, 2, buf.Count("second"))
	assert.False(t, buf.Contains("third"))
}
