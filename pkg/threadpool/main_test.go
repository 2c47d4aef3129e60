package threadpool

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain enables goroutine leak detection for all tests in this package.
// Every pool a test starts must be stopped before the test returns.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
