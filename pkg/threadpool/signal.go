package threadpool

import "sync"

// dispatchSignal is a counting wait/notify primitive. Its count tracks
// instructions enqueued but not yet claimed, plus the wake-ups posted at
// shutdown. Workers treat a wake as a hint and re-check the queue.
type dispatchSignal struct {
	mu    sync.Mutex
	cond  *sync.Cond
	count int
}

func newDispatchSignal() *dispatchSignal {
	s := &dispatchSignal{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// post raises the count by one and wakes a single waiter.
func (s *dispatchSignal) post() {
	s.mu.Lock()
	s.count++
	s.mu.Unlock()
	s.cond.Signal()
}

// wait blocks until the count is positive, then consumes one unit.
func (s *dispatchSignal) wait() {
	s.mu.Lock()
	for s.count == 0 {
		s.cond.Wait()
	}
	s.count--
	s.mu.Unlock()
}

// tryWait consumes one unit if available without blocking.
func (s *dispatchSignal) tryWait() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count == 0 {
		return false
	}
	s.count--
	return true
}

// drain resets the count to zero and returns how many units were discarded.
func (s *dispatchSignal) drain() int {
	n := 0
	for s.tryWait() {
		n++
	}
	return n
}

func (s *dispatchSignal) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}
