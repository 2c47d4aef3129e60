/*
Package threadpool provides a fixed-size pool of background workers for
fire-and-forget or optionally awaited units of work.

A Manager owns at most one live pool. Initialize starts a fixed number of
worker goroutines; Submit appends an instruction to an unbounded FIFO
queue and wakes one idle worker; Destroy stops every worker after its
current instruction returns.

Basic usage:

	m := threadpool.NewManager(threadpool.Config{Name: "cache"})
	if err := m.Initialize(4); err != nil {
		log.Fatal(err)
	}
	defer m.Destroy()

	done := threadpool.NewCompletion()
	err := m.Submit(func(arg any) error {
		return evict(arg.(string))
	}, "bucket/key", done)
	if err != nil {
		log.Printf("submit failed: %v", err)
	}

	_ = done.Wait(ctx)

Instructions:

An instruction pairs a WorkFunc with an opaque argument and an optional
Completion. Work runs exactly once on a worker goroutine. A returned error
or a recovered panic is logged and counted, never retried and never
returned to the submitter. The Completion is signalled after the work
returns, whatever the outcome; it says "finished", not "succeeded".

Shutdown:

Destroy raises the exit flag, wakes every worker once and joins them all.
Work already running is never interrupted. Instructions that are still
queued when the exit flag is raised are discarded: they do not run and
their Completion is never signalled. Callers that need every submission to
run must wait on their completions before calling Destroy, and should wait
with a deadline when they may race with it.

Re-initialization:

Calling Initialize on a live Manager tears the old pool down first, with
the same discard rule, and starts a fresh one. A thread count below one is
rejected with a *errors.ValidationError and leaves the Manager untouched.

Errors:

	errors.ErrNotInitialized   no pool is live
	errors.ErrClosed           the pool was stopping when the submission arrived
	*errors.ValidationError    bad thread count or nil work

Observability:

Every log line carries the pool name; worker and instruction attributes
are added where they apply. When Config.Metrics is set the pool records
thread, queue and active gauges, submission and execution counters, and
queue wait and execution duration histograms. Stats returns the same
counters without Prometheus.

Initialize and Destroy wait for every worker to stop, so they must not be
called from inside a WorkFunc running on the same Manager.
*/
package threadpool
