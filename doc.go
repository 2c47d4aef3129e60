/*
Package poolman provides a fixed-size background thread pool for storage
clients, with the scheduling and cache-eviction work that runs on it.

Thread Pool (pkg/threadpool):
  - Manager: Initialize, Submit and Destroy a pool of fixed-size workers
  - Completion: optional signal that a submitted instruction has finished

Scheduling (pkg/scheduling):
  - scheduler: one-shot, interval and cron jobs submitted to a pool

Cleanup (pkg/cleanup):
  - Evictor: Redis key, pattern and versioned eviction as pool work

Supporting packages:
  - metrics: Prometheus gauges, counters and histograms
  - common/errors, common/validation: sentinels and validation errors

Example usage:

	import "github.com/vnykmshr/poolman/pkg/threadpool"

	m := threadpool.NewManager(threadpool.Config{Name: "cache"})
	if err := m.Initialize(4); err != nil {
		log.Fatal(err)
	}
	defer m.Destroy()

	m.Submit(evictor.EvictKeys, []string{"user:1"}, nil)
*/
package poolman
