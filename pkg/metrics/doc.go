// Package metrics provides Prometheus instrumentation for poolman components.
//
// # Overview
//
// The registry covers:
//   - Thread pools (threads, active workers, queued instructions)
//   - Instructions (submitted, rejected, executed, failed, dropped at shutdown,
//     execution time and queue wait)
//   - Schedulers (jobs submitted and refused)
//   - Cleanup evictors (keys unlinked)
//
// # Quick Start
//
// Pass a registry to the components that should record:
//
//	reg := metrics.NewRegistry(prometheus.NewRegistry())
//	mgr := threadpool.NewManager(threadpool.Config{Name: "cache", Metrics: reg})
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation, or Config.Build to honour
// an Enabled flag from a configuration file:
//
//	reg := metrics.Config{
//		Enabled:   true,
//		Registry:  prometheus.NewRegistry(),
//		Namespace: "storage",
//	}.Build()
//
// A nil *Registry disables recording in every component.
package metrics
