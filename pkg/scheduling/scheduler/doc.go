// Package scheduler submits jobs to a thread pool on a timetable.
//
// A Scheduler keeps a set of jobs and checks them on every tick. A due job
// is handed to its Submitter, normally a *threadpool.Manager, as a
// WorkFunc and argument; the job itself runs on a pool worker. The
// scheduler never waits for a job and never retries one the pool refuses:
// a refusal is logged and counted, and repeating jobs simply try again at
// their next due time.
//
// Basic usage:
//
//	pool := threadpool.NewManager(threadpool.Config{Name: "cleanup"})
//	if err := pool.Initialize(4); err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Destroy()
//
//	s, err := scheduler.New(scheduler.Config{Pool: pool})
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := s.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer s.Stop()
//
//	s.ScheduleAfter("warmup", warm, nil, time.Second)
//	s.ScheduleRepeating("sweep", sweep, "tmp:*", time.Minute)
//	s.ScheduleCron("nightly", "0 3 * * *", compact, nil)
//
// Cron Expressions:
//
// ScheduleCron accepts the standard five fields, an optional leading
// seconds field, and descriptors:
//
//	"0/15 * * * *"      every 15 minutes
//	"30 0/5 * * * *"    second 30 of every fifth minute
//	"@hourly"           top of every hour
//	"@every 90s"        every 90 seconds
//
// Expressions are evaluated in Config.Location.
//
// Time:
//
// The tick loop and every due-time calculation read Config.Clock, so tests
// can drive the scheduler with a quartz mock clock. Jobs fire on the first
// tick at or after their due time; the tick interval is the scheduling
// resolution.
//
// Stop waits for the tick loop to exit. Instructions already submitted keep
// running on the pool; stop the pool separately.
package scheduler
