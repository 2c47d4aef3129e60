package scheduler_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/vnykmshr/poolman/pkg/scheduling/scheduler"
	"github.com/vnykmshr/poolman/pkg/threadpool"
)

// Example demonstrates a one-shot job running on a thread pool.
func Example() {
	pool := threadpool.NewManager(threadpool.Config{Name: "example"})
	if err := pool.Initialize(2); err != nil {
		log.Fatal(err)
	}
	defer pool.Destroy()

	s, err := scheduler.New(scheduler.Config{
		Pool:         pool,
		TickInterval: 10 * time.Millisecond,
	})
	if err != nil {
		log.Fatal(err)
	}
	if err := s.Start(); err != nil {
		log.Fatal(err)
	}
	defer s.Stop()

	ran := make(chan struct{})
	err = s.ScheduleAfter("greet", func(arg any) error {
		fmt.Println("hello,", arg)
		close(ran)
		return nil
	}, "scheduler", 20*time.Millisecond)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	select {
	case <-ran:
	case <-ctx.Done():
		log.Fatal("job did not run")
	}

	// Output: hello, scheduler
}

// Example_list shows how registered jobs are reported.
func Example_list() {
	pool := threadpool.NewManager(threadpool.Config{})
	s, err := scheduler.New(scheduler.Config{Pool: pool})
	if err != nil {
		log.Fatal(err)
	}

	noop := func(any) error { return nil }
	_ = s.ScheduleCron("nightly", "0 3 * * *", noop, nil)
	_ = s.ScheduleRepeating("sweep", noop, nil, time.Minute)

	for _, job := range s.List() {
		fmt.Printf("%s interval=%v cron=%q\n", job.ID, job.Interval, job.Cron)
	}

	// Output:
	// sweep interval=1m0s cron=""
	// nightly interval=0s cron="0 3 * * *"
}
