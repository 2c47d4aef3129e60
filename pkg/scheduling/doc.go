/*
Package scheduling groups the components that decide when pool work runs.

  - scheduler: one-shot, interval and cron jobs submitted to a threadpool.Manager

The worker pool itself lives in package threadpool.
*/
package scheduling
