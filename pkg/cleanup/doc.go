// Package cleanup provides Redis cache eviction work for a thread pool.
//
// An Evictor's methods have the threadpool.WorkFunc signature, so
// eviction is queued like any other instruction and runs off the
// request path:
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	ev, err := cleanup.New(cleanup.Config{Redis: rdb, Prefix: "cache:"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	pool.Submit(ev.EvictKeys, []string{"user:1", "user:2"}, nil)
//	pool.Submit(ev.EvictPattern, "session:*", nil)
//	pool.Submit(ev.Invalidate, cleanup.Invalidation{Key: "user:1", Version: "v7"}, nil)
//
// EvictKeys and EvictPattern use UNLINK, batched through a pipeline;
// EvictPattern walks the keyspace with SCAN. Invalidate runs a Lua script
// that deletes the entry only while it still holds the given version.
//
// Every call is bounded by Config.Timeout. Failures are returned as
// *errors.OperationError; a wrong argument type wraps
// errors.ErrInvalidArgument.
package cleanup
