package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	pmerrors "github.com/vnykmshr/poolman/pkg/common/errors"
	"github.com/vnykmshr/poolman/pkg/common/validation"
	"github.com/vnykmshr/poolman/pkg/metrics"
)

const (
	// DefaultTimeout bounds one eviction when Config.Timeout is unset.
	DefaultTimeout = 5 * time.Second

	// DefaultScanCount is the COUNT hint of each SCAN call.
	DefaultScanCount = 100

	// DefaultBatchSize is how many keys one UNLINK carries.
	DefaultBatchSize = 500
)

// Config holds configuration for an Evictor.
type Config struct {
	// Name labels logs and metrics.
	Name string

	// Redis is the cache the evictor deletes from. Required.
	Redis redis.UniversalClient

	// Prefix is prepended to every key and pattern the evictor receives.
	Prefix string

	// Logger receives diagnostics. Nil means slog.Default().
	Logger *slog.Logger

	// Metrics counts evicted keys. Nil disables recording.
	Metrics *metrics.Registry

	// Timeout bounds each eviction, including every SCAN page.
	Timeout time.Duration

	// ScanCount is the COUNT hint passed to SCAN.
	ScanCount int64

	// BatchSize is the maximum number of keys per UNLINK.
	BatchSize int
}

// Invalidation removes Key only while it still holds Version.
type Invalidation struct {
	Key     string
	Version string
}

// Evictor deletes cache entries from Redis. Its methods are
// threadpool.WorkFunc values: submit them with the keys, pattern or
// Invalidation as the argument.
type Evictor struct {
	name      string
	rdb       redis.UniversalClient
	prefix    string
	logger    *slog.Logger
	metrics   *metrics.Registry
	timeout   time.Duration
	scanCount int64
	batchSize int

	invalidateScript *redis.Script

	evicted atomic.Int64
}

// New creates an Evictor. It returns a validation error when cfg.Redis is nil.
func New(cfg Config) (*Evictor, error) {
	if err := validation.ValidateNotNil("cleanup", "redis", cfg.Redis); err != nil {
		return nil, err
	}

	name := cfg.Name
	if name == "" {
		name = "default"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	scanCount := cfg.ScanCount
	if scanCount <= 0 {
		scanCount = DefaultScanCount
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &Evictor{
		name:             name,
		rdb:              cfg.Redis,
		prefix:           cfg.Prefix,
		logger:           logger.With("evictor", name),
		metrics:          cfg.Metrics,
		timeout:          timeout,
		scanCount:        scanCount,
		batchSize:        batchSize,
		invalidateScript: redis.NewScript(luaInvalidate),
	}, nil
}

// EvictKeys unlinks the keys given as arg, a string or a []string.
func (e *Evictor) EvictKeys(arg any) error {
	var keys []string
	switch v := arg.(type) {
	case string:
		keys = []string{v}
	case []string:
		keys = v
	default:
		return e.badArgument("EvictKeys", arg)
	}
	if len(keys) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = e.prefix + k
	}

	n, err := e.unlink(ctx, full)
	e.record(n)
	if err != nil {
		return pmerrors.NewOperationError("cleanup", "EvictKeys", err).
			WithContext(fmt.Sprintf("%d keys", len(keys)))
	}
	e.logger.Debug("keys evicted", "requested", len(keys), "evicted", n)
	return nil
}

// EvictPattern unlinks every key matching the glob pattern given as arg.
// Matching keys are found with SCAN, so the evictor never blocks Redis
// the way KEYS would.
func (e *Evictor) EvictPattern(arg any) error {
	pattern, ok := arg.(string)
	if !ok {
		return e.badArgument("EvictPattern", arg)
	}
	if err := validation.ValidateNotEmpty("cleanup", "pattern", pattern); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	var (
		cursor uint64
		total  int64
	)
	for {
		keys, next, err := e.rdb.Scan(ctx, cursor, e.prefix+pattern, e.scanCount).Result()
		if err != nil {
			e.record(total)
			return pmerrors.NewOperationError("cleanup", "EvictPattern", err).WithContext(pattern)
		}
		n, err := e.unlink(ctx, keys)
		total += n
		if err != nil {
			e.record(total)
			return pmerrors.NewOperationError("cleanup", "EvictPattern", err).WithContext(pattern)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	e.record(total)
	e.logger.Debug("pattern evicted", "pattern", pattern, "evicted", total)
	return nil
}

// Invalidate removes an entry only if it still holds the expected version,
// so a stale invalidation never deletes a newer value. arg is an
// Invalidation or *Invalidation.
func (e *Evictor) Invalidate(arg any) error {
	var inv Invalidation
	switch v := arg.(type) {
	case Invalidation:
		inv = v
	case *Invalidation:
		if v == nil {
			return e.badArgument("Invalidate", arg)
		}
		inv = *v
	default:
		return e.badArgument("Invalidate", arg)
	}
	if err := validation.ValidateNotEmpty("cleanup", "key", inv.Key); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	n, err := e.invalidateScript.Run(ctx, e.rdb, []string{e.prefix + inv.Key}, inv.Version).Int64()
	if err != nil {
		return pmerrors.NewOperationError("cleanup", "Invalidate", err).WithContext(inv.Key)
	}
	e.record(n)
	if n == 0 {
		e.logger.Debug("entry changed since invalidation was queued, kept", "key", inv.Key)
	}
	return nil
}

// Evicted returns how many keys this evictor has removed.
func (e *Evictor) Evicted() int64 {
	return e.evicted.Load()
}

// unlink removes keys in batches of at most batchSize through one pipeline.
func (e *Evictor) unlink(ctx context.Context, keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	pipe := e.rdb.Pipeline()
	cmds := make([]*redis.IntCmd, 0, len(keys)/e.batchSize+1)
	for start := 0; start < len(keys); start += e.batchSize {
		end := start + e.batchSize
		if end > len(keys) {
			end = len(keys)
		}
		cmds = append(cmds, pipe.Unlink(ctx, keys[start:end]...))
	}

	_, err := pipe.Exec(ctx)

	var n int64
	for _, cmd := range cmds {
		n += cmd.Val()
	}
	return n, err
}

func (e *Evictor) record(n int64) {
	if n == 0 {
		return
	}
	e.evicted.Add(n)
	if e.metrics != nil {
		e.metrics.CleanupKeysEvicted.WithLabelValues(e.name).Add(float64(n))
	}
}

func (e *Evictor) badArgument(op string, arg any) error {
	return pmerrors.NewOperationError("cleanup", op,
		fmt.Errorf("unexpected argument type %T: %w", arg, pmerrors.ErrInvalidArgument))
}

// luaInvalidate deletes KEYS[1] when its value equals ARGV[1].
const luaInvalidate = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('UNLINK', KEYS[1])
end
return 0
`
