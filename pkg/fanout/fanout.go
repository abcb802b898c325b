package fanout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/marmos91/centromed/internal/logger"
	"github.com/marmos91/centromed/internal/telemetry"
	"github.com/marmos91/centromed/pkg/metrics"
	"github.com/marmos91/centromed/pkg/shard"
)

// DefaultTimeout bounds each shard's leg when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// Executor carries the settings shared by every fan-out.
type Executor struct {
	timeout time.Duration
	metrics metrics.FanOutMetrics
}

// NewExecutor creates an executor. A non-positive timeout selects
// DefaultTimeout; m may be nil.
func NewExecutor(timeout time.Duration, m metrics.FanOutMetrics) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{timeout: timeout, metrics: m}
}

// Timeout returns the per-shard timeout.
func (e *Executor) Timeout() time.Duration {
	if e == nil {
		return DefaultTimeout
	}
	return e.timeout
}

// QueryFunc reads rows from one shard. db is already bound to the shard
// leg's context.
type QueryFunc[T any] func(ctx context.Context, db *gorm.DB) ([]T, error)

// Part is one shard's contribution to a fan-out.
type Part[T any] struct {
	Shard    *shard.Shard
	Rows     []T
	Err      error
	Duration time.Duration
}

// Result holds every part of a fan-out in the order the shards were given.
type Result[T any] struct {
	Parts    []Part[T]
	Failures []*ShardQueryFailure
}

// Failed returns the number of shards that failed.
func (r *Result[T]) Failed() int {
	return len(r.Failures)
}

// Partial reports whether some, but not all, shards failed.
func (r *Result[T]) Partial() bool {
	return len(r.Failures) > 0 && len(r.Failures) < len(r.Parts)
}

// FailedKeys returns the keys of the failed shards in registry order.
func (r *Result[T]) FailedKeys() []string {
	keys := make([]string, len(r.Failures))
	for i, f := range r.Failures {
		keys[i] = f.ShardKey
	}
	return keys
}

// Len returns the total number of rows across all parts.
func (r *Result[T]) Len() int {
	n := 0
	for _, p := range r.Parts {
		n += len(p.Rows)
	}
	return n
}

// Query runs fn on every shard concurrently. The returned error is non-nil
// only when ctx was cancelled or every shard failed; the result is returned
// in both cases so callers can inspect the failures.
func Query[T any](ctx context.Context, e *Executor, label string, shards []*shard.Shard, fn QueryFunc[T]) (*Result[T], error) {
	start := time.Now()
	ctx, span := telemetry.StartFanOut(ctx, label, len(shards))
	defer span.End()

	res := &Result[T]{Parts: make([]Part[T], len(shards))}

	var wg sync.WaitGroup
	for i, s := range shards {
		wg.Add(1)
		go func(i int, s *shard.Shard) {
			defer wg.Done()
			res.Parts[i] = runShard(ctx, e, label, s, fn)
		}(i, s)
	}
	wg.Wait()

	for _, p := range res.Parts {
		if p.Err != nil {
			res.Failures = append(res.Failures, &ShardQueryFailure{ShardKey: p.Shard.Key, Err: p.Err})
		}
	}

	if e != nil && e.metrics != nil {
		e.metrics.RecordFanOut(label, len(shards), len(res.Failures), time.Since(start))
	}
	if len(res.Failures) > 0 {
		logger.DebugCtx(ctx, "Fan-out completed with shard failures",
			logger.KeyOperation, label,
			logger.KeyShards, len(shards),
			logger.KeyFailed, res.FailedKeys())
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	if len(shards) > 0 && len(res.Failures) == len(shards) {
		errs := make([]error, len(res.Failures))
		for i, f := range res.Failures {
			errs[i] = f
		}
		err := fmt.Errorf("%w: %w", ErrAllShardsFailed, errors.Join(errs...))
		telemetry.RecordError(ctx, err)
		return res, err
	}
	return res, nil
}

func runShard[T any](ctx context.Context, e *Executor, label string, s *shard.Shard, fn QueryFunc[T]) (part Part[T]) {
	part.Shard = s
	start := time.Now()

	ctx, span := telemetry.StartShardQuery(ctx, s.Key)
	defer span.End()

	qctx, cancel := context.WithTimeout(ctx, e.Timeout())
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			part.Rows = nil
			part.Err = fmt.Errorf("panic in shard query: %v", r)
		}
		part.Duration = time.Since(start)
		if part.Err != nil {
			telemetry.RecordError(ctx, part.Err)
			logger.WarnCtx(ctx, "Shard query failed",
				logger.KeyShard, s.Key,
				logger.KeyOperation, label,
				logger.KeyDurationMs, logger.Duration(start),
				logger.KeyError, part.Err.Error())
		}
		if e != nil && e.metrics != nil {
			e.metrics.RecordShardQuery(label, s.Key, part.Duration, part.Err)
		}
	}()

	rows, err := fn(qctx, s.DB().WithContext(qctx))
	if err == nil {
		err = qctx.Err()
	}
	if err != nil {
		return Part[T]{Shard: s, Err: err}
	}
	return Part[T]{Shard: s, Rows: rows}
}
