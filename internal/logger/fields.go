package logger

import (
	"log/slog"
	"time"
)

// Standard field keys for structured logging. Use these consistently so
// log lines can be aggregated and queried across the fan-out paths.
const (
	// Tracing
	KeyTraceID   = "trace_id"
	KeySpanID    = "span_id"
	KeyRequestID = "request_id"

	// HTTP
	KeyMethod     = "method"
	KeyPath       = "path"
	KeyStatus     = "status"
	KeyBytes      = "bytes"
	KeyClientIP   = "client_ip"
	KeyUserAgent  = "user_agent"
	KeyDurationMs = "duration_ms"

	// Caller
	KeyUsername = "username"
	KeyRole     = "role"
	KeyPinned   = "pinned_shard"

	// Sharding
	KeyShard     = "shard"
	KeyCentroID  = "centro_id"
	KeyShards    = "shards"
	KeyFailed    = "failed_shards"
	KeyRows      = "rows"
	KeyGlobalID  = "global_id"
	KeyLocalID   = "local_id"
	KeySelector  = "selector"
	KeyDriver    = "driver"
	KeyMapping   = "mapping_token"
	KeyOperation = "operation"

	// Domain
	KeyEntity = "entity"

	KeyError = "error"
)

// Shard returns a slog.Attr for a shard key.
func Shard(key string) slog.Attr {
	return slog.String(KeyShard, key)
}

// Entity returns a slog.Attr for an entity name.
func Entity(name string) slog.Attr {
	return slog.String(KeyEntity, name)
}

// GlobalID returns a slog.Attr for a view-scoped global identifier.
func GlobalID(id int64) slog.Attr {
	return slog.Int64(KeyGlobalID, id)
}

// LocalID returns a slog.Attr for a shard-local primary key.
func LocalID(id int64) slog.Attr {
	return slog.Int64(KeyLocalID, id)
}

// Rows returns a slog.Attr for a row count.
func Rows(n int) slog.Attr {
	return slog.Int(KeyRows, n)
}

// Elapsed returns a slog.Attr with the milliseconds elapsed since start.
func Elapsed(start time.Time) slog.Attr {
	return slog.Float64(KeyDurationMs, Duration(start))
}

// Err returns a slog.Attr for an error. A nil error yields an empty attr,
// which handlers skip.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
