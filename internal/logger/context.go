package logger

import (
	"context"
	"time"
)

type contextKey struct{}

var logContextKey = contextKey{}

// LogContext holds request-scoped logging fields.
type LogContext struct {
	RequestID string    // chi request id
	TraceID   string    // OpenTelemetry trace ID
	SpanID    string    // OpenTelemetry span ID
	ClientIP  string    // Client IP address (without port)
	Username  string    // Authenticated caller
	Entity    string    // Resource being served (pacientes, medicos, ...)
	Shard     string    // Shard key once a request is routed to one shard
	StartTime time.Time // For duration calculation
}

// WithContext returns a new context carrying lc.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from ctx, or nil if not present.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a LogContext for a request from clientIP.
func NewLogContext(requestID, clientIP string) *LogContext {
	return &LogContext{
		RequestID: requestID,
		ClientIP:  clientIP,
		StartTime: time.Now(),
	}
}

// Clone copies the LogContext. A nil receiver yields nil.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	c := *lc
	return &c
}

// WithUser returns a copy with the authenticated username set.
func (lc *LogContext) WithUser(username string) *LogContext {
	c := lc.Clone()
	if c != nil {
		c.Username = username
	}
	return c
}

// WithEntity returns a copy with the entity set.
func (lc *LogContext) WithEntity(entity string) *LogContext {
	c := lc.Clone()
	if c != nil {
		c.Entity = entity
	}
	return c
}

// WithShard returns a copy with the shard key set.
func (lc *LogContext) WithShard(shard string) *LogContext {
	c := lc.Clone()
	if c != nil {
		c.Shard = shard
	}
	return c
}

// WithTrace returns a copy with trace info set.
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	c := lc.Clone()
	if c != nil {
		c.TraceID = traceID
		c.SpanID = spanID
	}
	return c
}

// DurationMs returns the duration since StartTime in milliseconds.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
