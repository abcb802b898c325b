package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrEntity       = "centromed.entity"
	AttrShard        = "centromed.shard"
	AttrShardCount   = "centromed.shard_count"
	AttrShardsFailed = "centromed.shards_failed"
	AttrRows         = "centromed.rows"
	AttrGlobalID     = "centromed.global_id"
	AttrLocalID      = "centromed.local_id"
	AttrOperation    = "centromed.operation"
	AttrUsername     = "enduser.id"
)

// StartFanOut starts the parent span of a multi-shard read.
func StartFanOut(ctx context.Context, label string, shards int) (context.Context, trace.Span) {
	return StartSpan(ctx, "fanout."+label,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.Int(AttrShardCount, shards)),
	)
}

// StartShardQuery starts the span of one shard's leg of a fan-out.
func StartShardQuery(ctx context.Context, shard string) (context.Context, trace.Span) {
	return StartSpan(ctx, "shard.query",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String(AttrShard, shard)),
	)
}

// StartMutation starts the span of a write routed to a single shard.
func StartMutation(ctx context.Context, entity, op, shard string) (context.Context, trace.Span) {
	return StartSpan(ctx, "mutation."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(AttrEntity, entity),
			attribute.String(AttrOperation, op),
			attribute.String(AttrShard, shard),
		),
	)
}
