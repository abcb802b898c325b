// Package prometheus provides Prometheus-backed implementations of the
// metrics interfaces.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/centromed/pkg/metrics"
)

type fanOutMetrics struct {
	shardQueries  *prometheus.CounterVec
	shardDuration *prometheus.HistogramVec
	fanOuts       *prometheus.CounterVec
	fanOutLatency *prometheus.HistogramVec
}

// NewFanOutMetrics returns nil when metrics are disabled.
func NewFanOutMetrics() metrics.FanOutMetrics {
	reg := metrics.GetRegistry()
	if reg == nil {
		return nil
	}

	return &fanOutMetrics{
		shardQueries: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "centromed_shard_queries_total",
				Help: "Shard queries issued by fan-outs, by shard and outcome",
			},
			[]string{"query", "shard", "outcome"}, // outcome: ok, error, timeout
		),
		shardDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "centromed_shard_query_duration_seconds",
				Help:    "Latency of one shard's leg of a fan-out",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"query", "shard"},
		),
		fanOuts: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "centromed_fanouts_total",
				Help: "Completed fan-outs by result (complete, partial, failed)",
			},
			[]string{"query", "result"},
		),
		fanOutLatency: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "centromed_fanout_duration_seconds",
				Help:    "Latency of a fan-out across all shards in scope",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"query"},
		),
	}
}

func (m *fanOutMetrics) RecordShardQuery(label, shard string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.shardQueries.WithLabelValues(label, shard, outcome(err)).Inc()
	m.shardDuration.WithLabelValues(label, shard).Observe(d.Seconds())
}

func (m *fanOutMetrics) RecordFanOut(label string, shards, failed int, d time.Duration) {
	if m == nil {
		return
	}
	result := "complete"
	switch {
	case failed > 0 && failed == shards:
		result = "failed"
	case failed > 0:
		result = "partial"
	}
	m.fanOuts.WithLabelValues(label, result).Inc()
	m.fanOutLatency.WithLabelValues(label).Observe(d.Seconds())
}

type mutationMetrics struct {
	mutations *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewMutationMetrics returns nil when metrics are disabled.
func NewMutationMetrics() metrics.MutationMetrics {
	reg := metrics.GetRegistry()
	if reg == nil {
		return nil
	}

	return &mutationMetrics{
		mutations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "centromed_mutations_total",
				Help: "Writes routed to a single shard, by entity, operation and outcome",
			},
			[]string{"entity", "op", "shard", "outcome"},
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "centromed_mutation_duration_seconds",
				Help:    "Latency of routed writes including identifier resolution",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"entity", "op"},
		),
	}
}

func (m *mutationMetrics) RecordMutation(entity, op, shard, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	if shard == "" {
		shard = "none"
	}
	m.mutations.WithLabelValues(entity, op, shard, outcome).Inc()
	m.duration.WithLabelValues(entity, op).Observe(d.Seconds())
}
