// Package metrics defines the observability hooks of the shard layer.
//
// Every interface is optional: components accept nil and skip recording.
// Prometheus-backed implementations live in the prometheus subpackage and
// return nil until InitRegistry has been called.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// FanOutMetrics observes multi-shard reads.
type FanOutMetrics interface {
	// RecordShardQuery records one shard's leg of a fan-out. err is nil on success.
	RecordShardQuery(label, shard string, duration time.Duration, err error)

	// RecordFanOut records a completed fan-out and how many shards failed.
	RecordFanOut(label string, shards, failed int, duration time.Duration)
}

// MutationMetrics observes writes routed to a single shard.
type MutationMetrics interface {
	// RecordMutation records a create/update/delete and its outcome
	// ("ok" or an error class such as "stale_id").
	RecordMutation(entity, op, shard, outcome string, duration time.Duration)
}

// HTTPMetrics observes API requests.
type HTTPMetrics interface {
	RecordRequest(method, route string, status int, duration time.Duration)
}

var (
	mu       sync.RWMutex
	registry *prometheus.Registry
)

// InitRegistry creates the process registry with Go runtime and process
// collectors. Calling it again replaces the registry.
func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	mu.Lock()
	registry = reg
	mu.Unlock()
	return reg
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return registry != nil
}

// GetRegistry returns the process registry, or nil when metrics are disabled.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}

// Disable drops the registry. Collectors created afterwards are nil.
func Disable() {
	mu.Lock()
	registry = nil
	mu.Unlock()
}
