package prometheus

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/centromed/pkg/metrics"
)

func TestDisabledReturnsNil(t *testing.T) {
	metrics.Disable()

	assert.Nil(t, NewFanOutMetrics())
	assert.Nil(t, NewMutationMetrics())
	assert.Nil(t, NewHTTPMetrics())
}

func TestFanOutMetrics(t *testing.T) {
	metrics.InitRegistry()
	t.Cleanup(metrics.Disable)

	m, ok := NewFanOutMetrics().(*fanOutMetrics)
	require.True(t, ok)

	m.RecordShardQuery("pacientes", "central", time.Millisecond, nil)
	m.RecordShardQuery("pacientes", "guayaquil", time.Millisecond, errors.New("refused"))
	m.RecordShardQuery("pacientes", "cuenca", time.Second, fmt.Errorf("query: %w", context.DeadlineExceeded))
	m.RecordFanOut("pacientes", 3, 2, time.Second)
	m.RecordFanOut("pacientes", 3, 3, time.Second)
	m.RecordFanOut("pacientes", 3, 0, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.shardQueries.WithLabelValues("pacientes", "central", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.shardQueries.WithLabelValues("pacientes", "guayaquil", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.shardQueries.WithLabelValues("pacientes", "cuenca", "timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fanOuts.WithLabelValues("pacientes", "partial")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fanOuts.WithLabelValues("pacientes", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fanOuts.WithLabelValues("pacientes", "complete")))
}

func TestMutationMetrics(t *testing.T) {
	metrics.InitRegistry()
	t.Cleanup(metrics.Disable)

	m, ok := NewMutationMetrics().(*mutationMetrics)
	require.True(t, ok)

	m.RecordMutation("consultas", "create", "", "missing_selector", time.Millisecond)
	m.RecordMutation("consultas", "create", "guayaquil", "ok", time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("consultas", "create", "none", "missing_selector")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("consultas", "create", "guayaquil", "ok")))
}

func TestNilReceiversAreNoOps(t *testing.T) {
	var f *fanOutMetrics
	var m *mutationMetrics
	var h *httpMetrics

	assert.NotPanics(t, func() {
		f.RecordShardQuery("x", "y", 0, nil)
		f.RecordFanOut("x", 1, 0, 0)
		m.RecordMutation("x", "y", "z", "ok", 0)
		h.RecordRequest("GET", "/", 200, 0)
	})
}
