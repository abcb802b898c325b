package handlers

import (
	"net/http"
	"time"

	"github.com/marmos91/centromed/pkg/shard"
)

// HealthCheckTimeout bounds each shard ping of the health endpoints.
const HealthCheckTimeout = 5 * time.Second

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	registry  *shard.Registry
	startTime time.Time
}

// NewHealthHandler creates a new health handler. registry may be nil, in
// which case readiness fails.
func NewHealthHandler(registry *shard.Registry) *HealthHandler {
	return &HealthHandler{registry: registry, startTime: time.Now()}
}

// Liveness handles GET /health. It succeeds while the process serves HTTP.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startTime)
	writeJSON(w, http.StatusOK, healthyResponse(map[string]any{
		"service":    "centromed",
		"started_at": h.startTime.UTC().Format(time.RFC3339),
		"uptime":     uptime.Round(time.Second).String(),
		"uptime_sec": int64(uptime.Seconds()),
	}))
}

// Readiness handles GET /health/ready. The server is ready when at least
// one centro answers, since reads degrade per shard.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.registry == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("shard registry not initialized"))
		return
	}

	healthy := 0
	for _, s := range h.registry.Ping(r.Context(), HealthCheckTimeout) {
		if s.Healthy {
			healthy++
		}
	}
	data := map[string]any{"shards": h.registry.Len(), "healthy": healthy}
	if healthy == 0 {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponseWithData(data))
		return
	}
	writeJSON(w, http.StatusOK, healthyResponse(data))
}

// ShardHealth is one line of GET /health/shards.
type ShardHealth struct {
	Key      string `json:"key"`
	CentroID int64  `json:"centro_id"`
	Nombre   string `json:"nombre"`
	Driver   string `json:"driver,omitempty"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Latency  string `json:"latency"`
}

// Shards handles GET /health/shards. It returns 503 when any centro is
// unreachable.
func (h *HealthHandler) Shards(w http.ResponseWriter, r *http.Request) {
	if h.registry == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("shard registry not initialized"))
		return
	}

	results := h.registry.Ping(r.Context(), HealthCheckTimeout)
	out := make([]ShardHealth, len(results))
	allHealthy := true
	for i, res := range results {
		out[i] = ShardHealth{
			Key:      res.Key,
			CentroID: res.CentroID,
			Nombre:   res.Nombre,
			Driver:   string(res.Driver),
			Status:   "healthy",
			Error:    res.Error,
			Latency:  res.Latency.String(),
		}
		if !res.Healthy {
			out[i].Status = "unhealthy"
			allHealthy = false
		}
	}

	if allHealthy {
		writeJSON(w, http.StatusOK, healthyResponse(out))
	} else {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponseWithData(out))
	}
}
