package apiclient

import (
	"encoding/json"
	"net/http"
)

// Centro is one configured centro.
type Centro struct {
	Key      string `json:"key"`
	CentroID int64  `json:"centro_id"`
	Nombre   string `json:"nombre"`
	Driver   string `json:"driver"`
}

// ListCentros returns the centros the caller can address.
func (c *Client) ListCentros() ([]Centro, error) {
	resp, err := getResource[struct {
		Data []Centro `json:"data"`
	}](c, "/api/v1/centros")
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Counts are the row counts of one centro.
type Counts struct {
	Pacientes           int64 `json:"pacientes"`
	Medicos             int64 `json:"medicos"`
	Empleados           int64 `json:"empleados"`
	Consultas           int64 `json:"consultas"`
	ConsultasPendientes int64 `json:"consultas_pendientes"`
}

// CentroResumen is one centro's line of the summary.
type CentroResumen struct {
	ShardKey  string  `json:"shard_key"`
	CentroID  int64   `json:"centro_id"`
	Nombre    string  `json:"centro_nombre"`
	Status    string  `json:"status"`
	Error     string  `json:"error,omitempty"`
	LatencyMs float64 `json:"latency_ms"`
	Counts    *Counts `json:"counts,omitempty"`
}

// Resumen is the per-centro summary.
type Resumen struct {
	Centros []CentroResumen `json:"centros"`
	Totals  Counts          `json:"totals"`
	Meta    Meta            `json:"meta"`
}

// Resumen returns the per-centro counts.
func (c *Client) Resumen() (*Resumen, error) {
	return getResource[Resumen](c, "/api/v1/reports/resumen")
}

// ConsultasReport returns consultas joined with paciente, medico and
// especialidad names. desde and hasta take YYYY-MM-DD or RFC3339.
func (c *Client) ConsultasReport(desde, hasta string) (*Page, error) {
	return getResource[Page](c, withQuery("/api/v1/reports/consultas", map[string]string{
		"desde": desde,
		"hasta": hasta,
	}))
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

// ShardsHealth pings every centro. It needs no token and still returns the
// per-shard lines when some are unhealthy.
func (c *Client) ShardsHealth() ([]ShardHealth, error) {
	var resp struct {
		Data []ShardHealth `json:"data"`
	}
	err := c.get("/health/shards", &resp)
	if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == http.StatusServiceUnavailable {
		if json.Unmarshal(apiErr.body, &resp) == nil && len(resp.Data) > 0 {
			return resp.Data, nil
		}
	}
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ServerHealth is the liveness payload of GET /health.
type ServerHealth struct {
	Service   string `json:"service"`
	StartedAt string `json:"started_at"`
	Uptime    string `json:"uptime"`
	UptimeSec int64  `json:"uptime_sec"`
}

// Health checks that the server answers HTTP. It needs no token.
func (c *Client) Health() (*ServerHealth, error) {
	var resp struct {
		Status string       `json:"status"`
		Data   ServerHealth `json:"data"`
	}
	if err := c.get("/health", &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}
