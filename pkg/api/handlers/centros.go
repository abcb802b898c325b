package handlers

import (
	"net/http"

	"github.com/marmos91/centromed/pkg/resolver"
)

// CentroResponse describes one configured centro.
type CentroResponse struct {
	Key      string `json:"key"`
	CentroID int64  `json:"centro_id"`
	Nombre   string `json:"nombre"`
	Driver   string `json:"driver"`
}

// CentrosHandler lists the centros a caller can address.
type CentrosHandler struct {
	resolver *resolver.Resolver
}

// NewCentrosHandler creates a new CentrosHandler.
func NewCentrosHandler(r *resolver.Resolver) *CentrosHandler {
	return &CentrosHandler{resolver: r}
}

// List handles GET /api/v1/centros. Pinned callers only see their own.
func (h *CentrosHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}
	view, err := h.resolver.View(caller)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]CentroResponse, len(view))
	for i, s := range view {
		out[i] = CentroResponse{
			Key:      s.Key,
			CentroID: s.CentroID,
			Nombre:   s.DisplayName(),
			Driver:   string(s.Driver),
		}
	}
	WriteJSONOK(w, map[string]any{"data": out})
}
