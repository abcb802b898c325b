package handlers

import (
	"net/http"

	"github.com/marmos91/centromed/pkg/hospital/reports"
)

// ReportsHandler serves the cross-centro reports.
type ReportsHandler struct {
	reports *reports.Reports
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(rep *reports.Reports) *ReportsHandler {
	return &ReportsHandler{reports: rep}
}

// Consultas handles GET /api/v1/reports/consultas?desde&hasta.
func (h *ReportsHandler) Consultas(w http.ResponseWriter, r *http.Request) {
	r = withEntity(r, "reports.consultas")
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}
	desde, hasta, ok := dateRange(w, r)
	if !ok {
		return
	}

	page, err := h.reports.Consultas(r.Context(), caller, selector(r), desde, hasta)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	setMeta(w, page.Meta)
	WriteJSONOK(w, page)
}

// Resumen handles GET /api/v1/reports/resumen.
func (h *ReportsHandler) Resumen(w http.ResponseWriter, r *http.Request) {
	r = withEntity(r, "reports.resumen")
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}

	res, err := h.reports.Resumen(r.Context(), caller, selector(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSONOK(w, res)
}
