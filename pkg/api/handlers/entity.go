package handlers

import (
	"net/http"
	"strconv"

	"github.com/marmos91/centromed/pkg/hospital/service"
)

// EntityHandler serves the CRUD routes of one entity. Identifiers in paths
// and bodies are global ids; the X-Centro-Id header selects the centro.
type EntityHandler[T service.Entity, P service.EntityPtr[T]] struct {
	svc *service.Service[T, P]
}

// NewEntityHandler creates the handler for svc.
func NewEntityHandler[T service.Entity, P service.EntityPtr[T]](svc *service.Service[T, P]) *EntityHandler[T, P] {
	return &EntityHandler[T, P]{svc: svc}
}

// List handles GET /api/v1/{entity}.
func (h *EntityHandler[T, P]) List(w http.ResponseWriter, r *http.Request) {
	r = withEntity(r, h.svc.Name())
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}
	desde, hasta, ok := dateRange(w, r)
	if !ok {
		return
	}

	f := service.Filter{Q: r.URL.Query().Get("q"), Desde: desde, Hasta: hasta}
	page, err := h.svc.List(r.Context(), caller, selector(r), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	setMeta(w, page.Meta)
	WriteJSONOK(w, page)
}

// Get handles GET /api/v1/{entity}/{id}.
func (h *EntityHandler[T, P]) Get(w http.ResponseWriter, r *http.Request) {
	r = withEntity(r, h.svc.Name())
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}
	gid, ok := globalIDParam(w, r)
	if !ok {
		return
	}

	item, err := h.svc.Get(r.Context(), caller, selector(r), gid)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	setMeta(w, item.Meta)
	WriteJSONOK(w, item)
}

// Create handles POST /api/v1/{entity}. An id_centro in the body is
// ignored; the record goes to the centro the header and caller resolve to.
func (h *EntityHandler[T, P]) Create(w http.ResponseWriter, r *http.Request) {
	r = withEntity(r, h.svc.Name())
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}
	e := new(T)
	if !decodeJSONBody(w, r, e) {
		return
	}

	item, err := h.svc.Create(r.Context(), caller, selector(r), e)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	setMeta(w, item.Meta)
	if item.Data.GlobalID > 0 {
		w.Header().Set("Location", r.URL.Path+"/"+strconv.FormatInt(item.Data.GlobalID, 10))
	}
	WriteJSONCreated(w, item)
}

// Update handles PUT /api/v1/{entity}/{id}.
func (h *EntityHandler[T, P]) Update(w http.ResponseWriter, r *http.Request) {
	r = withEntity(r, h.svc.Name())
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}
	gid, ok := globalIDParam(w, r)
	if !ok {
		return
	}
	e := new(T)
	if !decodeJSONBody(w, r, e) {
		return
	}

	item, err := h.svc.Update(r.Context(), caller, selector(r), gid, r.Header.Get(HeaderMappingToken), e)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	setMeta(w, item.Meta)
	WriteJSONOK(w, item)
}

// Delete handles DELETE /api/v1/{entity}/{id}.
func (h *EntityHandler[T, P]) Delete(w http.ResponseWriter, r *http.Request) {
	r = withEntity(r, h.svc.Name())
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}
	gid, ok := globalIDParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), caller, selector(r), gid, r.Header.Get(HeaderMappingToken)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteNoContent(w)
}

func setMeta(w http.ResponseWriter, m service.Meta) {
	if m.MappingToken != "" {
		w.Header().Set(HeaderMappingToken, m.MappingToken)
	}
}
