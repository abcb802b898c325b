package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/centromed/internal/logger"
	"github.com/marmos91/centromed/pkg/api/middleware"
	"github.com/marmos91/centromed/pkg/resolver"
)

// Request headers.
const (
	HeaderCentro       = "X-Centro-Id"
	HeaderMappingToken = "X-Mapping-Token"
)

// decodeJSONBody decodes a JSON request body into v. It returns false after
// writing a 413 when the body exceeds the router's size limit, or a 400 when
// it is not valid JSON.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteProblem(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large",
				fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		BadRequest(w, "Invalid request body")
		return false
	}
	return true
}

// callerOrUnauthorized returns the caller set by JWTAuth.
func callerOrUnauthorized(w http.ResponseWriter, r *http.Request) (resolver.Caller, bool) {
	c, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		Unauthorized(w, "Authentication required")
	}
	return c, ok
}

// selector returns the X-Centro-Id header.
func selector(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(HeaderCentro))
}

// globalIDParam parses the {id} URL parameter.
func globalIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		BadRequest(w, fmt.Sprintf("Invalid identifier %q", raw))
		return 0, false
	}
	return id, true
}

// parseDate accepts RFC3339 timestamps and YYYY-MM-DD dates and returns
// them in UTC. A date given as an upper bound covers the whole day.
func parseDate(value string, upper bool) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		u := t.UTC()
		return &u, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC3339", value)
	}
	if upper {
		t = t.AddDate(0, 0, 1)
	}
	return &t, nil
}

// dateRange parses the desde and hasta query parameters.
func dateRange(w http.ResponseWriter, r *http.Request) (desde, hasta *time.Time, ok bool) {
	q := r.URL.Query()
	desde, err := parseDate(q.Get("desde"), false)
	if err != nil {
		BadRequest(w, err.Error())
		return nil, nil, false
	}
	hasta, err = parseDate(q.Get("hasta"), true)
	if err != nil {
		BadRequest(w, err.Error())
		return nil, nil, false
	}
	if desde != nil && hasta != nil && !desde.Before(*hasta) {
		BadRequest(w, "desde must be before hasta")
		return nil, nil, false
	}
	return desde, hasta, true
}

// withEntity tags the request's log context with the entity served.
func withEntity(r *http.Request, entity string) *http.Request {
	lc := logger.FromContext(r.Context())
	if lc == nil {
		return r
	}
	return r.WithContext(logger.WithContext(r.Context(), lc.WithEntity(entity)))
}
