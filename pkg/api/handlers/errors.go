package handlers

import (
	"errors"
	"net/http"

	"github.com/marmos91/centromed/internal/logger"
	"github.com/marmos91/centromed/pkg/fanout"
	"github.com/marmos91/centromed/pkg/globalid"
	"github.com/marmos91/centromed/pkg/hospital/service"
	"github.com/marmos91/centromed/pkg/resolver"
	"github.com/marmos91/centromed/pkg/shard"
)

// writeServiceError maps an error from the service layer to a problem
// response.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	p := &Problem{Detail: err.Error(), Instance: r.URL.Path}

	switch {
	case errors.As(err, &verr):
		p.Status, p.Title, p.Code = http.StatusBadRequest, "Validation Failed", "validation_failed"
		p.Errors = verr.Fields
	case errors.Is(err, shard.ErrUnknownShard):
		p.Status, p.Title, p.Code = http.StatusBadRequest, "Unknown Centro", "unknown_shard"
	case errors.Is(err, resolver.ErrMissingShardSelector):
		p.Status, p.Title, p.Code = http.StatusBadRequest, "Missing Centro Selector", "missing_shard_selector"
		p.Detail = "The " + HeaderCentro + " header is required to create records"
	case errors.Is(err, resolver.ErrShardMismatch):
		p.Status, p.Title, p.Code = http.StatusForbidden, "Centro Mismatch", "shard_mismatch"
	case errors.Is(err, service.ErrMappingTokenMismatch):
		p.Status, p.Title, p.Code = http.StatusConflict, "Stale Identifier", "stale_identifier"
	case errors.Is(err, globalid.ErrStaleOrUnknownIdentifier):
		p.Status, p.Title, p.Code = http.StatusNotFound, "Unknown Identifier", "stale_identifier"
	case errors.Is(err, service.ErrNotFound):
		p.Status, p.Title, p.Code = http.StatusNotFound, "Not Found", "not_found"
	case errors.Is(err, service.ErrConflict):
		p.Status, p.Title, p.Code = http.StatusConflict, "Conflict", "conflict"
	case errors.Is(err, service.ErrCrossShardReference):
		p.Status, p.Title, p.Code = http.StatusUnprocessableEntity, "Cross-Centro Reference", "cross_shard_reference"
	case errors.Is(err, service.ErrMappingIncomplete):
		p.Status, p.Title, p.Code = http.StatusServiceUnavailable, "Identifier Mapping Incomplete", "mapping_incomplete"
	case errors.Is(err, fanout.ErrAllShardsFailed):
		p.Status, p.Title, p.Code = http.StatusServiceUnavailable, "All Centros Unavailable", "all_shards_failed"
	default:
		logger.ErrorCtx(r.Context(), "Request failed", logger.KeyError, err.Error())
		p.Status, p.Title, p.Detail = http.StatusInternalServerError, "Internal Server Error", "Request failed"
	}

	if p.Status >= 500 && p.Status != http.StatusInternalServerError {
		logger.WarnCtx(r.Context(), "Request degraded", logger.KeyError, err.Error())
	}
	writeProblem(w, p)
}
