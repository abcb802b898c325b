package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Stable problem codes returned by the API.
const (
	CodeMissingSelector   = "missing_shard_selector"
	CodeUnknownShard      = "unknown_shard"
	CodeShardMismatch     = "shard_mismatch"
	CodeStaleIdentifier   = "stale_identifier"
	CodeNotFound          = "not_found"
	CodeConflict          = "conflict"
	CodeValidation        = "validation_failed"
	CodeCrossShard        = "cross_shard_reference"
	CodeMappingIncomplete = "mapping_incomplete"
	CodeAllShardsFailed   = "all_shards_failed"
)

// APIError is an RFC 7807 problem returned by the API.
type APIError struct {
	StatusCode int               `json:"status"`
	Title      string            `json:"title"`
	Detail     string            `json:"detail,omitempty"`
	Code       string            `json:"code,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`

	body []byte
}

func parseAPIError(status int, body []byte) *APIError {
	var apiErr APIError
	if json.Unmarshal(body, &apiErr) == nil && (apiErr.Title != "" || apiErr.Detail != "") {
		apiErr.StatusCode = status
		apiErr.body = body
		return &apiErr
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Title: http.StatusText(status), Detail: msg, body: body}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Title
	}
	if len(e.Errors) > 0 {
		fields := make([]string, 0, len(e.Errors))
		for f, m := range e.Errors {
			fields = append(fields, f+": "+m)
		}
		sort.Strings(fields)
		msg += " (" + strings.Join(fields, "; ") + ")"
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// IsAuthError returns true for 401 and 403 responses.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsNotFound returns true if the record does not exist in the caller's view.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsConflict returns true if this is a conflict error.
func (e *APIError) IsConflict() bool {
	return e.Code == CodeConflict
}

// IsStale returns true when the identifier no longer names the record the
// caller listed; the caller should list again.
func (e *APIError) IsStale() bool {
	return e.Code == CodeStaleIdentifier
}

// IsMissingSelector returns true when a create was sent without X-Centro-Id.
func (e *APIError) IsMissingSelector() bool {
	return e.Code == CodeMissingSelector
}

// IsValidationError returns true if this is a validation error.
func (e *APIError) IsValidationError() bool {
	return e.Code == CodeValidation
}
