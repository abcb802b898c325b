package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/marmos91/centromed/pkg/fanout"
	"github.com/marmos91/centromed/pkg/globalid"
	"github.com/marmos91/centromed/pkg/resolver"
	"github.com/marmos91/centromed/pkg/shard"
)

var (
	// ErrNotFound is returned when a resolved row no longer exists on its shard.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned on unique constraint violations.
	ErrConflict = errors.New("record conflicts with an existing one")

	// ErrCrossShardReference is returned when a reference resolves to a
	// different centro than the record being written.
	ErrCrossShardReference = errors.New("reference belongs to another centro")

	// ErrMappingIncomplete is returned when identifier resolution needs
	// every shard of the caller's view and at least one did not answer.
	ErrMappingIncomplete = errors.New("identifier mapping incomplete")

	// ErrMappingTokenMismatch is returned when the client's mapping token no
	// longer matches the data. It wraps ErrStaleOrUnknownIdentifier.
	ErrMappingTokenMismatch = fmt.Errorf("%w: mapping token mismatch", globalid.ErrStaleOrUnknownIdentifier)
)

// ValidationError lists invalid fields by their JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e.Fields[name]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Outcome classifies err for metrics labels.
func Outcome(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, resolver.ErrMissingShardSelector):
		return "missing_selector"
	case errors.Is(err, resolver.ErrShardMismatch):
		return "shard_mismatch"
	case errors.Is(err, shard.ErrUnknownShard):
		return "unknown_shard"
	case errors.Is(err, globalid.ErrStaleOrUnknownIdentifier):
		return "stale_id"
	case errors.Is(err, ErrCrossShardReference):
		return "cross_shard_ref"
	case errors.Is(err, ErrMappingIncomplete):
		return "mapping_incomplete"
	case errors.Is(err, fanout.ErrAllShardsFailed):
		return "all_shards_failed"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.As(err, &verr):
		return "invalid"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "error"
	}
}

// isUniqueConstraintError reports unique violations from SQLite, PostgreSQL
// and MySQL.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "Duplicate entry")
}

func convertNotFoundError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
