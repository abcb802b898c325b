// Package service implements the per-entity orchestration over the shard
// layer: list and get fan out across the caller's view, writes are routed to
// exactly one shard.
package service

import (
	"context"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/marmos91/centromed/pkg/fanout"
	"github.com/marmos91/centromed/pkg/globalid"
	"github.com/marmos91/centromed/pkg/metrics"
	"github.com/marmos91/centromed/pkg/resolver"
	"github.com/marmos91/centromed/pkg/shard"
)

// Deps are shared by every entity service.
type Deps struct {
	Resolver *resolver.Resolver
	Executor *fanout.Executor
	Validate *validator.Validate
	Metrics  metrics.MutationMetrics
}

// NewValidator returns a validator reporting fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Service serves one entity.
type Service[T Entity, P EntityPtr[T]] struct {
	deps  Deps
	desc  Descriptor[T]
	table string
}

// New creates the service for entity T.
func New[T Entity, P EntityPtr[T]](deps Deps, desc Descriptor[T]) *Service[T, P] {
	if deps.Validate == nil {
		deps.Validate = NewValidator()
	}
	var zero T
	if desc.Name == "" {
		desc.Name = zero.TableName()
	}
	return &Service[T, P]{deps: deps, desc: desc, table: zero.TableName()}
}

// Name returns the resource name.
func (s *Service[T, P]) Name() string {
	return s.desc.Name
}

// Table returns the table the entity lives in.
func (s *Service[T, P]) Table() string {
	return s.table
}

// viewMapping assigns global ids over every shard of the caller's view.
func (s *Service[T, P]) viewMapping(ctx context.Context, view []*shard.Shard, table string) (*globalid.Mapping, *fanout.Result[int64], error) {
	res, err := fanout.Keys(ctx, s.deps.Executor, view, table)
	if err != nil {
		return nil, res, err
	}
	return globalid.FromKeys(table, res.Parts), res, nil
}

// completeMapping is viewMapping for identifier resolution, which needs
// every shard: positions after a missing shard would shift.
func (s *Service[T, P]) completeMapping(ctx context.Context, view []*shard.Shard, table string) (*globalid.Mapping, error) {
	m, _, err := s.viewMapping(ctx, view, table)
	if err != nil {
		return nil, err
	}
	if !m.Complete() {
		return nil, &incompleteError{table: table, missing: m.MissingShards()}
	}
	return m, nil
}

type incompleteError struct {
	table   string
	missing []string
}

func (e *incompleteError) Error() string {
	return ErrMappingIncomplete.Error() + ": " + e.table + " unavailable on " + strings.Join(e.missing, ", ")
}

func (e *incompleteError) Unwrap() error {
	return ErrMappingIncomplete
}

func (s *Service[T, P]) validate(e *T) error {
	err := s.deps.Validate.Struct(e)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = describe(fe)
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "datetime":
		return "must be a date formatted " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func (s *Service[T, P]) sanitize(records []globalid.Record[T]) {
	if s.desc.Sanitize == nil {
		return
	}
	for i := range records {
		s.desc.Sanitize(&records[i].Entity)
	}
}

// applyFilter adds the SQL predicates of f.
func (s *Service[T, P]) applyFilter(db *gorm.DB, f Filter) *gorm.DB {
	if q := strings.TrimSpace(f.Q); q != "" && len(s.desc.Search) > 0 {
		pattern := "%" + strings.ToLower(q) + "%"
		clauses := make([]string, len(s.desc.Search))
		args := make([]any, len(s.desc.Search))
		for i, col := range s.desc.Search {
			clauses[i] = "LOWER(" + col + ") LIKE ?"
			args[i] = pattern
		}
		db = db.Where(strings.Join(clauses, " OR "), args...)
	}
	if s.desc.DateColumn != "" {
		// SQLite stores times as text, so bounds must share the stored UTC form.
		if f.Desde != nil {
			db = db.Where(s.desc.DateColumn+" >= ?", f.Desde.UTC())
		}
		if f.Hasta != nil {
			db = db.Where(s.desc.DateColumn+" < ?", f.Hasta.UTC())
		}
	}
	return db
}

func (s *Service[T, P]) listQuery(f Filter) fanout.QueryFunc[T] {
	return func(_ context.Context, db *gorm.DB) ([]T, error) {
		var rows []T
		if err := s.applyFilter(db, f).Order("id ASC").Find(&rows).Error; err != nil {
			return nil, err
		}
		return rows, nil
	}
}
