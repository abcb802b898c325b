package service

import (
	"context"

	"github.com/marmos91/centromed/internal/logger"
	"github.com/marmos91/centromed/pkg/fanout"
	"github.com/marmos91/centromed/pkg/globalid"
	"github.com/marmos91/centromed/pkg/resolver"
	"github.com/marmos91/centromed/pkg/shard"
)

// List returns every row the caller may see, narrowed by selector and f.
// Global ids are assigned over the caller's whole view, so a row keeps its
// id whether or not a selector or filter is applied. Shards that fail are
// skipped and reported in Meta.
func (s *Service[T, P]) List(ctx context.Context, c resolver.Caller, selector string, f Filter) (*Page[T], error) {
	view, err := s.deps.Resolver.View(c)
	if err != nil {
		return nil, err
	}
	scope, err := s.deps.Resolver.Scope(c, selector)
	if err != nil {
		return nil, err
	}

	var (
		records []globalid.Record[T]
		mapping *globalid.Mapping
		failed  failures
	)

	if f.Empty() && len(scope) == len(view) {
		// Unfiltered over the whole view: one pass yields rows and ids.
		res, err := fanout.Query(ctx, s.deps.Executor, s.table, scope, s.listQuery(f))
		if err != nil {
			return nil, err
		}
		records, mapping = globalid.Assign(s.table, res.Parts)
		failed.add(res.FailedKeys()...)
	} else {
		m, keys, err := s.viewMapping(ctx, view, s.table)
		if err != nil {
			return nil, err
		}
		failed.add(keys.FailedKeys()...)

		res, err := fanout.Query(ctx, s.deps.Executor, s.table, scope, s.listQuery(f))
		if err != nil {
			return nil, err
		}
		failed.add(res.FailedKeys()...)
		records, mapping = globalid.Decorate(m, res.Parts), m
	}

	refFailed := s.exportRefs(ctx, view, records)
	failed.add(refFailed...)
	s.sanitize(records)

	if len(failed.keys) > 0 {
		logger.WarnCtx(ctx, "Partial list",
			logger.KeyEntity, s.desc.Name,
			logger.KeyFailed, failed.keys,
			logger.KeyRows, len(records))
	}

	if records == nil {
		records = []globalid.Record[T]{}
	}
	return &Page[T]{
		Data: records,
		Meta: Meta{
			Total:           len(records),
			ShardsQueried:   len(scope),
			ShardFailures:   len(failed.keys),
			FailedShards:    failed.keys,
			Partial:         len(failed.keys) > 0,
			MappingToken:    mapping.Token(),
			MappingComplete: mapping.Complete(),
			IDScope:         "response",
		},
	}, nil
}

// Get returns the row behind a global id of the caller's view.
func (s *Service[T, P]) Get(ctx context.Context, c resolver.Caller, selector string, gid int64) (*Item[T], error) {
	view, err := s.deps.Resolver.View(c)
	if err != nil {
		return nil, err
	}
	m, err := s.completeMapping(ctx, view, s.table)
	if err != nil {
		return nil, err
	}
	target, local, err := s.deps.Resolver.ForExisting(m, gid)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Resolver.CheckSelector(target, selector); err != nil {
		return nil, err
	}

	row, err := s.load(ctx, target, local)
	if err != nil {
		return nil, err
	}

	records := []globalid.Record[T]{record(gid, target, *row)}
	failed := s.exportRefs(ctx, view, records)
	s.sanitize(records)

	return &Item[T]{
		Data: records[0],
		Meta: Meta{
			Total:           1,
			ShardsQueried:   len(view),
			ShardFailures:   len(failed),
			FailedShards:    failed,
			Partial:         len(failed) > 0,
			MappingToken:    m.Token(),
			MappingComplete: true,
			IDScope:         "response",
		},
	}, nil
}

func (s *Service[T, P]) load(ctx context.Context, target *shard.Shard, local int64) (*T, error) {
	var row T
	if err := target.DB().WithContext(ctx).Where("id = ?", local).First(&row).Error; err != nil {
		return nil, convertNotFoundError(err)
	}
	return &row, nil
}

func record[T Entity](gid int64, s *shard.Shard, row T) globalid.Record[T] {
	return globalid.Record[T]{
		GlobalID:     gid,
		ShardKey:     s.Key,
		LocalID:      row.LocalID(),
		CentroID:     s.CentroID,
		CentroNombre: s.DisplayName(),
		Entity:       row,
	}
}
