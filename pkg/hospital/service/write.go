package service

import (
	"context"
	"time"

	"github.com/marmos91/centromed/internal/logger"
	"github.com/marmos91/centromed/internal/telemetry"
	"github.com/marmos91/centromed/pkg/globalid"
	"github.com/marmos91/centromed/pkg/resolver"
	"github.com/marmos91/centromed/pkg/shard"
)

// Create inserts e on the one shard the resolver picks for the caller and
// selector. The returned id is computed from a fresh read of the view
// right after the insert.
func (s *Service[T, P]) Create(ctx context.Context, c resolver.Caller, selector string, e *T) (item *Item[T], err error) {
	start := time.Now()
	var target *shard.Shard
	defer func() { s.observe("create", target, start, err) }()

	target, err = s.deps.Resolver.ForCreate(c, selector)
	if err != nil {
		return nil, err
	}
	view, err := s.deps.Resolver.View(c)
	if err != nil {
		return nil, err
	}
	if err := s.validate(e); err != nil {
		return nil, err
	}
	restore, err := s.importRefs(ctx, view, target, e)
	if err != nil {
		return nil, err
	}
	if s.desc.Prepare != nil {
		if err := s.desc.Prepare(e, nil); err != nil {
			return nil, err
		}
	}

	p := P(e)
	p.SetLocalID(0)
	p.SetIDCentro(target.CentroID)

	mctx, span := telemetry.StartMutation(ctx, s.desc.Name, "create", target.Key)
	err = target.DB().WithContext(mctx).Create(e).Error
	telemetry.RecordError(mctx, err)
	span.End()
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrConflict
		}
		return nil, err
	}

	rec := record(0, target, *e)
	var meta Meta
	if m, keys, merr := s.viewMapping(ctx, view, s.table); merr == nil {
		rec.GlobalID, _ = m.GlobalID(rec.Location())
		meta.MappingToken = m.Token()
		meta.MappingComplete = m.Complete()
		meta.FailedShards = keys.FailedKeys()
	} else {
		logger.WarnCtx(ctx, "Created record but could not assign its global id",
			logger.KeyEntity, s.desc.Name, logger.KeyShard, target.Key, logger.KeyError, merr.Error())
	}
	restore(&rec.Entity)
	if s.desc.Sanitize != nil {
		s.desc.Sanitize(&rec.Entity)
	}

	meta.Total = 1
	meta.ShardsQueried = len(view)
	meta.ShardFailures = len(meta.FailedShards)
	meta.Partial = meta.ShardFailures > 0
	meta.IDScope = "view"

	logger.InfoCtx(ctx, "Record created",
		logger.KeyEntity, s.desc.Name,
		logger.KeyShard, target.Key,
		logger.KeyLocalID, rec.LocalID,
		logger.KeyGlobalID, rec.GlobalID)

	return &Item[T]{Data: rec, Meta: meta}, nil
}

// Update replaces the writable columns of the row behind gid. The mapping
// is recomputed from every shard of the view; when token is not empty it
// must match the recomputed mapping.
func (s *Service[T, P]) Update(ctx context.Context, c resolver.Caller, selector string, gid int64, token string, e *T) (item *Item[T], err error) {
	start := time.Now()
	var target *shard.Shard
	defer func() { s.observe("update", target, start, err) }()

	view, m, target, local, err := s.resolveExisting(ctx, c, selector, gid, token)
	if err != nil {
		return nil, err
	}
	if err := s.validate(e); err != nil {
		return nil, err
	}
	restore, err := s.importRefs(ctx, view, target, e)
	if err != nil {
		return nil, err
	}

	existing, err := s.load(ctx, target, local)
	if err != nil {
		return nil, err
	}
	if s.desc.Prepare != nil {
		if err := s.desc.Prepare(e, existing); err != nil {
			return nil, err
		}
	}

	p := P(e)
	p.SetLocalID(local)
	p.SetIDCentro(target.CentroID)

	mctx, span := telemetry.StartMutation(ctx, s.desc.Name, "update", target.Key)
	res := target.DB().WithContext(mctx).
		Model(P(new(T))).
		Where("id = ?", local).
		Select(append([]string{"id_centro", "updated_at"}, s.desc.Columns...)).
		Updates(e)
	telemetry.RecordError(mctx, res.Error)
	span.End()
	if res.Error != nil {
		if isUniqueConstraintError(res.Error) {
			return nil, ErrConflict
		}
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	row, err := s.load(ctx, target, local)
	if err != nil {
		return nil, err
	}
	rec := record(gid, target, *row)
	restore(&rec.Entity)
	records := []globalid.Record[T]{rec}
	s.sanitize(records)

	logger.InfoCtx(ctx, "Record updated",
		logger.KeyEntity, s.desc.Name,
		logger.KeyShard, target.Key,
		logger.KeyLocalID, local,
		logger.KeyGlobalID, gid)

	return &Item[T]{
		Data: records[0],
		Meta: Meta{
			Total:           1,
			ShardsQueried:   len(view),
			MappingToken:    m.Token(),
			MappingComplete: true,
			IDScope:         "response",
		},
	}, nil
}

// Delete removes the row behind gid from its shard. Global ids of rows
// after it shift by one once it is gone.
func (s *Service[T, P]) Delete(ctx context.Context, c resolver.Caller, selector string, gid int64, token string) (err error) {
	start := time.Now()
	var target *shard.Shard
	defer func() { s.observe("delete", target, start, err) }()

	_, _, target, local, err := s.resolveExisting(ctx, c, selector, gid, token)
	if err != nil {
		return err
	}

	mctx, span := telemetry.StartMutation(ctx, s.desc.Name, "delete", target.Key)
	res := target.DB().WithContext(mctx).Where("id = ?", local).Delete(P(new(T)))
	telemetry.RecordError(mctx, res.Error)
	span.End()
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	logger.InfoCtx(ctx, "Record deleted",
		logger.KeyEntity, s.desc.Name,
		logger.KeyShard, target.Key,
		logger.KeyLocalID, local,
		logger.KeyGlobalID, gid)
	return nil
}

// resolveExisting recomputes the view mapping and resolves gid to exactly
// one shard and local id.
func (s *Service[T, P]) resolveExisting(ctx context.Context, c resolver.Caller, selector string, gid int64, token string) ([]*shard.Shard, *globalid.Mapping, *shard.Shard, int64, error) {
	view, err := s.deps.Resolver.View(c)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	m, err := s.completeMapping(ctx, view, s.table)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	if token != "" && token != m.Token() {
		return nil, nil, nil, 0, ErrMappingTokenMismatch
	}
	target, local, err := s.deps.Resolver.ForExisting(m, gid)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	if err := s.deps.Resolver.CheckSelector(target, selector); err != nil {
		return nil, nil, nil, 0, err
	}
	return view, m, target, local, nil
}

func (s *Service[T, P]) observe(op string, target *shard.Shard, start time.Time, err error) {
	if s.deps.Metrics == nil {
		return
	}
	key := ""
	if target != nil {
		key = target.Key
	}
	s.deps.Metrics.RecordMutation(s.desc.Name, op, key, Outcome(err), time.Since(start))
}
