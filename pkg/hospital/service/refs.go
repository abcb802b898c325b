package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/marmos91/centromed/pkg/globalid"
	"github.com/marmos91/centromed/pkg/shard"
)

// importRefs translates the global ids a client sent in reference columns
// into local ids of target. A reference to a row of another centro is
// rejected. The returned function restores the client's global ids.
func (s *Service[T, P]) importRefs(ctx context.Context, view []*shard.Shard, target *shard.Shard, e *T) (func(*T), error) {
	type sent struct {
		ref Ref[T]
		gid int64
	}
	var restore []sent

	for _, ref := range s.desc.Refs {
		gid := ref.Get(e)
		if gid == nil {
			continue
		}
		if *gid <= 0 {
			return nil, invalid(ref.Column, "must be a positive identifier")
		}

		m, err := s.completeMapping(ctx, view, ref.Table)
		if err != nil {
			return nil, err
		}
		loc, err := m.Resolve(*gid)
		if err != nil {
			if errors.Is(err, globalid.ErrStaleOrUnknownIdentifier) {
				return nil, fmt.Errorf("%s: %w", ref.Column, err)
			}
			return nil, err
		}
		if loc.ShardKey != target.Key {
			return nil, fmt.Errorf("%w: %s %d is in %s, record is written to %s",
				ErrCrossShardReference, ref.Column, *gid, loc.ShardKey, target.Key)
		}

		restore = append(restore, sent{ref: ref, gid: *gid})
		local := loc.LocalID
		ref.Set(e, &local)
	}

	return func(out *T) {
		for _, r := range restore {
			gid := r.gid
			r.ref.Set(out, &gid)
		}
	}, nil
}

// exportRefs rewrites reference columns of records from local ids to
// global ids of the caller's view. References that cannot be mapped are
// cleared. It returns the shards whose keys could not be read.
func (s *Service[T, P]) exportRefs(ctx context.Context, view []*shard.Shard, records []globalid.Record[T]) []string {
	var failed failures
	for _, ref := range s.desc.Refs {
		used := false
		for i := range records {
			if ref.Get(&records[i].Entity) != nil {
				used = true
				break
			}
		}
		if !used {
			continue
		}

		m, keys, err := s.viewMapping(ctx, view, ref.Table)
		if keys != nil {
			failed.add(keys.FailedKeys()...)
		}
		for i := range records {
			local := ref.Get(&records[i].Entity)
			if local == nil {
				continue
			}
			if err != nil {
				ref.Set(&records[i].Entity, nil)
				continue
			}
			gid, ok := m.GlobalID(globalid.Location{ShardKey: records[i].ShardKey, LocalID: *local})
			if !ok {
				ref.Set(&records[i].Entity, nil)
				continue
			}
			ref.Set(&records[i].Entity, &gid)
		}
	}
	return failed.keys
}
