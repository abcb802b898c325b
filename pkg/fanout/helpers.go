package fanout

import (
	"context"

	"gorm.io/gorm"

	"github.com/marmos91/centromed/pkg/shard"
)

// Raw runs the same SQL with the same parameters on every shard and scans
// the rows into T.
func Raw[T any](ctx context.Context, e *Executor, label string, shards []*shard.Shard, sql string, args ...any) (*Result[T], error) {
	return Query(ctx, e, label, shards, func(_ context.Context, db *gorm.DB) ([]T, error) {
		var rows []T
		if err := db.Raw(sql, args...).Scan(&rows).Error; err != nil {
			return nil, err
		}
		return rows, nil
	})
}

// Keys fetches the primary keys of table on every shard in ascending order.
func Keys(ctx context.Context, e *Executor, shards []*shard.Shard, table string) (*Result[int64], error) {
	return Query(ctx, e, table+".keys", shards, func(_ context.Context, db *gorm.DB) ([]int64, error) {
		var ids []int64
		if err := db.Table(table).Order("id ASC").Pluck("id", &ids).Error; err != nil {
			return nil, err
		}
		return ids, nil
	})
}
