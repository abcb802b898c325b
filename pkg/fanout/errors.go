package fanout

import (
	"errors"
	"fmt"
)

// ErrAllShardsFailed is returned when no shard in scope answered.
var ErrAllShardsFailed = errors.New("all shards failed")

// ShardQueryFailure records one shard's failed leg of a fan-out.
type ShardQueryFailure struct {
	ShardKey string
	Err      error
}

func (f *ShardQueryFailure) Error() string {
	return fmt.Sprintf("shard %s: %v", f.ShardKey, f.Err)
}

func (f *ShardQueryFailure) Unwrap() error {
	return f.Err
}
