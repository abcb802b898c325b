package shard

import "errors"

var (
	// ErrUnknownShard is returned when a shard key or centro id is not configured.
	ErrUnknownShard = errors.New("unknown shard")

	// ErrDuplicateShard is returned when two shards share a key or centro id.
	ErrDuplicateShard = errors.New("duplicate shard")
)
