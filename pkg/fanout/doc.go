// Package fanout runs one read query against every shard in scope
// concurrently and collects the per-shard results in registry order.
//
// A shard that fails or times out is logged, recorded as a
// ShardQueryFailure and contributes no rows; the other shards are
// unaffected. The fan-out as a whole fails only when every shard in scope
// failed or when the caller's context is cancelled.
package fanout
