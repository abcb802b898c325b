// Package globalid assigns dense, collision-free global identifiers to rows
// gathered from several shards and maps them back to (shard, local id).
//
// Identifiers are assigned by walking shards in registry order and, within
// a shard, rows in ascending local id order; the first row gets 1. The
// assignment is a pure function of its input. A Mapping is valid only for
// the data it was computed from: it is never persisted and never cached
// across requests. The mapping token fingerprints that data so a client
// can present it back and have staleness detected.
package globalid
