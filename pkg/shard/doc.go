// Package shard holds the static registry of centro médico databases.
//
// Each shard is one independent relational database owned by one centro.
// The registry is built once at process start from configuration and never
// changes afterwards, so lookups need no locking. List order is the
// configuration order and is the order every fan-out and every global
// identifier assignment walks.
package shard
