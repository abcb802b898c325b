package service

import (
	"strings"
	"time"

	"github.com/marmos91/centromed/pkg/globalid"
)

// Entity is a shard table row.
type Entity interface {
	globalid.Identifiable
	TableName() string
}

// EntityPtr is the pointer form of an Entity, used for writes.
type EntityPtr[T any] interface {
	*T
	SetLocalID(int64)
	SetIDCentro(int64)
}

// Ref describes a column holding the local id of a row in another table of
// the same shard. Clients read and write it as a global id.
type Ref[T any] struct {
	Column string
	Table  string
	Get    func(*T) *int64
	Set    func(*T, *int64)
}

// Descriptor configures a Service for one entity.
type Descriptor[T any] struct {
	// Name is the resource name used in routes and logs.
	Name string

	// Search lists the columns matched by Filter.Q.
	Search []string

	// DateColumn is filtered by Filter.Desde/Hasta.
	DateColumn string

	// Columns are replaced by Update. updated_at is always included.
	Columns []string

	Refs []Ref[T]

	// Prepare runs after validation and before the write. existing is nil
	// on create.
	Prepare func(e *T, existing *T) error

	// Sanitize scrubs fields that must not leave the server.
	Sanitize func(e *T)
}

// Filter narrows a list. Filtering happens in SQL on each shard.
type Filter struct {
	Q     string
	Desde *time.Time
	Hasta *time.Time
}

// Empty reports whether no filter is set.
func (f Filter) Empty() bool {
	return strings.TrimSpace(f.Q) == "" && f.Desde == nil && f.Hasta == nil
}

// Meta describes how a response was assembled.
type Meta struct {
	Total           int      `json:"total"`
	ShardsQueried   int      `json:"shards_consulted"`
	ShardFailures   int      `json:"shard_failures"`
	FailedShards    []string `json:"failed_shards,omitempty"`
	Partial         bool     `json:"partial"`
	MappingToken    string   `json:"mapping_token,omitempty"`
	MappingComplete bool     `json:"mapping_complete"`

	// IDScope is "response" for ids valid for the returned view and "view"
	// for ids computed right after a write.
	IDScope string `json:"id_scope"`
}

// Page is a list response.
type Page[T any] struct {
	Data []globalid.Record[T] `json:"data"`
	Meta Meta                 `json:"meta"`
}

// Item is a single-record response.
type Item[T any] struct {
	Data globalid.Record[T] `json:"data"`
	Meta Meta               `json:"meta"`
}

// failures collects failed shard keys across several fan-outs, keeping
// first-seen order.
type failures struct {
	keys []string
	seen map[string]bool
}

func (f *failures) add(keys ...string) {
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	for _, k := range keys {
		if !f.seen[k] {
			f.seen[k] = true
			f.keys = append(f.keys, k)
		}
	}
}
