package globalid

import (
	"errors"
	"fmt"
	"hash"
	"hash/fnv"
	"slices"
	"strconv"
)

// ErrStaleOrUnknownIdentifier is returned when a global id is not part of
// the current mapping.
var ErrStaleOrUnknownIdentifier = errors.New("stale or unknown identifier")

// Location is where a row lives.
type Location struct {
	ShardKey string `json:"shard_key"`
	LocalID  int64  `json:"local_id"`
}

func (l Location) String() string {
	return l.ShardKey + "/" + strconv.FormatInt(l.LocalID, 10)
}

// Mapping is the reversible global id assignment of one view.
type Mapping struct {
	scope   string
	locs    []Location // global id N is locs[N-1]
	index   map[Location]int64
	missing []string
	token   string
}

// Builder accumulates shards in registry order.
type Builder struct {
	scope   string
	locs    []Location
	missing []string
	h       hash.Hash64
}

// NewBuilder starts a mapping for scope (the entity table).
func NewBuilder(scope string) *Builder {
	h := fnv.New64a()
	_, _ = h.Write([]byte(scope))
	return &Builder{scope: scope, h: h}
}

// Add appends a shard's local ids. Ids are sorted ascending first.
func (b *Builder) Add(shardKey string, ids []int64) *Builder {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)

	_, _ = b.h.Write([]byte("|" + shardKey + ":"))
	buf := make([]byte, 0, 8)
	for _, id := range sorted {
		b.locs = append(b.locs, Location{ShardKey: shardKey, LocalID: id})
		buf = strconv.AppendInt(buf[:0], id, 10)
		buf = append(buf, ',')
		_, _ = b.h.Write(buf)
	}
	return b
}

// Missing records that a shard in scope could not be read. Global ids after
// it would shift once it answers again, so the mapping is incomplete.
func (b *Builder) Missing(shardKey string) *Builder {
	b.missing = append(b.missing, shardKey)
	_, _ = b.h.Write([]byte("|" + shardKey + "!"))
	return b
}

// Build finalizes the mapping.
func (b *Builder) Build() *Mapping {
	m := &Mapping{
		scope:   b.scope,
		locs:    b.locs,
		index:   make(map[Location]int64, len(b.locs)),
		missing: b.missing,
		token:   fmt.Sprintf("%016x", b.h.Sum64()),
	}
	for i, loc := range b.locs {
		m.index[loc] = int64(i + 1)
	}
	return m
}

// Resolve maps a global id back to its location.
func (m *Mapping) Resolve(gid int64) (Location, error) {
	if gid < 1 || gid > int64(len(m.locs)) {
		return Location{}, fmt.Errorf("%w: %s %d", ErrStaleOrUnknownIdentifier, m.scope, gid)
	}
	return m.locs[gid-1], nil
}

// GlobalID returns the global id of loc.
func (m *Mapping) GlobalID(loc Location) (int64, bool) {
	gid, ok := m.index[loc]
	return gid, ok
}

// Len returns the number of identifiers in the mapping.
func (m *Mapping) Len() int {
	return len(m.locs)
}

// Scope returns the entity the mapping was built for.
func (m *Mapping) Scope() string {
	return m.scope
}

// Token fingerprints the scope, shard order and every local id.
func (m *Mapping) Token() string {
	return m.token
}

// Complete reports whether every shard in scope contributed.
func (m *Mapping) Complete() bool {
	return len(m.missing) == 0
}

// MissingShards returns the shards that could not be read.
func (m *Mapping) MissingShards() []string {
	return slices.Clone(m.missing)
}

// Locations returns a copy of the locations in global id order.
func (m *Mapping) Locations() []Location {
	return slices.Clone(m.locs)
}
