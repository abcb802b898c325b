package globalid

import (
	"cmp"
	"encoding/json"
	"slices"

	"github.com/marmos91/centromed/pkg/fanout"
)

// Identifiable is a shard row with an auto-increment primary key.
type Identifiable interface {
	LocalID() int64
}

// Record is a shard row tagged with its origin and view-scoped global id.
type Record[T any] struct {
	GlobalID     int64
	ShardKey     string
	LocalID      int64
	CentroID     int64
	CentroNombre string
	Entity       T
}

// Location returns where the record lives.
func (r Record[T]) Location() Location {
	return Location{ShardKey: r.ShardKey, LocalID: r.LocalID}
}

// MarshalJSON flattens the entity's fields next to the identifier fields.
func (r Record[T]) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(r.Entity)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	fields["id"] = r.GlobalID
	fields["local_id"] = r.LocalID
	fields["shard_key"] = r.ShardKey
	fields["centro_id"] = r.CentroID
	fields["centro_nombre"] = r.CentroNombre
	return json.Marshal(fields)
}

// Assign numbers every row of parts and returns the records together with
// the mapping. Failed parts contribute no rows and mark the mapping
// incomplete.
func Assign[T Identifiable](scope string, parts []fanout.Part[T]) ([]Record[T], *Mapping) {
	b := NewBuilder(scope)
	var records []Record[T]

	for _, p := range parts {
		if p.Err != nil {
			b.Missing(p.Shard.Key)
			continue
		}
		rows := slices.Clone(p.Rows)
		slices.SortStableFunc(rows, func(x, y T) int { return cmp.Compare(x.LocalID(), y.LocalID()) })

		ids := make([]int64, len(rows))
		for i, row := range rows {
			ids[i] = row.LocalID()
		}
		first := int64(len(records) + 1)
		b.Add(p.Shard.Key, ids)

		for i, row := range rows {
			records = append(records, Record[T]{
				GlobalID:     first + int64(i),
				ShardKey:     p.Shard.Key,
				LocalID:      row.LocalID(),
				CentroID:     p.Shard.CentroID,
				CentroNombre: p.Shard.DisplayName(),
				Entity:       row,
			})
		}
	}
	return records, b.Build()
}

// FromKeys builds a mapping from a key-only fan-out.
func FromKeys(scope string, parts []fanout.Part[int64]) *Mapping {
	b := NewBuilder(scope)
	for _, p := range parts {
		if p.Err != nil {
			b.Missing(p.Shard.Key)
			continue
		}
		b.Add(p.Shard.Key, p.Rows)
	}
	return b.Build()
}

// Decorate labels rows from a filtered fan-out with their global ids from
// m, which must cover the unfiltered view. Rows absent from m (inserted
// between the two reads) are dropped.
func Decorate[T Identifiable](m *Mapping, parts []fanout.Part[T]) []Record[T] {
	var records []Record[T]
	for _, p := range parts {
		if p.Err != nil {
			continue
		}
		for _, row := range p.Rows {
			gid, ok := m.GlobalID(Location{ShardKey: p.Shard.Key, LocalID: row.LocalID()})
			if !ok {
				continue
			}
			records = append(records, Record[T]{
				GlobalID:     gid,
				ShardKey:     p.Shard.Key,
				LocalID:      row.LocalID(),
				CentroID:     p.Shard.CentroID,
				CentroNombre: p.Shard.DisplayName(),
				Entity:       row,
			})
		}
	}
	slices.SortFunc(records, func(x, y Record[T]) int { return cmp.Compare(x.GlobalID, y.GlobalID) })
	return records
}
