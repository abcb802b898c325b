package apiclient

import (
	"fmt"
	"net/http"
	"sort"
)

// Entity names an aggregated collection of the API.
type Entity string

const (
	Pacientes      Entity = "pacientes"
	Medicos        Entity = "medicos"
	Empleados      Entity = "empleados"
	Especialidades Entity = "especialidades"
	Consultas      Entity = "consultas"
	Usuarios       Entity = "usuarios"
)

// Entities returns every collection in a stable order.
func Entities() []Entity {
	return []Entity{Pacientes, Medicos, Empleados, Especialidades, Consultas, Usuarios}
}

// ParseEntity validates a collection name given on the command line.
func ParseEntity(name string) (Entity, error) {
	for _, e := range Entities() {
		if string(e) == name {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown entity %q (valid: pacientes, medicos, empleados, especialidades, consultas, usuarios)", name)
}

// Record is one row as served by the API: the entity fields plus id,
// local_id, shard_key, centro_id and centro_nombre.
type Record map[string]any

// ID returns the view-scoped global id.
func (r Record) ID() int64 { return r.int("id") }

// LocalID returns the row's id inside its shard.
func (r Record) LocalID() int64 { return r.int("local_id") }

// ShardKey returns the shard holding the row.
func (r Record) ShardKey() string {
	s, _ := r["shard_key"].(string)
	return s
}

// Fields returns the entity's own field names sorted, without the
// identifier fields.
func (r Record) Fields() []string {
	out := make([]string, 0, len(r))
	for k := range r {
		switch k {
		case "id", "local_id", "shard_key", "centro_id", "centro_nombre":
			continue
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r Record) int(key string) int64 {
	switch v := r[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// Meta describes how an aggregated response was assembled.
type Meta struct {
	Total           int      `json:"total"`
	ShardsQueried   int      `json:"shards_consulted"`
	ShardFailures   int      `json:"shard_failures"`
	FailedShards    []string `json:"failed_shards,omitempty"`
	Partial         bool     `json:"partial"`
	MappingToken    string   `json:"mapping_token,omitempty"`
	MappingComplete bool     `json:"mapping_complete"`
	IDScope         string   `json:"id_scope"`
}

// Page is a list response.
type Page struct {
	Data []Record `json:"data"`
	Meta Meta     `json:"meta"`
}

// Item is a single-record response.
type Item struct {
	Data Record `json:"data"`
	Meta Meta   `json:"meta"`
}

// ListOptions filters a list.
type ListOptions struct {
	Query string
	Desde string
	Hasta string
}

// List returns the records of entity visible to the caller.
func (c *Client) List(entity Entity, opts ListOptions) (*Page, error) {
	path := withQuery(resourcePath("/api/v1/%s", entity), map[string]string{
		"q":     opts.Query,
		"desde": opts.Desde,
		"hasta": opts.Hasta,
	})
	return getResource[Page](c, path)
}

// Get returns the record with global id gid.
func (c *Client) Get(entity Entity, gid int64) (*Item, error) {
	return getResource[Item](c, resourcePath("/api/v1/%s/%d", entity, gid))
}

// Create inserts a record on the centro selected with WithCentro.
func (c *Client) Create(entity Entity, fields map[string]any) (*Item, error) {
	var item Item
	if _, err := c.do(http.MethodPost, resourcePath("/api/v1/%s", entity), nil, fields, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Update replaces the record with global id gid. A non-empty mappingToken
// makes the server reject the write if ids were renumbered since the list
// that produced gid.
func (c *Client) Update(entity Entity, gid int64, fields map[string]any, mappingToken string) (*Item, error) {
	var item Item
	headers := map[string]string{HeaderMappingToken: mappingToken}
	if _, err := c.do(http.MethodPut, resourcePath("/api/v1/%s/%d", entity, gid), headers, fields, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes the record with global id gid. See Update for mappingToken.
func (c *Client) Delete(entity Entity, gid int64, mappingToken string) error {
	headers := map[string]string{HeaderMappingToken: mappingToken}
	_, err := c.do(http.MethodDelete, resourcePath("/api/v1/%s/%d", entity, gid), headers, nil, nil)
	return err
}
