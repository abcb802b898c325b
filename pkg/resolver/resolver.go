// Package resolver decides which shards a request may read and the single
// shard a mutation must touch.
package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/marmos91/centromed/pkg/globalid"
	"github.com/marmos91/centromed/pkg/shard"
)

var (
	// ErrMissingShardSelector is returned when an unpinned caller creates a
	// record without naming the target centro.
	ErrMissingShardSelector = errors.New("missing shard selector")

	// ErrShardMismatch is returned when a pinned caller names another centro.
	ErrShardMismatch = errors.New("shard selector does not match caller's centro")
)

// Caller is the authenticated identity behind a request.
type Caller struct {
	Subject string
	Role    string
	Admin   bool

	// PinnedShard is the shard key a per-centro caller is bound to. Empty
	// for callers allowed to act on every centro.
	PinnedShard string
}

// Pinned reports whether the caller is bound to one centro.
func (c Caller) Pinned() bool {
	return c.PinnedShard != ""
}

// Resolver applies the routing rules against a registry.
type Resolver struct {
	reg *shard.Registry
}

// New creates a resolver over reg.
func New(reg *shard.Registry) *Resolver {
	return &Resolver{reg: reg}
}

// Registry returns the underlying registry.
func (r *Resolver) Registry() *shard.Registry {
	return r.reg
}

// View returns the shards that make up the caller's identifier space: every
// shard for an unpinned caller, the pinned shard otherwise. Global ids are
// always assigned over the view so they do not depend on the selector.
func (r *Resolver) View(c Caller) ([]*shard.Shard, error) {
	if !c.Pinned() {
		return r.reg.List(), nil
	}
	pin, err := r.reg.Get(c.PinnedShard)
	if err != nil {
		return nil, err
	}
	return []*shard.Shard{pin}, nil
}

// Scope returns the shards a read covers. A pinned caller sees only its
// shard; an unpinned caller sees the selected shard or, without a
// selector, every shard.
func (r *Resolver) Scope(c Caller, selector string) ([]*shard.Shard, error) {
	selector = strings.TrimSpace(selector)

	if c.Pinned() {
		pin, err := r.pinned(c, selector)
		if err != nil {
			return nil, err
		}
		return []*shard.Shard{pin}, nil
	}

	if selector == "" {
		return r.reg.List(), nil
	}
	s, err := r.reg.Select(selector)
	if err != nil {
		return nil, err
	}
	return []*shard.Shard{s}, nil
}

// ForCreate returns the one shard a new record goes to. Unpinned callers
// must name it; there is no default.
func (r *Resolver) ForCreate(c Caller, selector string) (*shard.Shard, error) {
	selector = strings.TrimSpace(selector)

	if c.Pinned() {
		return r.pinned(c, selector)
	}
	if selector == "" {
		return nil, ErrMissingShardSelector
	}
	return r.reg.Select(selector)
}

// ForExisting maps a global id through m to its shard and local id.
func (r *Resolver) ForExisting(m *globalid.Mapping, gid int64) (*shard.Shard, int64, error) {
	loc, err := m.Resolve(gid)
	if err != nil {
		return nil, 0, err
	}
	s, err := r.reg.Get(loc.ShardKey)
	if err != nil {
		return nil, 0, err
	}
	return s, loc.LocalID, nil
}

// CheckSelector verifies that a selector sent with a mutation on an
// existing record names the shard the record lives on.
func (r *Resolver) CheckSelector(target *shard.Shard, selector string) error {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil
	}
	sel, err := r.reg.Select(selector)
	if err != nil {
		return err
	}
	if sel.Key != target.Key {
		return fmt.Errorf("%w: record lives on %s, selector names %s", ErrShardMismatch, target.Key, sel.Key)
	}
	return nil
}

func (r *Resolver) pinned(c Caller, selector string) (*shard.Shard, error) {
	pin, err := r.reg.Get(c.PinnedShard)
	if err != nil {
		return nil, err
	}
	if selector == "" {
		return pin, nil
	}
	sel, err := r.reg.Select(selector)
	if err != nil {
		return nil, err
	}
	if sel.Key != pin.Key {
		return nil, fmt.Errorf("%w: caller bound to %s, selector names %s", ErrShardMismatch, pin.Key, sel.Key)
	}
	return pin, nil
}
