package shard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
)

// Shard is one centro database.
type Shard struct {
	Key      string
	CentroID int64
	Nombre   string
	Driver   DatabaseType

	db *gorm.DB
}

// NewShard wraps an open connection pool as a shard.
func NewShard(key string, centroID int64, nombre string, db *gorm.DB) *Shard {
	return &Shard{Key: key, CentroID: centroID, Nombre: nombre, db: db}
}

// DB returns the shard's connection pool.
func (s *Shard) DB() *gorm.DB {
	return s.db
}

// DisplayName returns Nombre, falling back to Key.
func (s *Shard) DisplayName() string {
	if s.Nombre != "" {
		return s.Nombre
	}
	return s.Key
}

// Registry is the fixed set of shards, in configuration order.
type Registry struct {
	shards   []*Shard
	byKey    map[string]*Shard
	byCentro map[int64]*Shard
}

// New builds a registry from shards. Keys and centro ids must be unique.
func New(shards ...*Shard) (*Registry, error) {
	r := &Registry{
		shards:   make([]*Shard, 0, len(shards)),
		byKey:    make(map[string]*Shard, len(shards)),
		byCentro: make(map[int64]*Shard, len(shards)),
	}
	for _, s := range shards {
		if s == nil || s.Key == "" {
			return nil, fmt.Errorf("shard key is required")
		}
		if _, ok := r.byKey[s.Key]; ok {
			return nil, fmt.Errorf("%w: key %q", ErrDuplicateShard, s.Key)
		}
		if _, ok := r.byCentro[s.CentroID]; ok {
			return nil, fmt.Errorf("%w: centro_id %d", ErrDuplicateShard, s.CentroID)
		}
		r.shards = append(r.shards, s)
		r.byKey[s.Key] = s
		r.byCentro[s.CentroID] = s
	}
	return r, nil
}

// List returns every shard in configuration order. The slice is a copy.
func (r *Registry) List() []*Shard {
	out := make([]*Shard, len(r.shards))
	copy(out, r.shards)
	return out
}

// Keys returns the shard keys in configuration order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.shards))
	for i, s := range r.shards {
		keys[i] = s.Key
	}
	return keys
}

// Len returns the number of shards.
func (r *Registry) Len() int {
	return len(r.shards)
}

// Get returns the shard with the given key.
func (r *Registry) Get(key string) (*Shard, error) {
	s, ok := r.byKey[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownShard, key)
	}
	return s, nil
}

// ByCentroID returns the shard owning the given centro id.
func (r *Registry) ByCentroID(id int64) (*Shard, error) {
	s, ok := r.byCentro[id]
	if !ok {
		return nil, fmt.Errorf("%w: centro %d", ErrUnknownShard, id)
	}
	return s, nil
}

// Select resolves a shard selector: a numeric value is a centro id,
// anything else is a shard key. A numeric value that names no centro is
// still tried as a key.
func (r *Registry) Select(selector string) (*Shard, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil, fmt.Errorf("%w: empty selector", ErrUnknownShard)
	}
	if id, err := strconv.ParseInt(selector, 10, 64); err == nil {
		s, err := r.ByCentroID(id)
		if err == nil {
			return s, nil
		}
		if s, ok := r.byKey[selector]; ok {
			return s, nil
		}
		return nil, err
	}
	return r.Get(selector)
}

// Health is the result of pinging one shard.
type Health struct {
	Key      string        `json:"key"`
	CentroID int64         `json:"centro_id"`
	Nombre   string        `json:"nombre"`
	Driver   DatabaseType  `json:"driver,omitempty"`
	Healthy  bool          `json:"healthy"`
	Latency  time.Duration `json:"latency_ns"`
	Error    string        `json:"error,omitempty"`
}

// Ping checks every shard concurrently, each bounded by timeout. Results
// are in configuration order.
func (r *Registry) Ping(ctx context.Context, timeout time.Duration) []Health {
	out := make([]Health, len(r.shards))
	var wg sync.WaitGroup
	for i, s := range r.shards {
		wg.Add(1)
		go func(i int, s *Shard) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			err := s.Ping(pctx)
			out[i] = Health{
				Key:      s.Key,
				CentroID: s.CentroID,
				Nombre:   s.DisplayName(),
				Driver:   s.Driver,
				Healthy:  err == nil,
				Latency:  time.Since(start),
			}
			if err != nil {
				out[i].Error = err.Error()
			}
		}(i, s)
	}
	wg.Wait()
	return out
}

// Ping checks the shard's database connection.
func (s *Shard) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// AutoMigrate creates missing tables for models on every shard.
func (r *Registry) AutoMigrate(ctx context.Context, models ...any) error {
	for _, s := range r.shards {
		if err := s.db.WithContext(ctx).AutoMigrate(models...); err != nil {
			return fmt.Errorf("shard %q: auto-migrate: %w", s.Key, err)
		}
	}
	return nil
}

// Close closes every shard pool.
func (r *Registry) Close() error {
	var errs []error
	for _, s := range r.shards {
		sqlDB, err := s.db.DB()
		if err != nil {
			errs = append(errs, fmt.Errorf("shard %q: %w", s.Key, err))
			continue
		}
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("shard %q: %w", s.Key, err))
		}
	}
	return errors.Join(errs...)
}
