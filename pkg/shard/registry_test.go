package shard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/centromed/pkg/shard"
	"github.com/marmos91/centromed/pkg/shard/shardtest"
)

type probe struct {
	ID   int64 `gorm:"primaryKey"`
	Name string
}

func TestRegistryOrderAndLookup(t *testing.T) {
	reg := shardtest.NewRegistry(t, []any{&probe{}})

	assert.Equal(t, []string{"central", "guayaquil", "cuenca"}, reg.Keys())
	assert.Equal(t, 3, reg.Len())

	s, err := reg.Get("guayaquil")
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.CentroID)
	assert.Equal(t, shard.DatabaseTypeSQLite, s.Driver)

	s, err = reg.ByCentroID(3)
	require.NoError(t, err)
	assert.Equal(t, "cuenca", s.Key)

	_, err = reg.Get("quito")
	assert.True(t, errors.Is(err, shard.ErrUnknownShard))

	_, err = reg.ByCentroID(99)
	assert.True(t, errors.Is(err, shard.ErrUnknownShard))
}

func TestRegistryListIsCopy(t *testing.T) {
	reg := shardtest.NewRegistry(t, nil)

	list := reg.List()
	list[0] = nil
	assert.NotNil(t, reg.List()[0])
}

func TestSelect(t *testing.T) {
	reg := shardtest.NewRegistry(t, nil)

	tests := []struct {
		selector string
		want     string
		wantErr  bool
	}{
		{"2", "guayaquil", false},
		{" cuenca ", "cuenca", false},
		{"central", "central", false},
		{"7", "", true},
		{"quito", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		s, err := reg.Select(tt.selector)
		if tt.wantErr {
			assert.ErrorIs(t, err, shard.ErrUnknownShard, tt.selector)
			continue
		}
		require.NoError(t, err, tt.selector)
		assert.Equal(t, tt.want, s.Key)
	}
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := shard.New(
		shard.NewShard("a", 1, "", nil),
		shard.NewShard("a", 2, "", nil),
	)
	assert.ErrorIs(t, err, shard.ErrDuplicateShard)

	_, err = shard.New(
		shard.NewShard("a", 1, "", nil),
		shard.NewShard("b", 1, "", nil),
	)
	assert.ErrorIs(t, err, shard.ErrDuplicateShard)
}

func TestAutoMigrateCreatesTables(t *testing.T) {
	reg := shardtest.NewRegistry(t, []any{&probe{}})

	for _, s := range reg.List() {
		assert.True(t, s.DB().Migrator().HasTable(&probe{}), s.Key)
	}
}

func TestPingReportsBrokenShard(t *testing.T) {
	reg := shardtest.NewRegistry(t, nil)
	shardtest.Break(t, shardtest.MustGet(t, reg, "guayaquil"))

	health := reg.Ping(context.Background(), time.Second)
	require.Len(t, health, 3)
	assert.True(t, health[0].Healthy)
	assert.False(t, health[1].Healthy)
	assert.NotEmpty(t, health[1].Error)
	assert.True(t, health[2].Healthy)
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	cfg := shard.Config{Key: "central", CentroID: 1}
	cfg.ApplyDefaults()

	assert.Equal(t, shard.DatabaseTypeMySQL, cfg.Database.Type)
	assert.Equal(t, 3306, cfg.Database.MySQL.Port)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Error(t, cfg.Validate(), "mysql needs database and user")

	cfg.Database.MySQL.Database = "centro_central"
	cfg.Database.MySQL.User = "app"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "app:@tcp(localhost:3306)/centro_central?charset=utf8mb4&parseTime=True&loc=UTC", cfg.Database.MySQL.DSN())

	bad := shard.Config{Key: "x", CentroID: 0}
	assert.Error(t, bad.Validate())

	numeric := cfg
	numeric.Key = "123"
	assert.ErrorContains(t, numeric.Validate(), "must not be numeric")
}

func TestSelectNumericKeyFallsBackToKey(t *testing.T) {
	reg, err := shard.New(
		shard.NewShard("central", 1, "", nil),
		shard.NewShard("42", 2, "", nil),
	)
	require.NoError(t, err)

	s, err := reg.Select("2")
	require.NoError(t, err)
	assert.Equal(t, "42", s.Key, "centro id wins when it exists")

	s, err = reg.Select("42")
	require.NoError(t, err)
	assert.Equal(t, "42", s.Key)

	_, err = reg.Select("9")
	assert.ErrorIs(t, err, shard.ErrUnknownShard)
}
