package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/marmos91/centromed/pkg/fanout"
	"github.com/marmos91/centromed/pkg/globalid"
	"github.com/marmos91/centromed/pkg/hospital/models"
	"github.com/marmos91/centromed/pkg/resolver"
	"github.com/marmos91/centromed/pkg/shard"
	"github.com/marmos91/centromed/pkg/shard/shardtest"
)

var (
	admin     = resolver.Caller{Subject: "admin", Role: models.RolAdmin, Admin: true}
	recepcion = resolver.Caller{Subject: "recepcion.gye", Role: models.RolRecepcion, PinnedShard: "guayaquil"}
)

// setup builds central [2 pacientes], guayaquil [4, Pedro last] and
// cuenca [1], with one medico per centro.
func setup(t *testing.T) (*Catalog, *shard.Registry) {
	t.Helper()
	reg := shardtest.NewRegistry(t, models.All())

	pacientes := map[string][]string{
		"central":   {"Ana", "Luis"},
		"guayaquil": {"Rosa", "Juan", "Eva", "Pedro"},
		"cuenca":    {"Marta"},
	}
	for _, s := range reg.List() {
		for i, nombre := range pacientes[s.Key] {
			p := models.Paciente{Nombres: nombre, Apellidos: "Test", Cedula: s.Key + string(rune('0'+i))}
			p.IDCentro = s.CentroID
			require.NoError(t, s.DB().Create(&p).Error)
		}
		m := models.Medico{Nombres: "Dr", Apellidos: s.Key}
		m.IDCentro = s.CentroID
		require.NoError(t, s.DB().Create(&m).Error)
	}

	cat := NewCatalog(Deps{
		Resolver: resolver.New(reg),
		Executor: fanout.NewExecutor(2*time.Second, nil),
	})
	return cat, reg
}

// countWrites counts create/update/delete statements per shard.
func countWrites(t *testing.T, reg *shard.Registry) map[string]*atomic.Int64 {
	t.Helper()
	counts := map[string]*atomic.Int64{}
	for _, s := range reg.List() {
		c := &atomic.Int64{}
		counts[s.Key] = c
		inc := func(*gorm.DB) { c.Add(1) }
		cb := s.DB().Callback()
		require.NoError(t, cb.Create().After("gorm:create").Register("test:count_create", inc))
		require.NoError(t, cb.Update().After("gorm:update").Register("test:count_update", inc))
		require.NoError(t, cb.Delete().After("gorm:delete").Register("test:count_delete", inc))
	}
	return counts
}

func consultaFor(paciente, medico int64) *models.Consulta {
	return &models.Consulta{
		IDPaciente: &paciente,
		IDMedico:   &medico,
		Fecha:      time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
		Motivo:     "Control",
	}
}

func countRows(t *testing.T, reg *shard.Registry, table string) map[string]int64 {
	t.Helper()
	out := map[string]int64{}
	for _, s := range reg.List() {
		var n int64
		require.NoError(t, s.DB().Table(table).Count(&n).Error)
		out[s.Key] = n
	}
	return out
}

func TestListAdminAssignsDenseGlobalIDs(t *testing.T) {
	cat, _ := setup(t)

	page, err := cat.Pacientes.List(context.Background(), admin, "", Filter{})
	require.NoError(t, err)

	require.Len(t, page.Data, 7)
	for i, r := range page.Data {
		assert.Equal(t, int64(i+1), r.GlobalID)
	}
	pedro := page.Data[5]
	assert.Equal(t, "Pedro", pedro.Entity.Nombres)
	assert.Equal(t, "guayaquil", pedro.ShardKey)
	assert.Equal(t, int64(4), pedro.LocalID)

	assert.Equal(t, 3, page.Meta.ShardsQueried)
	assert.Zero(t, page.Meta.ShardFailures)
	assert.True(t, page.Meta.MappingComplete)
	assert.NotEmpty(t, page.Meta.MappingToken)
}

func TestListSelectorKeepsViewIDs(t *testing.T) {
	cat, _ := setup(t)

	page, err := cat.Pacientes.List(context.Background(), admin, "2", Filter{})
	require.NoError(t, err)

	require.Len(t, page.Data, 4)
	assert.Equal(t, int64(3), page.Data[0].GlobalID)
	assert.Equal(t, int64(6), page.Data[3].GlobalID)
	assert.Equal(t, 1, page.Meta.ShardsQueried)
}

func TestListPinnedCallerSeesOwnView(t *testing.T) {
	cat, _ := setup(t)

	page, err := cat.Pacientes.List(context.Background(), recepcion, "", Filter{})
	require.NoError(t, err)
	require.Len(t, page.Data, 4)
	assert.Equal(t, int64(4), page.Data[3].GlobalID)
	assert.Equal(t, "Pedro", page.Data[3].Entity.Nombres)

	_, err = cat.Pacientes.List(context.Background(), recepcion, "central", Filter{})
	assert.ErrorIs(t, err, resolver.ErrShardMismatch)
}

func TestListFilterInSQL(t *testing.T) {
	cat, _ := setup(t)

	page, err := cat.Pacientes.List(context.Background(), admin, "", Filter{Q: "pedro"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, int64(6), page.Data[0].GlobalID)
	assert.Equal(t, 1, page.Meta.Total)
}

func TestListWithFailedShard(t *testing.T) {
	cat, reg := setup(t)
	shardtest.Break(t, shardtest.MustGet(t, reg, "central"))

	page, err := cat.Pacientes.List(context.Background(), admin, "", Filter{})
	require.NoError(t, err)

	assert.Len(t, page.Data, 5)
	assert.Equal(t, 1, page.Meta.ShardFailures)
	assert.Equal(t, []string{"central"}, page.Meta.FailedShards)
	assert.True(t, page.Meta.Partial)
	assert.False(t, page.Meta.MappingComplete)
}

func TestListAllShardsFailed(t *testing.T) {
	cat, reg := setup(t)
	for _, s := range reg.List() {
		shardtest.Break(t, s)
	}

	_, err := cat.Pacientes.List(context.Background(), admin, "", Filter{})
	assert.ErrorIs(t, err, fanout.ErrAllShardsFailed)
}

func TestGet(t *testing.T) {
	cat, _ := setup(t)

	item, err := cat.Pacientes.Get(context.Background(), admin, "", 6)
	require.NoError(t, err)
	assert.Equal(t, "Pedro", item.Data.Entity.Nombres)
	assert.Equal(t, int64(6), item.Data.GlobalID)

	_, err = cat.Pacientes.Get(context.Background(), admin, "", 8)
	assert.ErrorIs(t, err, globalid.ErrStaleOrUnknownIdentifier)

	_, err = cat.Pacientes.Get(context.Background(), admin, "cuenca", 6)
	assert.ErrorIs(t, err, resolver.ErrShardMismatch)
}

func TestCreateWithoutSelectorIsRejected(t *testing.T) {
	cat, reg := setup(t)
	writes := countWrites(t, reg)

	_, err := cat.Consultas.Create(context.Background(), admin, "", consultaFor(6, 2))
	require.ErrorIs(t, err, resolver.ErrMissingShardSelector)

	for key, n := range writes {
		assert.Zero(t, n.Load(), key)
	}
	assert.Equal(t, map[string]int64{"central": 0, "guayaquil": 0, "cuenca": 0}, countRows(t, reg, "consultas"))
}

func TestCreateRoutesToSelectedShard(t *testing.T) {
	cat, reg := setup(t)
	writes := countWrites(t, reg)

	// paciente 6 is Pedro (guayaquil/4); medico 2 is guayaquil's medico.
	item, err := cat.Consultas.Create(context.Background(), admin, "guayaquil", consultaFor(6, 2))
	require.NoError(t, err)

	assert.Equal(t, int64(1), writes["guayaquil"].Load())
	assert.Zero(t, writes["central"].Load())
	assert.Zero(t, writes["cuenca"].Load())

	assert.Equal(t, "guayaquil", item.Data.ShardKey)
	assert.Equal(t, int64(1), item.Data.GlobalID)
	assert.Equal(t, int64(6), *item.Data.Entity.IDPaciente)
	assert.Equal(t, int64(2), item.Data.Entity.IDCentro)
	assert.Equal(t, models.EstadoPendiente, item.Data.Entity.Estado)
	assert.Equal(t, "view", item.Meta.IDScope)

	var stored models.Consulta
	gye := shardtest.MustGet(t, reg, "guayaquil")
	require.NoError(t, gye.DB().First(&stored).Error)
	assert.Equal(t, int64(4), *stored.IDPaciente)
	assert.Equal(t, int64(1), *stored.IDMedico)
}

func TestCreateOverwritesBodyCentro(t *testing.T) {
	cat, _ := setup(t)

	p := &models.Paciente{Nombres: "Nuevo", Apellidos: "Paciente", Cedula: "0102"}
	p.IDCentro = 1
	item, err := cat.Pacientes.Create(context.Background(), admin, "cuenca", p)
	require.NoError(t, err)

	assert.Equal(t, int64(3), item.Data.Entity.IDCentro)
	assert.Equal(t, "cuenca", item.Data.ShardKey)
	assert.Equal(t, int64(8), item.Data.GlobalID)
}

func TestCreateCrossShardReference(t *testing.T) {
	cat, reg := setup(t)

	_, err := cat.Consultas.Create(context.Background(), admin, "cuenca", consultaFor(6, 3))
	assert.ErrorIs(t, err, ErrCrossShardReference)
	assert.Zero(t, countRows(t, reg, "consultas")["cuenca"])
}

func TestCreateUnknownReference(t *testing.T) {
	cat, _ := setup(t)

	_, err := cat.Consultas.Create(context.Background(), admin, "guayaquil", consultaFor(60, 2))
	assert.ErrorIs(t, err, globalid.ErrStaleOrUnknownIdentifier)
}

func TestCreatePinnedCaller(t *testing.T) {
	cat, _ := setup(t)

	// Pinned view: guayaquil only, Pedro is 4 and the medico is 1.
	item, err := cat.Consultas.Create(context.Background(), recepcion, "", consultaFor(4, 1))
	require.NoError(t, err)
	assert.Equal(t, "guayaquil", item.Data.ShardKey)

	_, err = cat.Consultas.Create(context.Background(), recepcion, "cuenca", consultaFor(4, 1))
	assert.ErrorIs(t, err, resolver.ErrShardMismatch)
}

func TestCreatePinnedMismatchWritesNothing(t *testing.T) {
	cat, reg := setup(t)
	cuenca := resolver.Caller{Subject: "recepcion.cue", Role: models.RolRecepcion, PinnedShard: "cuenca"}
	before := countRows(t, reg, "consultas")
	writes := countWrites(t, reg)

	_, err := cat.Consultas.Create(context.Background(), cuenca, "guayaquil", consultaFor(1, 1))
	require.ErrorIs(t, err, resolver.ErrShardMismatch)

	for key, n := range writes {
		assert.Zero(t, n.Load(), "statements on %s", key)
	}
	assert.Equal(t, before, countRows(t, reg, "consultas"))
	assert.Zero(t, countRows(t, reg, "consultas")["guayaquil"])
	assert.Zero(t, countRows(t, reg, "consultas")["cuenca"])
}

func TestCreateValidation(t *testing.T) {
	cat, _ := setup(t)

	_, err := cat.Pacientes.Create(context.Background(), admin, "central", &models.Paciente{Nombres: "Sin"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "apellidos")
	assert.Contains(t, verr.Fields, "cedula")
}

func TestUpdateTouchesOnlyOwningShard(t *testing.T) {
	cat, reg := setup(t)
	writes := countWrites(t, reg)

	item, err := cat.Pacientes.Update(context.Background(), admin, "", 6, "", &models.Paciente{
		Nombres: "Pedro Pablo", Apellidos: "Test", Cedula: "guayaquil3",
	})
	require.NoError(t, err)

	assert.Equal(t, "Pedro Pablo", item.Data.Entity.Nombres)
	assert.Equal(t, int64(6), item.Data.GlobalID)
	assert.Equal(t, int64(1), writes["guayaquil"].Load())
	assert.Zero(t, writes["central"].Load())
	assert.Zero(t, writes["cuenca"].Load())

	var stored models.Paciente
	require.NoError(t, shardtest.MustGet(t, reg, "guayaquil").DB().First(&stored, 4).Error)
	assert.Equal(t, "Pedro Pablo", stored.Nombres)
	assert.Equal(t, int64(2), stored.IDCentro)
}

func TestUpdateMappingToken(t *testing.T) {
	cat, reg := setup(t)
	ctx := context.Background()

	page, err := cat.Pacientes.List(ctx, admin, "", Filter{})
	require.NoError(t, err)
	token := page.Meta.MappingToken

	// A new row in central shifts every guayaquil id by one.
	p := models.Paciente{Nombres: "Otro", Apellidos: "Test", Cedula: "x"}
	require.NoError(t, shardtest.MustGet(t, reg, "central").DB().Create(&p).Error)

	_, err = cat.Pacientes.Update(ctx, admin, "", 6, token, &models.Paciente{Nombres: "X", Apellidos: "Y", Cedula: "z"})
	assert.ErrorIs(t, err, globalid.ErrStaleOrUnknownIdentifier)
	assert.ErrorIs(t, err, ErrMappingTokenMismatch)
}

func TestMutationRefusedWithIncompleteMapping(t *testing.T) {
	cat, reg := setup(t)
	shardtest.Break(t, shardtest.MustGet(t, reg, "central"))

	err := cat.Pacientes.Delete(context.Background(), admin, "", 7, "")
	assert.ErrorIs(t, err, ErrMappingIncomplete)
}

func TestDelete(t *testing.T) {
	cat, reg := setup(t)
	writes := countWrites(t, reg)

	require.NoError(t, cat.Pacientes.Delete(context.Background(), admin, "", 7, ""))
	assert.Equal(t, int64(1), writes["cuenca"].Load())
	assert.Zero(t, countRows(t, reg, "pacientes")["cuenca"])

	err := cat.Pacientes.Delete(context.Background(), admin, "", 7, "")
	assert.ErrorIs(t, err, globalid.ErrStaleOrUnknownIdentifier)
}

func TestDeleteSelectorMismatch(t *testing.T) {
	cat, reg := setup(t)

	err := cat.Pacientes.Delete(context.Background(), admin, "central", 6, "")
	assert.ErrorIs(t, err, resolver.ErrShardMismatch)
	assert.Equal(t, int64(4), countRows(t, reg, "pacientes")["guayaquil"])
}

func TestConsultaDateFilter(t *testing.T) {
	cat, _ := setup(t)
	ctx := context.Background()

	for _, day := range []int{1, 15, 28} {
		c := consultaFor(6, 2)
		c.Fecha = time.Date(2026, 2, day, 10, 0, 0, 0, time.UTC)
		_, err := cat.Consultas.Create(ctx, admin, "guayaquil", c)
		require.NoError(t, err)
	}

	desde := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	hasta := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	page, err := cat.Consultas.List(ctx, admin, "", Filter{Desde: &desde, Hasta: &hasta})
	require.NoError(t, err)

	require.Len(t, page.Data, 1)
	assert.Equal(t, int64(2), page.Data[0].GlobalID)
	assert.Equal(t, int64(6), *page.Data[0].Entity.IDPaciente, "references are reported as global ids")
}

func TestConsultaDateFilterWithOffsets(t *testing.T) {
	cat, reg := setup(t)
	ctx := context.Background()
	ecuador := time.FixedZone("ECT", -5*3600)

	// 04:30 in Guayaquil is 09:30Z.
	c := consultaFor(6, 2)
	c.Fecha = time.Date(2026, 3, 10, 4, 30, 0, 0, ecuador)
	item, err := cat.Consultas.Create(ctx, admin, "guayaquil", c)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, item.Data.Entity.Fecha.Location())

	var stored models.Consulta
	require.NoError(t, shardtest.MustGet(t, reg, "guayaquil").DB().First(&stored, item.Data.LocalID).Error)
	assert.True(t, stored.Fecha.Equal(time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)))

	tests := []struct {
		name  string
		desde time.Time
		want  int
	}{
		{"after in local time", time.Date(2026, 3, 10, 6, 0, 0, 0, ecuador), 0},
		{"before in local time", time.Date(2026, 3, 10, 4, 0, 0, 0, ecuador), 1},
		{"after in another zone", time.Date(2026, 3, 10, 10, 0, 0, 0, time.FixedZone("CET", 3600)), 0},
		{"before in utc", time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desde := tt.desde
			page, err := cat.Consultas.List(ctx, admin, "", Filter{Desde: &desde})
			require.NoError(t, err)
			assert.Len(t, page.Data, tt.want)
		})
	}
}

func TestUsuarioLifecycle(t *testing.T) {
	cat, reg := setup(t)
	ctx := context.Background()

	u := &models.Usuario{Username: "recepgye", Password: "secreto-seguro", Rol: models.RolRecepcion}
	item, err := cat.Usuarios.Create(ctx, admin, "guayaquil", u)
	require.NoError(t, err)
	assert.Empty(t, item.Data.Entity.Password)
	assert.True(t, item.Data.Entity.Active())

	acct, err := cat.Authenticate(ctx, "recepgye", "secreto-seguro")
	require.NoError(t, err)
	assert.Equal(t, "guayaquil", acct.Shard.Key)

	_, err = cat.Authenticate(ctx, "recepgye", "incorrecto")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	// Updating without a password keeps the stored hash.
	_, err = cat.Usuarios.Update(ctx, admin, "", item.Data.GlobalID, "", &models.Usuario{Username: "recepgye", Rol: models.RolMedico})
	require.NoError(t, err)
	acct, err = cat.Authenticate(ctx, "recepgye", "secreto-seguro")
	require.NoError(t, err)
	assert.Equal(t, models.RolMedico, acct.Usuario.Rol)

	var stored models.Usuario
	require.NoError(t, shardtest.MustGet(t, reg, "guayaquil").DB().First(&stored).Error)
	assert.NotNil(t, stored.UltimoAcceso)

	_, err = cat.Usuarios.Create(ctx, admin, "central", &models.Usuario{Username: "sinclave", Rol: models.RolRecepcion})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "password")
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "missing_selector", Outcome(resolver.ErrMissingShardSelector))
	assert.Equal(t, "stale_id", Outcome(ErrMappingTokenMismatch))
	assert.Equal(t, "mapping_incomplete", Outcome(&incompleteError{table: "x"}))
	assert.Equal(t, "invalid", Outcome(invalid("a", "b")))
}
