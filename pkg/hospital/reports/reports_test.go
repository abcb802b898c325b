package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/centromed/pkg/fanout"
	"github.com/marmos91/centromed/pkg/hospital/models"
	"github.com/marmos91/centromed/pkg/hospital/seed"
	"github.com/marmos91/centromed/pkg/resolver"
	"github.com/marmos91/centromed/pkg/shard"
	"github.com/marmos91/centromed/pkg/shard/shardtest"
)

var admin = resolver.Caller{Subject: "admin", Role: models.RolAdmin, Admin: true}

func setup(t *testing.T) (*Reports, *shard.Registry) {
	t.Helper()
	reg := shardtest.NewRegistry(t, models.All())
	for _, r := range seed.Apply(context.Background(), reg, seed.Demo()) {
		require.NoError(t, r.Err)
	}
	return New(resolver.New(reg), fanout.NewExecutor(2*time.Second, nil)), reg
}

func TestConsultasAcrossCentros(t *testing.T) {
	rep, _ := setup(t)

	page, err := rep.Consultas(context.Background(), admin, "", nil, nil)
	require.NoError(t, err)
	require.Len(t, page.Data, 5)

	fiebre := page.Data[2]
	assert.Equal(t, int64(3), fiebre.GlobalID)
	assert.Equal(t, "guayaquil", fiebre.ShardKey)
	assert.Equal(t, "Fiebre", fiebre.Entity.Motivo)
	assert.Equal(t, "Pedro", fiebre.Entity.PacienteNombres)
	assert.Equal(t, int64(6), fiebre.Entity.IDPaciente)
	assert.Equal(t, int64(3), fiebre.Entity.IDMedico)
	require.NotNil(t, fiebre.Entity.Especialidad)
	assert.Equal(t, "Pediatría", *fiebre.Entity.Especialidad)

	assert.True(t, page.Meta.MappingComplete)
	assert.False(t, page.Meta.Partial)
}

func TestConsultasDateRange(t *testing.T) {
	rep, _ := setup(t)

	desde := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	hasta := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
	page, err := rep.Consultas(context.Background(), admin, "", &desde, &hasta)
	require.NoError(t, err)

	ids := make([]int64, len(page.Data))
	for i, r := range page.Data {
		ids[i] = r.GlobalID
	}
	assert.Equal(t, []int64{2, 4}, ids)
}

func TestConsultasDateRangeWithOffset(t *testing.T) {
	rep, _ := setup(t)

	// 06:30 in Guayaquil is 11:30Z, after the 11:00Z consulta of Feb 2.
	desde := time.Date(2026, 2, 2, 6, 30, 0, 0, time.FixedZone("ECT", -5*3600))
	hasta := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
	page, err := rep.Consultas(context.Background(), admin, "", &desde, &hasta)
	require.NoError(t, err)

	require.Len(t, page.Data, 1)
	assert.Equal(t, int64(4), page.Data[0].GlobalID)
}

func TestConsultasKeepRowsWithDeletedPaciente(t *testing.T) {
	rep, reg := setup(t)
	gye := shardtest.MustGet(t, reg, "guayaquil")
	require.NoError(t, gye.DB().Delete(&models.Paciente{}, 4).Error)

	page, err := rep.Consultas(context.Background(), admin, "", nil, nil)
	require.NoError(t, err)
	require.Len(t, page.Data, 5)

	fiebre := page.Data[2]
	assert.Equal(t, "Fiebre", fiebre.Entity.Motivo)
	assert.Empty(t, fiebre.Entity.PacienteNombres)
	assert.Zero(t, fiebre.Entity.IDPaciente)
	assert.NotEmpty(t, fiebre.Entity.MedicoNombres)
}

func TestConsultasPinnedView(t *testing.T) {
	rep, _ := setup(t)
	pinned := resolver.Caller{Subject: "sofia", Role: models.RolMedico, PinnedShard: "guayaquil"}

	page, err := rep.Consultas(context.Background(), pinned, "", nil, nil)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, int64(1), page.Data[0].GlobalID)
	assert.Equal(t, int64(4), page.Data[0].Entity.IDPaciente)

	_, err = rep.Consultas(context.Background(), pinned, "cuenca", nil, nil)
	assert.ErrorIs(t, err, resolver.ErrShardMismatch)
}

func TestResumen(t *testing.T) {
	rep, _ := setup(t)

	res, err := rep.Resumen(context.Background(), admin, "")
	require.NoError(t, err)
	require.Len(t, res.Centros, 3)

	gye := res.Centros[1]
	assert.Equal(t, "guayaquil", gye.ShardKey)
	assert.Equal(t, StatusOK, gye.Status)
	require.NotNil(t, gye.Counts)
	assert.Equal(t, Counts{Pacientes: 4, Medicos: 1, Empleados: 1, Consultas: 2, ConsultasPendientes: 1}, *gye.Counts)

	assert.Equal(t, int64(7), res.Totals.Pacientes)
	assert.Equal(t, int64(3), res.Totals.ConsultasPendientes)
}

func TestResumenWithUnavailableCentro(t *testing.T) {
	rep, reg := setup(t)
	shardtest.Break(t, shardtest.MustGet(t, reg, "cuenca"))

	res, err := rep.Resumen(context.Background(), admin, "")
	require.NoError(t, err)

	cuenca := res.Centros[2]
	assert.Equal(t, StatusUnavailable, cuenca.Status)
	assert.NotEmpty(t, cuenca.Error)
	assert.Nil(t, cuenca.Counts)

	assert.Equal(t, int64(6), res.Totals.Pacientes)
	assert.Equal(t, []string{"cuenca"}, res.Meta.FailedShards)
	assert.True(t, res.Meta.Partial)
}
