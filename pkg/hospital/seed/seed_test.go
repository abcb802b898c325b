package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/centromed/pkg/hospital/models"
	"github.com/marmos91/centromed/pkg/shard/shardtest"
)

func TestApplyDemo(t *testing.T) {
	reg := shardtest.NewRegistry(t, models.All())

	results := Apply(context.Background(), reg, Demo())
	require.Len(t, results, 3)
	for _, r := range results {
		require.NoError(t, r.Err, r.ShardKey)
		assert.False(t, r.Skipped)
		assert.Positive(t, r.Rows)
	}

	gye := shardtest.MustGet(t, reg, "guayaquil")
	var pedro models.Paciente
	require.NoError(t, gye.DB().First(&pedro, 4).Error)
	assert.Equal(t, "Pedro", pedro.Nombres)
	assert.Equal(t, int64(2), pedro.IDCentro)

	var fiebre models.Consulta
	require.NoError(t, gye.DB().Where("motivo = ?", "Fiebre").First(&fiebre).Error)
	assert.Equal(t, int64(4), *fiebre.IDPaciente)
}

func TestApplyIsIdempotent(t *testing.T) {
	reg := shardtest.NewRegistry(t, models.All())
	ctx := context.Background()

	Apply(ctx, reg, Demo())
	results := Apply(ctx, reg, Demo())
	for _, r := range results {
		require.NoError(t, r.Err)
		assert.True(t, r.Skipped, r.ShardKey)
	}

	var n int64
	require.NoError(t, shardtest.MustGet(t, reg, "central").DB().Model(&models.Paciente{}).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}

func TestApplyRejectsBadReference(t *testing.T) {
	reg := shardtest.NewRegistry(t, models.All(), shardtest.Centros()[0])

	results := Apply(context.Background(), reg, map[string]Centro{
		"central": {
			Pacientes: []models.Paciente{{Nombres: "A", Apellidos: "B", Cedula: "1"}},
			Consultas: []Consulta{{Consulta: models.Consulta{Motivo: "x"}, Paciente: 0, Medico: 3}},
		},
	})
	require.Len(t, results, 1)
	require.Error(t, results[0].Err)

	var n int64
	require.NoError(t, shardtest.MustGet(t, reg, "central").DB().Model(&models.Paciente{}).Count(&n).Error)
	assert.Zero(t, n, "transaction rolled back")
}
