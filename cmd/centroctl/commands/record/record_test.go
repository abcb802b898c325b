package record

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/centromed/internal/cli/output"
	"github.com/marmos91/centromed/pkg/apiclient"
)

func TestColumns(t *testing.T) {
	for _, e := range apiclient.Entities() {
		cols := Columns(e)
		assert.Equal(t, "id", cols[0], e)
		assert.Equal(t, "shard_key", cols[len(cols)-1], e)
		assert.Greater(t, len(cols), 2, e)
	}
}

func TestDescribe(t *testing.T) {
	r := apiclient.Record{"id": float64(6), "nombres": "Pedro", "apellidos": "Mora", "shard_key": "guayaquil"}
	assert.Equal(t, `paciente 6 "Pedro Mora" (guayaquil)`, describe(apiclient.Pacientes, r))

	r = apiclient.Record{"id": float64(2), "nombre": "Cardiologia"}
	assert.Equal(t, `especialidad 2 "Cardiologia"`, describe(apiclient.Especialidades, r))
}

func TestPrintPageWarnsOnPartial(t *testing.T) {
	var buf bytes.Buffer
	p := output.NewPrinter(&buf, output.FormatTable)
	page := &apiclient.Page{
		Data: []apiclient.Record{{"id": float64(1), "nombre": "Pediatria", "shard_key": "central"}},
		Meta: apiclient.Meta{Total: 1, ShardsQueried: 3, FailedShards: []string{"cuenca"}, Partial: true},
	}

	require.NoError(t, PrintPage(p, apiclient.Especialidades, page, Columns(apiclient.Especialidades)))
	out := buf.String()
	assert.Contains(t, out, "Pediatria")
	assert.Contains(t, out, "1 especialidades from 3 centros")
	assert.Contains(t, out, "cuenca did not respond")
}

func TestPrintItem(t *testing.T) {
	var buf bytes.Buffer
	p := output.NewPrinter(&buf, output.FormatTable)
	item := &apiclient.Item{Data: apiclient.Record{
		"id": float64(6), "local_id": float64(4), "shard_key": "guayaquil",
		"centro_nombre": "Centro Médico Guayaquil", "cedula": "0912345678",
	}}

	require.NoError(t, PrintItem(p, item))
	assert.Contains(t, buf.String(), "guayaquil (Centro Médico Guayaquil)")
	assert.Contains(t, buf.String(), "0912345678")
}
