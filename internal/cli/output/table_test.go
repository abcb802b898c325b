package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintTable(t *testing.T) {
	table := NewTableData("id", "nombre")
	table.AddRow("1", "Ana Torres")
	table.AddRow("2", "Luis Vera")

	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, table))

	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "NOMBRE")
	assert.Contains(t, out, "Ana Torres")
	assert.Contains(t, out, "Luis Vera")
}

func TestPrintKeyValues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintKeyValues(&buf, [][2]string{{"Centro", "cuenca"}, {"Rol", "admin"}}))
	assert.Contains(t, buf.String(), "cuenca")
	assert.Contains(t, buf.String(), "Rol")
}

func TestMapTable(t *testing.T) {
	items := []map[string]any{
		{"id": float64(6), "nombre": "Pedro", "activo": true},
		{"id": float64(7), "telefono": nil},
	}
	table := MapTable([]string{"id", "nombre", "activo", "telefono"}, items)

	require.Len(t, table.Rows(), 2)
	assert.Equal(t, []string{"6", "Pedro", "yes", "-"}, table.Rows()[0])
	assert.Equal(t, []string{"7", "-", "-", "-"}, table.Rows()[1])
}

func TestCell(t *testing.T) {
	assert.Equal(t, "2.5", Cell(2.5))
	assert.Equal(t, "no", Cell(false))
	assert.Equal(t, "-", Cell(""))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "a b", Truncate("a\nb", 10))
}
