package apiclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntity(t *testing.T) {
	e, err := ParseEntity("consultas")
	require.NoError(t, err)
	assert.Equal(t, Consultas, e)

	_, err = ParseEntity("recetas")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/consultas", r.URL.Path)
		assert.Equal(t, "2026-02-01", r.URL.Query().Get("desde"))
		assert.False(t, r.URL.Query().Has("q"))
		_, _ = w.Write([]byte(`{"data":[{"id":3,"local_id":1,"shard_key":"guayaquil","centro_id":2,` +
			`"centro_nombre":"Centro Médico Guayaquil","motivo":"Fiebre","id_paciente":6}],` +
			`"meta":{"total":1,"shards_consulted":3,"shard_failures":1,"failed_shards":["cuenca"],"partial":true,"mapping_token":"abc"}}`))
	}))
	defer server.Close()

	page, err := New(server.URL).List(Consultas, ListOptions{Desde: "2026-02-01"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)

	rec := page.Data[0]
	assert.Equal(t, int64(3), rec.ID())
	assert.Equal(t, int64(1), rec.LocalID())
	assert.Equal(t, "guayaquil", rec.ShardKey())
	assert.Equal(t, []string{"id_paciente", "motivo"}, rec.Fields())
	assert.True(t, page.Meta.Partial)
	assert.Equal(t, []string{"cuenca"}, page.Meta.FailedShards)
	assert.Equal(t, "abc", page.Meta.MappingToken)
}

func TestCreateSendsSelector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		if r.Header.Get(HeaderCentro) == "" {
			w.Header().Set("Content-Type", "application/problem+json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"title":"Missing Centro Selector","status":400,"code":"missing_shard_selector"}`))
			return
		}
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		body["id"] = 8
		body["shard_key"] = r.Header.Get(HeaderCentro)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": body})
	}))
	defer server.Close()

	client := New(server.URL).WithToken("t")
	fields := map[string]any{"nombres": "Nueva", "apellidos": "Paciente", "cedula": "0912345678"}

	_, err := client.Create(Pacientes, fields)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.True(t, apiErr.IsMissingSelector())

	item, err := client.WithCentro("guayaquil").Create(Pacientes, fields)
	require.NoError(t, err)
	assert.Equal(t, int64(8), item.Data.ID())
	assert.Equal(t, "guayaquil", item.Data.ShardKey())
}

func TestUpdateAndDeleteSendMappingToken(t *testing.T) {
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path+" "+r.Header.Get(HeaderMappingToken))
		if r.Method == http.MethodDelete {
			w.Header().Set("Content-Type", "application/problem+json")
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"title":"Stale Identifier","status":409,"code":"stale_identifier"}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"id":6}}`))
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.Update(Pacientes, 6, map[string]any{"nombres": "Pedro"}, "tok1")
	require.NoError(t, err)

	err = client.Delete(Pacientes, 6, "tok2")
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.True(t, apiErr.IsStale())

	assert.Equal(t, []string{
		"PUT /api/v1/pacientes/6 tok1",
		"DELETE /api/v1/pacientes/6 tok2",
	}, seen)
}

func TestListCentros(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/centros", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"key":"central","centro_id":1,"nombre":"Centro Médico Central","driver":"sqlite"}]}`))
	}))
	defer server.Close()

	centros, err := New(server.URL).ListCentros()
	require.NoError(t, err)
	require.Len(t, centros, 1)
	assert.Equal(t, "central", centros[0].Key)
}

func TestShardsHealthUnhealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unhealthy","data":[` +
			`{"key":"central","centro_id":1,"status":"healthy","latency":"1ms"},` +
			`{"key":"cuenca","centro_id":3,"status":"unhealthy","error":"connection refused","latency":"5s"}]}`))
	}))
	defer server.Close()

	shards, err := New(server.URL).ShardsHealth()
	require.NoError(t, err)
	require.Len(t, shards, 2)
	assert.Equal(t, "unhealthy", shards[1].Status)
	assert.Equal(t, "connection refused", shards[1].Error)
}

func TestResumen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/reports/resumen", r.URL.Path)
		_, _ = w.Write([]byte(`{"centros":[{"shard_key":"guayaquil","centro_id":2,"status":"ok",` +
			`"counts":{"pacientes":4,"medicos":1,"empleados":1,"consultas":2,"consultas_pendientes":1}},` +
			`{"shard_key":"cuenca","centro_id":3,"status":"unavailable","error":"timeout"}],` +
			`"totals":{"pacientes":4,"medicos":1,"empleados":1,"consultas":2,"consultas_pendientes":1}}`))
	}))
	defer server.Close()

	res, err := New(server.URL).Resumen()
	require.NoError(t, err)
	require.Len(t, res.Centros, 2)
	assert.Equal(t, int64(4), res.Centros[0].Counts.Pacientes)
	assert.Nil(t, res.Centros[1].Counts)
	assert.Equal(t, int64(1), res.Totals.ConsultasPendientes)
}
