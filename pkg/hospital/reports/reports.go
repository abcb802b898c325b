// Package reports runs read-only cross-centro queries. Each query runs on
// every shard in scope and the parts are merged in registry order.
package reports

import (
	"context"
	"strings"
	"time"

	"github.com/marmos91/centromed/internal/logger"
	"github.com/marmos91/centromed/pkg/fanout"
	"github.com/marmos91/centromed/pkg/globalid"
	"github.com/marmos91/centromed/pkg/hospital/models"
	"github.com/marmos91/centromed/pkg/hospital/service"
	"github.com/marmos91/centromed/pkg/resolver"
	"github.com/marmos91/centromed/pkg/shard"
)

// Reports serves the report queries.
type Reports struct {
	resolver *resolver.Resolver
	executor *fanout.Executor
}

// New creates a Reports.
func New(r *resolver.Resolver, e *fanout.Executor) *Reports {
	return &Reports{resolver: r, executor: e}
}

// ConsultaRow is a consulta joined with its paciente, medico and
// especialidad. IDPaciente and IDMedico are global ids of the caller's view.
type ConsultaRow struct {
	ID                int64     `gorm:"column:id" json:"-"`
	Fecha             time.Time `gorm:"column:fecha" json:"fecha"`
	Motivo            string    `gorm:"column:motivo" json:"motivo"`
	Estado            string    `gorm:"column:estado" json:"estado"`
	PacienteID        int64     `gorm:"column:paciente_id" json:"-"`
	PacienteNombres   string    `gorm:"column:paciente_nombres" json:"paciente_nombres"`
	PacienteApellidos string    `gorm:"column:paciente_apellidos" json:"paciente_apellidos"`
	MedicoID          int64     `gorm:"column:medico_id" json:"-"`
	MedicoNombres     string    `gorm:"column:medico_nombres" json:"medico_nombres"`
	MedicoApellidos   string    `gorm:"column:medico_apellidos" json:"medico_apellidos"`
	Especialidad      *string   `gorm:"column:especialidad" json:"especialidad,omitempty"`

	IDPaciente int64 `gorm:"-" json:"id_paciente,omitempty"`
	IDMedico   int64 `gorm:"-" json:"id_medico,omitempty"`
}

func (r ConsultaRow) LocalID() int64 { return r.ID }

// consultasSQL keeps consultas whose paciente or medico was deleted; their
// names come back empty and their reference ids zero.
const consultasSQL = `SELECT c.id, c.fecha, c.motivo, c.estado,
	COALESCE(p.id, 0) AS paciente_id,
	COALESCE(p.nombres, '') AS paciente_nombres, COALESCE(p.apellidos, '') AS paciente_apellidos,
	COALESCE(m.id, 0) AS medico_id,
	COALESCE(m.nombres, '') AS medico_nombres, COALESCE(m.apellidos, '') AS medico_apellidos,
	e.nombre AS especialidad
FROM consultas c
LEFT JOIN pacientes p ON p.id = c.id_paciente
LEFT JOIN medicos m ON m.id = c.id_medico
LEFT JOIN especialidades e ON e.id = m.id_especialidad`

// Consultas lists consultas with fecha in [desde, hasta) across the
// caller's scope. Either bound may be nil. Rows carry the consulta's global
// id and the global ids of the paciente and medico.
func (r *Reports) Consultas(ctx context.Context, c resolver.Caller, selector string, desde, hasta *time.Time) (*service.Page[ConsultaRow], error) {
	view, err := r.resolver.View(c)
	if err != nil {
		return nil, err
	}
	scope, err := r.resolver.Scope(c, selector)
	if err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if desde != nil {
		where = append(where, "c.fecha >= ?")
		args = append(args, desde.UTC())
	}
	if hasta != nil {
		where = append(where, "c.fecha < ?")
		args = append(args, hasta.UTC())
	}
	sql := consultasSQL
	if len(where) > 0 {
		sql += "\nWHERE " + strings.Join(where, " AND ")
	}
	sql += "\nORDER BY c.id ASC"

	res, err := fanout.Raw[ConsultaRow](ctx, r.executor, "reports.consultas", scope, sql, args...)
	if err != nil {
		return nil, err
	}
	failed := newFailures(res.FailedKeys())

	consultas, err := r.mapping(ctx, view, "consultas", failed)
	if err != nil {
		return nil, err
	}
	pacientes, _ := r.mapping(ctx, view, "pacientes", failed)
	medicos, _ := r.mapping(ctx, view, "medicos", failed)

	records := globalid.Decorate(consultas, res.Parts)
	for i := range records {
		row := &records[i].Entity
		if pacientes != nil {
			row.IDPaciente, _ = pacientes.GlobalID(globalid.Location{ShardKey: records[i].ShardKey, LocalID: row.PacienteID})
		}
		if medicos != nil {
			row.IDMedico, _ = medicos.GlobalID(globalid.Location{ShardKey: records[i].ShardKey, LocalID: row.MedicoID})
		}
	}
	if records == nil {
		records = []globalid.Record[ConsultaRow]{}
	}

	return &service.Page[ConsultaRow]{
		Data: records,
		Meta: service.Meta{
			Total:           len(records),
			ShardsQueried:   len(scope),
			ShardFailures:   len(failed.keys),
			FailedShards:    failed.keys,
			Partial:         len(failed.keys) > 0,
			MappingToken:    consultas.Token(),
			MappingComplete: consultas.Complete(),
			IDScope:         "response",
		},
	}, nil
}

func (r *Reports) mapping(ctx context.Context, view []*shard.Shard, table string, failed *failures) (*globalid.Mapping, error) {
	keys, err := fanout.Keys(ctx, r.executor, view, table)
	if err != nil {
		logger.WarnCtx(ctx, "Report id mapping unavailable", logger.KeyMapping, table, logger.KeyError, err.Error())
		return nil, err
	}
	failed.add(keys.FailedKeys()...)
	return globalid.FromKeys(table, keys.Parts), nil
}

// Counts are the row counts of one centro.
type Counts struct {
	Pacientes           int64 `gorm:"column:pacientes" json:"pacientes"`
	Medicos             int64 `gorm:"column:medicos" json:"medicos"`
	Empleados           int64 `gorm:"column:empleados" json:"empleados"`
	Consultas           int64 `gorm:"column:consultas" json:"consultas"`
	ConsultasPendientes int64 `gorm:"column:consultas_pendientes" json:"consultas_pendientes"`
}

func (c *Counts) add(o Counts) {
	c.Pacientes += o.Pacientes
	c.Medicos += o.Medicos
	c.Empleados += o.Empleados
	c.Consultas += o.Consultas
	c.ConsultasPendientes += o.ConsultasPendientes
}

// Centro status values.
const (
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"
)

// CentroResumen is one centro's line of the summary.
type CentroResumen struct {
	ShardKey  string  `json:"shard_key"`
	CentroID  int64   `json:"centro_id"`
	Nombre    string  `json:"centro_nombre"`
	Status    string  `json:"status"`
	Error     string  `json:"error,omitempty"`
	LatencyMs float64 `json:"latency_ms"`
	Counts    *Counts `json:"counts,omitempty"`
}

// Resumen is the per-centro summary. Totals only include available centros.
type Resumen struct {
	Centros []CentroResumen `json:"centros"`
	Totals  Counts          `json:"totals"`
	Meta    service.Meta    `json:"meta"`
}

const resumenSQL = `SELECT
	(SELECT COUNT(*) FROM pacientes) AS pacientes,
	(SELECT COUNT(*) FROM medicos) AS medicos,
	(SELECT COUNT(*) FROM empleados) AS empleados,
	(SELECT COUNT(*) FROM consultas) AS consultas,
	(SELECT COUNT(*) FROM consultas WHERE estado = ?) AS consultas_pendientes`

// Resumen counts rows per centro in the caller's scope.
func (r *Reports) Resumen(ctx context.Context, c resolver.Caller, selector string) (*Resumen, error) {
	scope, err := r.resolver.Scope(c, selector)
	if err != nil {
		return nil, err
	}

	res, err := fanout.Raw[Counts](ctx, r.executor, "reports.resumen", scope, resumenSQL, models.EstadoPendiente)
	if err != nil {
		return nil, err
	}

	out := &Resumen{Centros: make([]CentroResumen, 0, len(res.Parts))}
	for _, p := range res.Parts {
		line := CentroResumen{
			ShardKey:  p.Shard.Key,
			CentroID:  p.Shard.CentroID,
			Nombre:    p.Shard.DisplayName(),
			Status:    StatusOK,
			LatencyMs: float64(p.Duration.Microseconds()) / 1000,
		}
		switch {
		case p.Err != nil:
			line.Status = StatusUnavailable
			line.Error = p.Err.Error()
		case len(p.Rows) > 0:
			counts := p.Rows[0]
			line.Counts = &counts
			out.Totals.add(counts)
		default:
			line.Counts = &Counts{}
		}
		out.Centros = append(out.Centros, line)
	}

	failed := res.FailedKeys()
	out.Meta = service.Meta{
		Total:         len(out.Centros),
		ShardsQueried: len(scope),
		ShardFailures: len(failed),
		FailedShards:  failed,
		Partial:       len(failed) > 0,
		IDScope:       "response",
	}
	return out, nil
}

type failures struct {
	keys []string
	seen map[string]bool
}

func newFailures(keys []string) *failures {
	f := &failures{seen: map[string]bool{}}
	f.add(keys...)
	return f
}

func (f *failures) add(keys ...string) {
	for _, k := range keys {
		if !f.seen[k] {
			f.seen[k] = true
			f.keys = append(f.keys, k)
		}
	}
}
