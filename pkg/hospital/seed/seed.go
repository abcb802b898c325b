// Package seed loads a small demo dataset into each centro.
package seed

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/marmos91/centromed/internal/logger"
	"github.com/marmos91/centromed/pkg/hospital/models"
	"github.com/marmos91/centromed/pkg/shard"
)

// Medico is a seeded medico with its especialidad given as an index into
// Centro.Especialidades. A negative index means none.
type Medico struct {
	models.Medico
	Especialidad int
}

// Consulta is a seeded consulta referencing Centro.Pacientes and
// Centro.Medicos by index.
type Consulta struct {
	models.Consulta
	Paciente int
	Medico   int
}

// Centro is the dataset of one shard. Rows are inserted in slice order so
// local ids follow it on an empty database.
type Centro struct {
	Especialidades []models.Especialidad
	Medicos        []Medico
	Pacientes      []models.Paciente
	Empleados      []models.Empleado
	Consultas      []Consulta
}

// Result reports what Apply did on one shard.
type Result struct {
	ShardKey string
	Skipped  bool
	Rows     int
	Err      error
}

// Apply loads data[key] into every shard of reg that has an entry. A shard
// that already holds pacientes is skipped, so Apply can run repeatedly.
// Each shard is loaded in its own transaction.
func Apply(ctx context.Context, reg *shard.Registry, data map[string]Centro) []Result {
	var results []Result
	for _, s := range reg.List() {
		c, ok := data[s.Key]
		if !ok {
			logger.Debug("No seed data for shard", logger.KeyShard, s.Key)
			continue
		}
		res := Result{ShardKey: s.Key}
		res.Skipped, res.Rows, res.Err = load(ctx, s, c)
		switch {
		case res.Err != nil:
			logger.Error("Seeding shard failed", logger.KeyShard, s.Key, logger.KeyError, res.Err.Error())
		case res.Skipped:
			logger.Info("Shard already has data, skipping seed", logger.KeyShard, s.Key)
		default:
			logger.Info("Shard seeded", logger.KeyShard, s.Key, logger.KeyRows, res.Rows)
		}
		results = append(results, res)
	}
	return results
}

func load(ctx context.Context, s *shard.Shard, c Centro) (skipped bool, rows int, err error) {
	var existing int64
	if err := s.DB().WithContext(ctx).Model(&models.Paciente{}).Count(&existing).Error; err != nil {
		return false, 0, err
	}
	if existing > 0 {
		return true, 0, nil
	}

	err = s.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		esp := make([]int64, len(c.Especialidades))
		for i := range c.Especialidades {
			e := c.Especialidades[i]
			e.IDCentro = s.CentroID
			if err := tx.Create(&e).Error; err != nil {
				return fmt.Errorf("especialidad %q: %w", e.Nombre, err)
			}
			esp[i] = e.ID
		}

		med := make([]int64, len(c.Medicos))
		for i, m := range c.Medicos {
			row := m.Medico
			row.IDCentro = s.CentroID
			if m.Especialidad >= 0 && m.Especialidad < len(esp) {
				id := esp[m.Especialidad]
				row.IDEspecialidad = &id
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("medico %q: %w", row.Apellidos, err)
			}
			med[i] = row.ID
		}

		pac := make([]int64, len(c.Pacientes))
		for i := range c.Pacientes {
			p := c.Pacientes[i]
			p.IDCentro = s.CentroID
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("paciente %q: %w", p.Cedula, err)
			}
			pac[i] = p.ID
		}

		for i := range c.Empleados {
			e := c.Empleados[i]
			e.IDCentro = s.CentroID
			if err := tx.Create(&e).Error; err != nil {
				return fmt.Errorf("empleado %q: %w", e.Apellidos, err)
			}
		}

		for _, cs := range c.Consultas {
			if cs.Paciente < 0 || cs.Paciente >= len(pac) || cs.Medico < 0 || cs.Medico >= len(med) {
				return fmt.Errorf("consulta %q: reference out of range", cs.Motivo)
			}
			row := cs.Consulta
			row.IDCentro = s.CentroID
			p, m := pac[cs.Paciente], med[cs.Medico]
			row.IDPaciente, row.IDMedico = &p, &m
			if row.Estado == "" {
				row.Estado = models.EstadoPendiente
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("consulta %q: %w", row.Motivo, err)
			}
		}

		rows = len(esp) + len(med) + len(pac) + len(c.Empleados) + len(c.Consultas)
		return nil
	})
	return false, rows, err
}

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

// Demo returns the demo dataset for the central, guayaquil and cuenca
// centros. Pedro Alvarado is the fourth paciente of guayaquil.
func Demo() map[string]Centro {
	return map[string]Centro{
		"central": {
			Especialidades: []models.Especialidad{
				{Nombre: "Medicina General"},
				{Nombre: "Cardiología"},
			},
			Medicos: []Medico{
				{Medico: models.Medico{Nombres: "Carlos", Apellidos: "Andrade", Cedula: "1710034065"}, Especialidad: 0},
				{Medico: models.Medico{Nombres: "Lucía", Apellidos: "Mena", Cedula: "1712345678"}, Especialidad: 1},
			},
			Pacientes: []models.Paciente{
				{Nombres: "Ana", Apellidos: "Torres", Cedula: "1701234567", FechaNacimiento: "1988-04-12", Genero: "F"},
				{Nombres: "Luis", Apellidos: "Vera", Cedula: "1702345678", FechaNacimiento: "1975-11-30", Genero: "M"},
			},
			Empleados: []models.Empleado{
				{Nombres: "Patricia", Apellidos: "Salazar", Cargo: "Recepcionista", Salario: 650},
			},
			Consultas: []Consulta{
				{Consulta: models.Consulta{Fecha: day(2026, time.January, 12, 9), Motivo: "Chequeo anual"}, Paciente: 0, Medico: 0},
				{Consulta: models.Consulta{Fecha: day(2026, time.February, 2, 11), Motivo: "Palpitaciones", Estado: models.EstadoCompletada}, Paciente: 1, Medico: 1},
			},
		},
		"guayaquil": {
			Especialidades: []models.Especialidad{
				{Nombre: "Pediatría"},
			},
			Medicos: []Medico{
				{Medico: models.Medico{Nombres: "Sofía", Apellidos: "Ramírez", Cedula: "0912345678"}, Especialidad: 0},
			},
			Pacientes: []models.Paciente{
				{Nombres: "Rosa", Apellidos: "Macías", Cedula: "0901234567", Genero: "F"},
				{Nombres: "Juan", Apellidos: "Zambrano", Cedula: "0902345678", Genero: "M"},
				{Nombres: "Eva", Apellidos: "Cedeño", Cedula: "0903456789", Genero: "F"},
				{Nombres: "Pedro", Apellidos: "Alvarado", Cedula: "0904567890", FechaNacimiento: "1992-07-08", Genero: "M"},
			},
			Empleados: []models.Empleado{
				{Nombres: "Jorge", Apellidos: "Bravo", Cargo: "Enfermero", Salario: 900},
			},
			Consultas: []Consulta{
				{Consulta: models.Consulta{Fecha: day(2026, time.January, 20, 10), Motivo: "Fiebre", Estado: models.EstadoCompletada}, Paciente: 3, Medico: 0},
				{Consulta: models.Consulta{Fecha: day(2026, time.February, 3, 15), Motivo: "Control de peso"}, Paciente: 0, Medico: 0},
			},
		},
		"cuenca": {
			Especialidades: []models.Especialidad{
				{Nombre: "Traumatología"},
			},
			Medicos: []Medico{
				{Medico: models.Medico{Nombres: "Diego", Apellidos: "Ortiz", Cedula: "0101234567"}, Especialidad: 0},
			},
			Pacientes: []models.Paciente{
				{Nombres: "Marta", Apellidos: "Cárdenas", Cedula: "0102345678", Genero: "F"},
			},
			Consultas: []Consulta{
				{Consulta: models.Consulta{Fecha: day(2026, time.February, 10, 8), Motivo: "Esguince de tobillo"}, Paciente: 0, Medico: 0},
			},
		},
	}
}
