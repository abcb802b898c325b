package service

import (
	"github.com/marmos91/centromed/pkg/hospital/models"
)

// Catalog holds the service of every entity.
type Catalog struct {
	Especialidades *Service[models.Especialidad, *models.Especialidad]
	Medicos        *Service[models.Medico, *models.Medico]
	Pacientes      *Service[models.Paciente, *models.Paciente]
	Empleados      *Service[models.Empleado, *models.Empleado]
	Consultas      *Service[models.Consulta, *models.Consulta]
	Usuarios       *Service[models.Usuario, *models.Usuario]

	deps Deps
}

// NewCatalog wires every entity service to deps.
func NewCatalog(deps Deps) *Catalog {
	if deps.Validate == nil {
		deps.Validate = NewValidator()
	}
	return &Catalog{
		Especialidades: New[models.Especialidad](deps, especialidades),
		Medicos:        New[models.Medico](deps, medicos),
		Pacientes:      New[models.Paciente](deps, pacientes),
		Empleados:      New[models.Empleado](deps, empleados),
		Consultas:      New[models.Consulta](deps, consultas),
		Usuarios:       New[models.Usuario](deps, usuarios),
		deps:           deps,
	}
}

var especialidades = Descriptor[models.Especialidad]{
	Name:    "especialidades",
	Search:  []string{"nombre", "descripcion"},
	Columns: []string{"nombre", "descripcion"},
}

var medicos = Descriptor[models.Medico]{
	Name:    "medicos",
	Search:  []string{"nombres", "apellidos", "cedula", "email"},
	Columns: []string{"nombres", "apellidos", "cedula", "telefono", "email", "id_especialidad"},
	Refs: []Ref[models.Medico]{{
		Column: "id_especialidad",
		Table:  "especialidades",
		Get:    func(m *models.Medico) *int64 { return m.IDEspecialidad },
		Set:    func(m *models.Medico, v *int64) { m.IDEspecialidad = v },
	}},
}

var pacientes = Descriptor[models.Paciente]{
	Name:    "pacientes",
	Search:  []string{"nombres", "apellidos", "cedula", "email"},
	Columns: []string{"nombres", "apellidos", "cedula", "fecha_nacimiento", "genero", "telefono", "email", "direccion"},
}

var empleados = Descriptor[models.Empleado]{
	Name:    "empleados",
	Search:  []string{"nombres", "apellidos", "cedula", "cargo"},
	Columns: []string{"nombres", "apellidos", "cedula", "cargo", "salario", "telefono", "email"},
}

var consultas = Descriptor[models.Consulta]{
	Name:       "consultas",
	Search:     []string{"motivo", "diagnostico", "estado"},
	DateColumn: "fecha",
	Columns:    []string{"id_paciente", "id_medico", "fecha", "motivo", "diagnostico", "tratamiento", "estado"},
	Refs: []Ref[models.Consulta]{
		{
			Column: "id_paciente",
			Table:  "pacientes",
			Get:    func(c *models.Consulta) *int64 { return c.IDPaciente },
			Set:    func(c *models.Consulta, v *int64) { c.IDPaciente = v },
		},
		{
			Column: "id_medico",
			Table:  "medicos",
			Get:    func(c *models.Consulta) *int64 { return c.IDMedico },
			Set:    func(c *models.Consulta, v *int64) { c.IDMedico = v },
		},
	},
	Prepare: func(c *models.Consulta, _ *models.Consulta) error {
		if c.Estado == "" {
			c.Estado = models.EstadoPendiente
		}
		c.Fecha = c.Fecha.UTC()
		return nil
	},
}

var usuarios = Descriptor[models.Usuario]{
	Name:    "usuarios",
	Search:  []string{"username", "rol"},
	Columns: []string{"username", "password_hash", "rol", "id_medico", "activo"},
	Refs: []Ref[models.Usuario]{{
		Column: "id_medico",
		Table:  "medicos",
		Get:    func(u *models.Usuario) *int64 { return u.IDMedico },
		Set:    func(u *models.Usuario, v *int64) { u.IDMedico = v },
	}},
	Prepare:  prepareUsuario,
	Sanitize: func(u *models.Usuario) { u.Password = "" },
}

// prepareUsuario hashes a submitted password. On update an omitted password
// keeps the stored hash.
func prepareUsuario(u *models.Usuario, existing *models.Usuario) error {
	if u.Activo == nil {
		active := true
		if existing != nil && existing.Activo != nil {
			active = *existing.Activo
		}
		u.Activo = &active
	}

	if u.Password == "" {
		if existing == nil {
			return invalid("password", "is required")
		}
		u.PasswordHash = existing.PasswordHash
		return nil
	}
	hash, err := models.HashPassword(u.Password)
	if err != nil {
		return invalid("password", err.Error())
	}
	u.PasswordHash = hash
	u.Password = ""
	return nil
}
