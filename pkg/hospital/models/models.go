// Package models defines the tables every centro database carries.
//
// Each table has an auto-increment id unique only within its shard and an
// id_centro column the server fills from the shard the row was written to.
// Reference columns (id_paciente, id_medico, id_especialidad) hold local ids
// of the same shard.
package models

import "time"

// Base is embedded by every shard table.
type Base struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	IDCentro  int64     `gorm:"column:id_centro;not null;index" json:"id_centro"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// LocalID returns the shard-local primary key.
func (b Base) LocalID() int64 { return b.ID }

// SetLocalID sets the shard-local primary key.
func (b *Base) SetLocalID(id int64) { b.ID = id }

// SetIDCentro stamps the owning centro.
func (b *Base) SetIDCentro(id int64) { b.IDCentro = id }

// All returns every model for AutoMigrate, parents before children.
func All() []any {
	return []any{
		&Especialidad{},
		&Medico{},
		&Paciente{},
		&Empleado{},
		&Consulta{},
		&Usuario{},
	}
}

// Especialidad is a medical specialty.
type Especialidad struct {
	Base
	Nombre      string `gorm:"size:100;not null" json:"nombre" validate:"required,max=100"`
	Descripcion string `gorm:"size:500" json:"descripcion,omitempty" validate:"max=500"`
}

func (Especialidad) TableName() string { return "especialidades" }

// Medico is a doctor working at one centro.
type Medico struct {
	Base
	Nombres        string `gorm:"size:100;not null" json:"nombres" validate:"required,max=100"`
	Apellidos      string `gorm:"size:100;not null" json:"apellidos" validate:"required,max=100"`
	Cedula         string `gorm:"size:20;index" json:"cedula,omitempty" validate:"omitempty,max=20"`
	Telefono       string `gorm:"size:20" json:"telefono,omitempty" validate:"omitempty,max=20"`
	Email          string `gorm:"size:150" json:"email,omitempty" validate:"omitempty,email,max=150"`
	IDEspecialidad *int64 `gorm:"column:id_especialidad;index" json:"id_especialidad,omitempty"`
}

func (Medico) TableName() string { return "medicos" }

// Paciente is a patient registered at one centro.
type Paciente struct {
	Base
	Nombres         string `gorm:"size:100;not null" json:"nombres" validate:"required,max=100"`
	Apellidos       string `gorm:"size:100;not null" json:"apellidos" validate:"required,max=100"`
	Cedula          string `gorm:"size:20;not null;index" json:"cedula" validate:"required,max=20"`
	FechaNacimiento string `gorm:"size:10" json:"fecha_nacimiento,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Genero          string `gorm:"size:1" json:"genero,omitempty" validate:"omitempty,oneof=M F O"`
	Telefono        string `gorm:"size:20" json:"telefono,omitempty" validate:"omitempty,max=20"`
	Email           string `gorm:"size:150" json:"email,omitempty" validate:"omitempty,email,max=150"`
	Direccion       string `gorm:"size:255" json:"direccion,omitempty" validate:"max=255"`
}

func (Paciente) TableName() string { return "pacientes" }

// Empleado is non-medical staff.
type Empleado struct {
	Base
	Nombres   string  `gorm:"size:100;not null" json:"nombres" validate:"required,max=100"`
	Apellidos string  `gorm:"size:100;not null" json:"apellidos" validate:"required,max=100"`
	Cedula    string  `gorm:"size:20;index" json:"cedula,omitempty" validate:"omitempty,max=20"`
	Cargo     string  `gorm:"size:100;not null" json:"cargo" validate:"required,max=100"`
	Salario   float64 `json:"salario,omitempty" validate:"gte=0"`
	Telefono  string  `gorm:"size:20" json:"telefono,omitempty" validate:"omitempty,max=20"`
	Email     string  `gorm:"size:150" json:"email,omitempty" validate:"omitempty,email,max=150"`
}

func (Empleado) TableName() string { return "empleados" }

// Consulta estados.
const (
	EstadoPendiente  = "pendiente"
	EstadoCompletada = "completada"
	EstadoCancelada  = "cancelada"
)

// Consulta is an appointment between a paciente and a medico of the same centro.
type Consulta struct {
	Base
	IDPaciente  *int64    `gorm:"column:id_paciente;not null;index" json:"id_paciente" validate:"required"`
	IDMedico    *int64    `gorm:"column:id_medico;not null;index" json:"id_medico" validate:"required"`
	Fecha       time.Time `gorm:"not null;index" json:"fecha" validate:"required"`
	Motivo      string    `gorm:"size:255;not null" json:"motivo" validate:"required,max=255"`
	Diagnostico string    `gorm:"type:text" json:"diagnostico,omitempty"`
	Tratamiento string    `gorm:"type:text" json:"tratamiento,omitempty"`
	Estado      string    `gorm:"size:20;not null;default:pendiente" json:"estado" validate:"omitempty,oneof=pendiente completada cancelada"`
}

func (Consulta) TableName() string { return "consultas" }

// Usuario roles.
const (
	RolAdmin     = "admin"
	RolMedico    = "medico"
	RolRecepcion = "recepcion"
)

// Usuario is a login account stored in one centro. Non-admin accounts are
// bound to the centro they are stored in.
type Usuario struct {
	Base
	Username     string     `gorm:"size:50;not null;uniqueIndex" json:"username" validate:"required,min=3,max=50,alphanum"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Password     string     `gorm:"-" json:"password,omitempty" validate:"omitempty,min=8,max=72"`
	Rol          string     `gorm:"size:20;not null;default:recepcion" json:"rol" validate:"required,oneof=admin medico recepcion"`
	IDMedico     *int64     `gorm:"column:id_medico;index" json:"id_medico,omitempty"`
	Activo       *bool      `gorm:"not null;default:true" json:"activo,omitempty"`
	UltimoAcceso *time.Time `json:"ultimo_acceso,omitempty"`
}

func (Usuario) TableName() string { return "usuarios" }

// Active reports whether the account may log in. Unset means active.
func (u *Usuario) Active() bool {
	return u.Activo == nil || *u.Activo
}

// IsAdmin reports whether the account may act on every centro.
func (u *Usuario) IsAdmin() bool {
	return u.Rol == RolAdmin
}
