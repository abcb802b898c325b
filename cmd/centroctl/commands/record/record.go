// Package record implements the list, get, create, update and delete
// commands shared by every collection.
package record

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/centromed/pkg/apiclient"
)

// NewCmd returns the command group for one collection, e.g. "pacientes".
func NewCmd(e apiclient.Entity) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(e),
		Short: fmt.Sprintf("Manage %s", e),
		Long: fmt.Sprintf(`List, show, create, update and delete %[1]s.

Listing aggregates every centro you can see; ids are global and assigned
centro by centro in configuration order. Creates go to one centro, chosen
with --centro or 'centroctl context set-centro'.

Examples:
  centroctl %[1]s list
  centroctl %[1]s get 6
  centroctl %[1]s create --centro guayaquil --set campo=valor
  centroctl %[1]s update 6 --set campo=valor
  centroctl %[1]s delete 6`, e),
	}
	if a, ok := aliases[e]; ok {
		cmd.Aliases = a
	}

	cmd.AddCommand(newListCmd(e))
	cmd.AddCommand(newGetCmd(e))
	cmd.AddCommand(newCreateCmd(e))
	cmd.AddCommand(newUpdateCmd(e))
	cmd.AddCommand(newDeleteCmd(e))
	return cmd
}

var aliases = map[apiclient.Entity][]string{
	apiclient.Pacientes:      {"paciente"},
	apiclient.Medicos:        {"medico"},
	apiclient.Empleados:      {"empleado"},
	apiclient.Especialidades: {"especialidad"},
	apiclient.Consultas:      {"consulta"},
	apiclient.Usuarios:       {"usuario"},
}

// columns are the fields shown in list tables, after the id.
var columns = map[apiclient.Entity][]string{
	apiclient.Pacientes:      {"nombres", "apellidos", "cedula", "telefono", "fecha_nacimiento"},
	apiclient.Medicos:        {"nombres", "apellidos", "cedula", "id_especialidad", "telefono"},
	apiclient.Empleados:      {"nombres", "apellidos", "cargo", "salario"},
	apiclient.Especialidades: {"nombre", "descripcion"},
	apiclient.Consultas:      {"fecha", "id_paciente", "id_medico", "motivo", "estado"},
	apiclient.Usuarios:       {"username", "rol", "id_medico", "activo", "ultimo_acceso"},
}

// Columns returns the table columns of e: the global id, its fields and
// the centro the row lives on.
func Columns(e apiclient.Entity) []string {
	out := append([]string{"id"}, columns[e]...)
	return append(out, "shard_key")
}

// singular names one row of e in messages.
func singular(e apiclient.Entity) string {
	if a, ok := aliases[e]; ok {
		return a[0]
	}
	return strings.TrimSuffix(string(e), "s")
}

// describe names a record for prompts, e.g. `paciente 6 "Pedro Mora" (guayaquil)`.
func describe(e apiclient.Entity, r apiclient.Record) string {
	var label string
	switch {
	case r["nombres"] != nil:
		label = strings.TrimSpace(fmt.Sprint(r["nombres"], " ", r["apellidos"]))
	case r["nombre"] != nil:
		label = fmt.Sprint(r["nombre"])
	case r["username"] != nil:
		label = fmt.Sprint(r["username"])
	case r["motivo"] != nil:
		label = fmt.Sprint(r["motivo"])
	}
	s := fmt.Sprintf("%s %d", singular(e), r.ID())
	if label != "" {
		s += fmt.Sprintf(" %q", label)
	}
	if k := r.ShardKey(); k != "" {
		s += " (" + k + ")"
	}
	return s
}
