package permission

import (
	"time"
)

// Role names accepted by the system. Role assignment validates against this
// set; grant tables store the normalized form.
const (
	RoleAdministrador           = "Administrador"
	RoleAdministradorSistema    = "AdministradorSistema"
	RoleAdministradorDocumentos = "AdministradorDocumentos"
	RoleUsuario                 = "Usuario"
	RoleSupervisor              = "Supervisor"
)

// ValidRoles are the roles a user row may carry.
var ValidRoles = []string{
	RoleAdministrador,
	RoleAdministradorDocumentos,
	RoleUsuario,
	RoleSupervisor,
}

// NormalizeRole maps legacy role names onto the names used by the grant
// tables. "Administrador" rows were grandfathered in before the rename to
// "AdministradorSistema".
func NormalizeRole(rol string) string {
	if rol == RoleAdministrador {
		return RoleAdministradorSistema
	}
	return rol
}

// GrantRoles are the role names grants can be assigned to.
var GrantRoles = []string{
	RoleAdministradorSistema,
	RoleAdministradorDocumentos,
	RoleUsuario,
	RoleSupervisor,
}

func IsValidRole(rol string) bool {
	for _, r := range ValidRoles {
		if r == rol {
			return true
		}
	}
	return false
}

func IsValidGrantRole(rol string) bool {
	for _, r := range GrantRoles {
		if r == rol {
			return true
		}
	}
	return false
}

// Well-known permission codes gating protected route groups. The seed data
// creates these; admins can add more through the API.
const (
	CodeDocumentosCrear    = "documentos.crear"
	CodeDocumentosEditar   = "documentos.editar"
	CodeDocumentosEliminar = "documentos.eliminar"
	CodeMovimientosCrear   = "movimientos.crear"
	CodeUsuariosGestionar  = "usuarios.gestionar"
	CodePermisosGestionar  = "permisos.gestionar"
)

// Permiso is a named capability grouped by module.
type Permiso struct {
	ID          int64  `json:"id" gorm:"primaryKey"`
	Codigo      string `json:"codigo" gorm:"uniqueIndex;not null"`
	Nombre      string `json:"nombre" gorm:"not null"`
	Descripcion string `json:"descripcion"`
	Modulo      string `json:"modulo" gorm:"not null"`
	Activo      bool   `json:"activo" gorm:"default:true"`
}

func (Permiso) TableName() string { return "permisos" }

// RolPermiso grants a permission to every user holding a role.
type RolPermiso struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	Rol             string    `json:"rol" gorm:"not null;uniqueIndex:idx_rol_permiso"`
	PermisoID       int64     `json:"permiso_id" gorm:"not null;uniqueIndex:idx_rol_permiso"`
	Activo          bool      `json:"activo" gorm:"default:true"`
	FechaAsignacion time.Time `json:"fecha_asignacion"`
}

func (RolPermiso) TableName() string { return "rol_permisos" }

// UsuarioPermiso grants a permission directly to one user, on top of
// whatever their role grants.
type UsuarioPermiso struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	UsuarioID       int64     `json:"usuario_id" gorm:"not null;uniqueIndex:idx_usuario_permiso"`
	PermisoID       int64     `json:"permiso_id" gorm:"not null;uniqueIndex:idx_usuario_permiso"`
	Activo          bool      `json:"activo" gorm:"default:true"`
	FechaAsignacion time.Time `json:"fecha_asignacion"`
}

func (UsuarioPermiso) TableName() string { return "usuario_permisos" }

// Repository is the persistence boundary for permissions and grants.
// Revocation deactivates rows instead of deleting them so the assignment
// history stays queryable.
type Repository interface {
	GetAllPermisos() ([]Permiso, error)
	GetPermisoByID(id int64) (*Permiso, error)

	// GetEffectivePermisos resolves the union of active role grants for rol
	// and active direct grants for userID, restricted to active permisos,
	// ordered by modulo then nombre.
	GetEffectivePermisos(rol string, userID int64) ([]Permiso, error)

	GetUserRol(userID int64) (string, error)

	GetRoleGrant(rol string, permisoID int64) (*RolPermiso, error)
	SaveRoleGrant(grant *RolPermiso) error
	GetActiveRolePermisoIDs(rol string) ([]int64, error)
	// ReplaceRoleGrants deactivates every grant the role currently holds and
	// activates (creating where needed) exactly the listed permissions, in
	// one transaction.
	ReplaceRoleGrants(rol string, permisoIDs []int64) error

	GetUserGrant(userID, permisoID int64) (*UsuarioPermiso, error)
	SaveUserGrant(grant *UsuarioPermiso) error
	GetActiveUserPermisoIDs(userID int64) ([]int64, error)
}
