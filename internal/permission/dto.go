package permission

import "errors"

type AssignRoleDTO struct {
	Rol       string `json:"rol"`
	PermisoID int64  `json:"permiso_id"`
}

func (dto AssignRoleDTO) Validate() error {
	if dto.Rol == "" {
		return errors.New("rol is required")
	}
	if !IsValidGrantRole(dto.Rol) {
		return errors.New("unknown rol: " + dto.Rol)
	}
	if dto.PermisoID <= 0 {
		return errors.New("permiso_id is required")
	}
	return nil
}

type BulkAssignRoleDTO struct {
	Rol        string  `json:"rol"`
	PermisoIDs []int64 `json:"permiso_ids"`
}

func (dto BulkAssignRoleDTO) Validate() error {
	if dto.Rol == "" {
		return errors.New("rol is required")
	}
	if !IsValidGrantRole(dto.Rol) {
		return errors.New("unknown rol: " + dto.Rol)
	}
	for _, id := range dto.PermisoIDs {
		if id <= 0 {
			return errors.New("permiso_ids must be positive")
		}
	}
	return nil
}

type AssignUserDTO struct {
	UsuarioID int64 `json:"usuario_id"`
	PermisoID int64 `json:"permiso_id"`
}

func (dto AssignUserDTO) Validate() error {
	if dto.UsuarioID <= 0 {
		return errors.New("usuario_id is required")
	}
	if dto.PermisoID <= 0 {
		return errors.New("permiso_id is required")
	}
	return nil
}

// RoleMatrixEntry is one row of the roles x permissions grid used by the
// admin screen.
type RoleMatrixEntry struct {
	Rol      string          `json:"rol"`
	Permisos []MatrixPermiso `json:"permisos"`
}

type MatrixPermiso struct {
	ID           int64  `json:"id"`
	Codigo       string `json:"codigo"`
	Nombre       string `json:"nombre"`
	Modulo       string `json:"modulo"`
	TienePermiso bool   `json:"tiene_permiso"`
}

// UserPermissionDetail shows, per permission, whether the user's role grants
// it and whether a direct user grant exists.
type UserPermissionDetail struct {
	UsuarioID int64               `json:"usuario_id"`
	Rol       string              `json:"rol"`
	Permisos  []UserPermisoDetail `json:"permisos"`
}

type UserPermisoDetail struct {
	ID          int64  `json:"id"`
	Codigo      string `json:"codigo"`
	Nombre      string `json:"nombre"`
	Modulo      string `json:"modulo"`
	PorRol      bool   `json:"por_rol"`
	PorUsuario  bool   `json:"por_usuario"`
	Efectivo    bool   `json:"efectivo"`
	Descripcion string `json:"descripcion,omitempty"`
}
