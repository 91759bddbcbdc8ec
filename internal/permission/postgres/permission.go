package postgres

import (
	"time"

	"github.com/sgdocumental/document-tracking/internal/permission"
	"gorm.io/gorm"
)

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) permission.Repository {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) GetAllPermisos() ([]permission.Permiso, error) {
	var permisos []permission.Permiso
	err := r.db.Order("modulo ASC, nombre ASC").Find(&permisos).Error
	return permisos, err
}

func (r *PermissionRepository) GetPermisoByID(id int64) (*permission.Permiso, error) {
	var p permission.Permiso
	err := r.db.Where("id = ?", id).First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PermissionRepository) GetEffectivePermisos(rol string, userID int64) ([]permission.Permiso, error) {
	var permisos []permission.Permiso
	err := r.db.
		Where("activo = ?", true).
		Where(`id IN (
			SELECT permiso_id FROM rol_permisos WHERE rol = ? AND activo = ?
			UNION
			SELECT permiso_id FROM usuario_permisos WHERE usuario_id = ? AND activo = ?
		)`, rol, true, userID, true).
		Order("modulo ASC, nombre ASC").
		Find(&permisos).Error
	return permisos, err
}

// GetUserRol returns "" when the user does not exist.
func (r *PermissionRepository) GetUserRol(userID int64) (string, error) {
	var rols []string
	err := r.db.Table("usuarios").Where("id = ?", userID).Limit(1).Pluck("rol", &rols).Error
	if err != nil || len(rols) == 0 {
		return "", err
	}
	return rols[0], nil
}

func (r *PermissionRepository) GetRoleGrant(rol string, permisoID int64) (*permission.RolPermiso, error) {
	var grant permission.RolPermiso
	err := r.db.Where("rol = ? AND permiso_id = ?", rol, permisoID).First(&grant).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &grant, nil
}

func (r *PermissionRepository) SaveRoleGrant(grant *permission.RolPermiso) error {
	return r.db.Save(grant).Error
}

func (r *PermissionRepository) GetActiveRolePermisoIDs(rol string) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&permission.RolPermiso{}).
		Where("rol = ? AND activo = ?", rol, true).
		Pluck("permiso_id", &ids).Error
	return ids, err
}

// ReplaceRoleGrants swaps the role's active grant set in one transaction:
// everything currently active is deactivated, then each listed permission is
// activated, reusing the existing row when one exists.
func (r *PermissionRepository) ReplaceRoleGrants(rol string, permisoIDs []int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&permission.RolPermiso{}).
			Where("rol = ? AND activo = ?", rol, true).
			Update("activo", false).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, permisoID := range permisoIDs {
			var grant permission.RolPermiso
			err := tx.Where("rol = ? AND permiso_id = ?", rol, permisoID).First(&grant).Error
			switch {
			case err == gorm.ErrRecordNotFound:
				grant = permission.RolPermiso{
					Rol:             rol,
					PermisoID:       permisoID,
					Activo:          true,
					FechaAsignacion: now,
				}
				if err := tx.Create(&grant).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				grant.Activo = true
				grant.FechaAsignacion = now
				if err := tx.Save(&grant).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *PermissionRepository) GetUserGrant(userID, permisoID int64) (*permission.UsuarioPermiso, error) {
	var grant permission.UsuarioPermiso
	err := r.db.Where("usuario_id = ? AND permiso_id = ?", userID, permisoID).First(&grant).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &grant, nil
}

func (r *PermissionRepository) SaveUserGrant(grant *permission.UsuarioPermiso) error {
	return r.db.Save(grant).Error
}

func (r *PermissionRepository) GetActiveUserPermisoIDs(userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&permission.UsuarioPermiso{}).
		Where("usuario_id = ? AND activo = ?", userID, true).
		Pluck("permiso_id", &ids).Error
	return ids, err
}
