package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sgdocumental/document-tracking/internal/auth"
	"github.com/sgdocumental/document-tracking/internal/permission"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByUsername also accepts the user's email, the login form takes either.
func (r *Repository) GetByUsername(username string) (*auth.UserRecord, error) {
	var rec auth.UserRecord
	query := `SELECT id, nombre_usuario, password_hash, rol, area_id, activo, intentos_fallidos, bloqueado_hasta
	          FROM usuarios WHERE nombre_usuario = ? OR email = ?`

	row := r.db.Raw(query, username, username).Row()
	if err := row.Scan(&rec.ID, &rec.Username, &rec.PasswordHash, &rec.Rol, &rec.AreaID,
		&rec.Activo, &rec.IntentosFallidos, &rec.BloqueadoHasta); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) RegisterFailedAttempt(userID int64, attempts int, lockedUntil *time.Time) error {
	return r.db.Exec(
		`UPDATE usuarios SET intentos_fallidos = ?, bloqueado_hasta = ? WHERE id = ?`,
		attempts, lockedUntil, userID,
	).Error
}

func (r *Repository) RegisterSuccessfulLogin(userID int64, at time.Time) error {
	return r.db.Exec(
		`UPDATE usuarios SET intentos_fallidos = 0, bloqueado_hasta = NULL, ultimo_acceso = ? WHERE id = ?`,
		at, userID,
	).Error
}

func (r *Repository) GetUserWithPermissions(userID int64) (*auth.User, error) {
	var user auth.User
	query := `SELECT id, nombre_usuario, rol, area_id FROM usuarios WHERE id = ? AND activo = true`

	row := r.db.Raw(query, userID).Row()
	if err := row.Scan(&user.ID, &user.Username, &user.Rol, &user.AreaID); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}

	// Effective codes: role grants for the normalized role plus direct
	// user grants, only where the permission itself is still active.
	permQuery := `SELECT DISTINCT p.codigo
	              FROM permisos p
	              WHERE p.activo = true AND p.id IN (
	                  SELECT rp.permiso_id FROM rol_permisos rp WHERE rp.rol = ? AND rp.activo = true
	                  UNION
	                  SELECT up.permiso_id FROM usuario_permisos up WHERE up.usuario_id = ? AND up.activo = true
	              )`

	rows, err := r.db.Raw(permQuery, permission.NormalizeRole(user.Rol), userID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissions []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		permissions = append(permissions, code)
	}

	user.Permissions = permissions
	return &user, nil
}
