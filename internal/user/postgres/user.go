package postgres

import (
	"time"

	"github.com/sgdocumental/document-tracking/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

const selectWithArea = `u.id, u.nombre_usuario, u.nombre_completo, u.email, u.rol,
	u.area_id, a.nombre AS area_nombre, u.activo, u.ultimo_acceso`

func (r *UserRepository) GetAll() ([]user.UsuarioDTO, error) {
	var users []user.UsuarioDTO
	err := r.db.Table("usuarios u").
		Select(selectWithArea).
		Joins("LEFT JOIN areas a ON a.id = u.area_id").
		Order("u.nombre_usuario ASC").
		Scan(&users).Error
	return users, err
}

func (r *UserRepository) GetByID(id int64) (*user.UsuarioDTO, error) {
	var users []user.UsuarioDTO
	err := r.db.Table("usuarios u").
		Select(selectWithArea).
		Joins("LEFT JOIN areas a ON a.id = u.area_id").
		Where("u.id = ?", id).
		Limit(1).
		Scan(&users).Error
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

func (r *UserRepository) UpdateRol(id int64, rol string) error {
	return r.db.Model(&user.Usuario{}).Where("id = ?", id).Updates(map[string]interface{}{
		"rol":                 rol,
		"fecha_actualizacion": time.Now().UTC(),
	}).Error
}

func (r *UserRepository) UpdateEstado(id int64, activo bool) error {
	return r.db.Model(&user.Usuario{}).Where("id = ?", id).Updates(map[string]interface{}{
		"activo":              activo,
		"fecha_actualizacion": time.Now().UTC(),
	}).Error
}
