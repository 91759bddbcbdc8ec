package postgres

import (
	"github.com/sgdocumental/document-tracking/internal/alert"
	"gorm.io/gorm"
)

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) alert.Repository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) GetByUsuario(usuarioID int64, limit int) ([]*alert.Alerta, error) {
	var alerts []*alert.Alerta
	err := r.db.Where("usuario_id = ?", usuarioID).
		Order("fecha_creacion DESC, id DESC").
		Limit(limit).
		Find(&alerts).Error
	return alerts, err
}

func (r *AlertRepository) GetByID(id int64) (*alert.Alerta, error) {
	var a alert.Alerta
	err := r.db.Where("id = ?", id).First(&a).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AlertRepository) CountUnread(usuarioID int64) (int64, error) {
	var count int64
	err := r.db.Model(&alert.Alerta{}).
		Where("usuario_id = ? AND leida = ?", usuarioID, false).
		Count(&count).Error
	return count, err
}

func (r *AlertRepository) Save(a *alert.Alerta) error {
	return r.db.Save(a).Error
}

func (r *AlertRepository) CreateBatch(alerts []*alert.Alerta) error {
	if len(alerts) == 0 {
		return nil
	}
	return r.db.Create(&alerts).Error
}

func (r *AlertRepository) Delete(id int64) error {
	return r.db.Delete(&alert.Alerta{}, id).Error
}
