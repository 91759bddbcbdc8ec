package postgres

import (
	"github.com/sgdocumental/document-tracking/internal/doctype"
	"gorm.io/gorm"
)

type TipoRepository struct {
	db *gorm.DB
}

func NewTipoRepository(db *gorm.DB) doctype.Repository {
	return &TipoRepository{db: db}
}

func (r *TipoRepository) GetAll() ([]*doctype.TipoDocumento, error) {
	var tipos []*doctype.TipoDocumento
	err := r.db.Order("nombre ASC").Find(&tipos).Error
	return tipos, err
}

func (r *TipoRepository) GetByID(id int64) (*doctype.TipoDocumento, error) {
	var t doctype.TipoDocumento
	err := r.db.Where("id = ?", id).First(&t).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TipoRepository) Create(t *doctype.TipoDocumento) error {
	return r.db.Create(t).Error
}

func (r *TipoRepository) Update(t *doctype.TipoDocumento) error {
	return r.db.Save(t).Error
}

func (r *TipoRepository) Deactivate(id int64) error {
	return r.db.Model(&doctype.TipoDocumento{}).Where("id = ?", id).Update("activo", false).Error
}
