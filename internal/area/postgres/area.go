package postgres

import (
	"github.com/sgdocumental/document-tracking/internal/area"
	"gorm.io/gorm"
)

type AreaRepository struct {
	db *gorm.DB
}

func NewAreaRepository(db *gorm.DB) area.Repository {
	return &AreaRepository{db: db}
}

func (r *AreaRepository) GetAll() ([]*area.Area, error) {
	var areas []*area.Area
	err := r.db.Order("nombre ASC").Find(&areas).Error
	return areas, err
}

func (r *AreaRepository) GetByID(id int64) (*area.Area, error) {
	var a area.Area
	err := r.db.Where("id = ?", id).First(&a).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AreaRepository) Create(a *area.Area) error {
	return r.db.Create(a).Error
}

func (r *AreaRepository) Update(a *area.Area) error {
	return r.db.Save(a).Error
}

func (r *AreaRepository) Deactivate(id int64) error {
	return r.db.Model(&area.Area{}).Where("id = ?", id).Update("activo", false).Error
}

// ActiveUserIDs returns the ids of active users assigned to the area, used
// to fan out movement alerts.
func (r *AreaRepository) ActiveUserIDs(areaID int64) ([]int64, error) {
	var ids []int64
	err := r.db.Table("usuarios").
		Where("area_id = ? AND activo = ?", areaID, true).
		Pluck("id", &ids).Error
	return ids, err
}
