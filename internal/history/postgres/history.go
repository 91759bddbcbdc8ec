package postgres

import (
	"github.com/sgdocumental/document-tracking/internal/history"
	"gorm.io/gorm"
)

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) history.Repository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Record(entry *history.Entry) error {
	return r.db.Create(entry).Error
}

func (r *HistoryRepository) GetByDocumento(documentoID int64) ([]*history.Entry, error) {
	var entries []*history.Entry
	err := r.db.Where("documento_id = ?", documentoID).
		Order("fecha_cambio DESC, id DESC").
		Find(&entries).Error
	return entries, err
}
