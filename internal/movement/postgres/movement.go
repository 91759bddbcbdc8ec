package postgres

import (
	"time"

	"github.com/sgdocumental/document-tracking/internal/document"
	"github.com/sgdocumental/document-tracking/internal/history"
	"github.com/sgdocumental/document-tracking/internal/movement"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MovementRepository struct {
	db *gorm.DB
}

func NewMovementRepository(db *gorm.DB) movement.Repository {
	return &MovementRepository{db: db}
}

func (r *MovementRepository) GetAll() ([]*movement.Movimiento, error) {
	var movimientos []*movement.Movimiento
	err := r.db.Order("fecha_movimiento DESC, id DESC").Find(&movimientos).Error
	return movimientos, err
}

func (r *MovementRepository) GetByID(id int64) (*movement.Movimiento, error) {
	var m movement.Movimiento
	err := r.db.Where("id = ?", id).First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *MovementRepository) GetByDocumento(documentoID int64) ([]*movement.Movimiento, error) {
	var movimientos []*movement.Movimiento
	err := r.db.Where("documento_id = ?", documentoID).
		Order("fecha_movimiento DESC, id DESC").
		Find(&movimientos).Error
	return movimientos, err
}

func (r *MovementRepository) GetByDateRange(desde, hasta time.Time) ([]*movement.Movimiento, error) {
	var movimientos []*movement.Movimiento
	err := r.db.Where("fecha_movimiento >= ? AND fecha_movimiento <= ?", desde, hasta).
		Order("fecha_movimiento DESC, id DESC").
		Find(&movimientos).Error
	return movimientos, err
}

// WithDocumentLock opens a transaction, locks the document row FOR UPDATE
// and hands both to fn. fn gets a nil document when the id does not exist.
func (r *MovementRepository) WithDocumentLock(documentoID int64, fn func(tx movement.TxRepository, doc *document.Documento) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var doc document.Documento
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", documentoID).
			First(&doc).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return fn(&txRepository{tx: tx}, nil)
			}
			return err
		}
		return fn(&txRepository{tx: tx}, &doc)
	})
}

type txRepository struct {
	tx *gorm.DB
}

func (r *txRepository) CreateMovimiento(m *movement.Movimiento) error {
	return r.tx.Create(m).Error
}

func (r *txRepository) SaveMovimiento(m *movement.Movimiento) error {
	return r.tx.Save(m).Error
}

func (r *txRepository) GetMovimiento(id int64) (*movement.Movimiento, error) {
	var m movement.Movimiento
	err := r.tx.Where("id = ?", id).First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *txRepository) SaveDocumento(doc *document.Documento) error {
	return r.tx.Save(doc).Error
}

func (r *txRepository) RecordHistory(entry *history.Entry) error {
	return r.tx.Create(entry).Error
}
