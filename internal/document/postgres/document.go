package postgres

import (
	"github.com/sgdocumental/document-tracking/internal/document"
	"github.com/sgdocumental/document-tracking/internal/history"
	"gorm.io/gorm"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) document.Repository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) GetAll() ([]*document.Documento, error) {
	var docs []*document.Documento
	err := r.db.Order("fecha_registro DESC, id DESC").Find(&docs).Error
	return docs, err
}

func (r *DocumentRepository) GetByID(id int64) (*document.Documento, error) {
	return r.getOne("id = ?", id)
}

func (r *DocumentRepository) GetByCodigo(codigo string) (*document.Documento, error) {
	return r.getOne("codigo = ?", codigo)
}

func (r *DocumentRepository) GetByQR(codigoQR string) (*document.Documento, error) {
	return r.getOne("codigo_qr = ?", codigoQR)
}

func (r *DocumentRepository) getOne(query string, arg interface{}) (*document.Documento, error) {
	var doc document.Documento
	err := r.db.Where(query, arg).First(&doc).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) Search(filter document.BusquedaDocumentoDTO) ([]*document.Documento, error) {
	q := r.db.Model(&document.Documento{})

	if filter.Codigo != "" {
		q = q.Where("codigo = ?", filter.Codigo)
	}
	if filter.NumeroCorrelativo != "" {
		q = q.Where("numero_correlativo = ?", filter.NumeroCorrelativo)
	}
	if filter.TipoDocumentoID != nil {
		q = q.Where("tipo_documento_id = ?", *filter.TipoDocumentoID)
	}
	if filter.AreaOrigenID != nil {
		q = q.Where("area_origen_id = ?", *filter.AreaOrigenID)
	}
	if filter.Gestion != "" {
		q = q.Where("gestion = ?", filter.Gestion)
	}
	if filter.FechaDesde != nil {
		q = q.Where("fecha_documento >= ?", *filter.FechaDesde)
	}
	if filter.FechaHasta != nil {
		q = q.Where("fecha_documento <= ?", *filter.FechaHasta)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.CodigoQR != "" {
		q = q.Where("codigo_qr = ?", filter.CodigoQR)
	}

	var docs []*document.Documento
	err := q.Order("fecha_registro DESC, id DESC").Find(&docs).Error
	return docs, err
}

// NextSequence returns the next correlative number within a gestion. The
// unique index on codigo backstops concurrent registrations.
func (r *DocumentRepository) NextSequence(gestion string) (int64, error) {
	var count int64
	err := r.db.Model(&document.Documento{}).Where("gestion = ?", gestion).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count + 1, nil
}

func (r *DocumentRepository) CreateWithHistory(doc *document.Documento, entry *history.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return err
		}
		entry.DocumentoID = doc.ID
		return tx.Create(entry).Error
	})
}

func (r *DocumentRepository) UpdateWithHistory(doc *document.Documento, entries []*history.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(doc).Error; err != nil {
			return err
		}
		for _, entry := range entries {
			entry.DocumentoID = doc.ID
			if err := tx.Create(entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
