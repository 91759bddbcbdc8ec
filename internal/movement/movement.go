package movement

import (
	"time"

	"github.com/sgdocumental/document-tracking/internal/document"
	"github.com/sgdocumental/document-tracking/internal/history"
)

// Event types published when a document changes hands.
const (
	EventDocumentMoved    = "document.moved"
	EventDocumentReturned = "document.returned"
)

// Movimiento records one transfer of a document between areas. Devuelto is
// flipped when the document comes back; until then the document stays
// en_transito.
type Movimiento struct {
	ID                   int64      `json:"id" gorm:"primaryKey"`
	UUID                 string     `json:"uuid" gorm:"column:uuid"`
	DocumentoID          int64      `json:"documento_id" gorm:"column:documento_id;not null"`
	AreaOrigenID         int64      `json:"area_origen_id" gorm:"column:area_origen_id;not null"`
	AreaDestinoID        int64      `json:"area_destino_id" gorm:"column:area_destino_id;not null"`
	FechaMovimiento      time.Time  `json:"fecha_movimiento" gorm:"column:fecha_movimiento"`
	UsuarioResponsableID *int64     `json:"usuario_responsable_id,omitempty" gorm:"column:usuario_responsable_id"`
	Motivo               string     `json:"motivo" gorm:"column:motivo"`
	Devuelto             bool       `json:"devuelto" gorm:"column:devuelto;default:false"`
	FechaDevolucion      *time.Time `json:"fecha_devolucion,omitempty" gorm:"column:fecha_devolucion"`
}

func (Movimiento) TableName() string {
	return "movimientos"
}

// TxRepository is the write surface available inside a document-locked
// transaction.
type TxRepository interface {
	CreateMovimiento(m *Movimiento) error
	SaveMovimiento(m *Movimiento) error
	GetMovimiento(id int64) (*Movimiento, error)
	SaveDocumento(doc *document.Documento) error
	RecordHistory(entry *history.Entry) error
}

// Repository persists movements. WithDocumentLock serializes state changes
// for one document: it loads the document row under FOR UPDATE and runs fn
// inside the same transaction, so concurrent movements cannot both observe
// the document as available.
type Repository interface {
	GetAll() ([]*Movimiento, error)
	GetByID(id int64) (*Movimiento, error)
	GetByDocumento(documentoID int64) ([]*Movimiento, error)
	GetByDateRange(desde, hasta time.Time) ([]*Movimiento, error)
	WithDocumentLock(documentoID int64, fn func(tx TxRepository, doc *document.Documento) error) error
}
