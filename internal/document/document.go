package document

import (
	"time"

	"github.com/sgdocumental/document-tracking/internal/history"
)

// Document lifecycle states. A movement puts a document en_transito until it
// is returned; archiving is terminal.
const (
	EstadoActivo     = "activo"
	EstadoEnTransito = "en_transito"
	EstadoArchivado  = "archivado"
)

func IsValidEstado(estado string) bool {
	switch estado {
	case EstadoActivo, EstadoEnTransito, EstadoArchivado:
		return true
	}
	return false
}

// Documento is a registered administrative document. Codigo is generated
// sequentially per gestion and never reused; CodigoQR is the payload encoded
// into the printed label.
type Documento struct {
	ID                 int64     `json:"id" gorm:"primaryKey"`
	UUID               string    `json:"uuid" gorm:"column:uuid"`
	Codigo             string    `json:"codigo" gorm:"column:codigo;uniqueIndex;not null"`
	NumeroCorrelativo  string    `json:"numero_correlativo" gorm:"column:numero_correlativo;not null"`
	TipoDocumentoID    int64     `json:"tipo_documento_id" gorm:"column:tipo_documento_id;not null"`
	AreaOrigenID       int64     `json:"area_origen_id" gorm:"column:area_origen_id;not null"`
	Gestion            string    `json:"gestion" gorm:"column:gestion;not null"`
	FechaDocumento     time.Time `json:"fecha_documento" gorm:"column:fecha_documento"`
	Descripcion        string    `json:"descripcion" gorm:"column:descripcion"`
	ResponsableID      *int64    `json:"responsable_id,omitempty" gorm:"column:responsable_id"`
	CodigoQR           *string   `json:"codigo_qr,omitempty" gorm:"column:codigo_qr;uniqueIndex"`
	UbicacionFisica    string    `json:"ubicacion_fisica" gorm:"column:ubicacion_fisica"`
	Estado             string    `json:"estado" gorm:"column:estado;not null"`
	FechaRegistro      time.Time `json:"fecha_registro" gorm:"column:fecha_registro"`
	FechaActualizacion time.Time `json:"fecha_actualizacion" gorm:"column:fecha_actualizacion"`
}

func (Documento) TableName() string {
	return "documentos"
}

// Repository persists documents. The WithHistory variants write the document
// and its audit entries in one transaction so a document can never exist
// without its trail.
type Repository interface {
	GetAll() ([]*Documento, error)
	GetByID(id int64) (*Documento, error)
	GetByCodigo(codigo string) (*Documento, error)
	GetByQR(codigoQR string) (*Documento, error)
	Search(filter BusquedaDocumentoDTO) ([]*Documento, error)
	NextSequence(gestion string) (int64, error)
	CreateWithHistory(doc *Documento, entry *history.Entry) error
	UpdateWithHistory(doc *Documento, entries []*history.Entry) error
}
