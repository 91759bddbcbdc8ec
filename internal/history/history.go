package history

import (
	"errors"
	"time"
)

// Change type tags written to the audit trail. Replaying a document's
// entries in chronological order reconstructs its current state.
const (
	TipoCreacion     = "creacion"
	TipoModificacion = "modificacion"
	TipoMovimiento   = "movimiento"
	TipoDevolucion   = "devolucion"
	TipoArchivado    = "archivado"
)

// Entry is one immutable audit row. Rows are only ever inserted.
type Entry struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	UUID            string    `json:"uuid" gorm:"column:uuid"`
	DocumentoID     int64     `json:"documento_id" gorm:"column:documento_id;not null"`
	FechaCambio     time.Time `json:"fecha_cambio" gorm:"column:fecha_cambio"`
	UsuarioID       *int64    `json:"usuario_id,omitempty" gorm:"column:usuario_id"`
	TipoCambio      string    `json:"tipo_cambio" gorm:"column:tipo_cambio;not null"`
	EstadoAnterior  *string   `json:"estado_anterior,omitempty" gorm:"column:estado_anterior"`
	EstadoNuevo     *string   `json:"estado_nuevo,omitempty" gorm:"column:estado_nuevo"`
	AreaAnteriorID  *int64    `json:"area_anterior_id,omitempty" gorm:"column:area_anterior_id"`
	AreaNuevaID     *int64    `json:"area_nueva_id,omitempty" gorm:"column:area_nueva_id"`
	CampoModificado *string   `json:"campo_modificado,omitempty" gorm:"column:campo_modificado"`
	ValorAnterior   *string   `json:"valor_anterior,omitempty" gorm:"column:valor_anterior"`
	ValorNuevo      *string   `json:"valor_nuevo,omitempty" gorm:"column:valor_nuevo"`
	Observacion     *string   `json:"observacion,omitempty" gorm:"column:observacion"`
}

func (Entry) TableName() string {
	return "historial_documento"
}

// Repository is the append-only store for audit entries. There is no update
// or delete on purpose.
type Repository interface {
	Record(entry *Entry) error
	GetByDocumento(documentoID int64) ([]*Entry, error)
}

var ErrEmptyDocumento = errors.New("history entry requires a document id")
