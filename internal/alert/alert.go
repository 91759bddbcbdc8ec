package alert

import "time"

// Alert categories shown to users.
const (
	TipoMovimiento = "movimiento"
	TipoSistema    = "sistema"
)

// MaxListed caps how many alerts one listing returns, newest first.
const MaxListed = 50

// Alerta is a per-user notification. Only the owner may read, mark or
// delete it.
type Alerta struct {
	ID            int64      `json:"id" gorm:"primaryKey"`
	UUID          string     `json:"uuid" gorm:"column:uuid"`
	UsuarioID     int64      `json:"usuario_id" gorm:"column:usuario_id;not null"`
	Titulo        string     `json:"titulo" gorm:"column:titulo;not null"`
	Mensaje       string     `json:"mensaje" gorm:"column:mensaje"`
	TipoAlerta    string     `json:"tipo_alerta" gorm:"column:tipo_alerta"`
	Leida         bool       `json:"leida" gorm:"column:leida;default:false"`
	FechaCreacion time.Time  `json:"fecha_creacion" gorm:"column:fecha_creacion"`
	FechaLectura  *time.Time `json:"fecha_lectura,omitempty" gorm:"column:fecha_lectura"`
	DocumentoID   *int64     `json:"documento_id,omitempty" gorm:"column:documento_id"`
	MovimientoID  *int64     `json:"movimiento_id,omitempty" gorm:"column:movimiento_id"`
}

func (Alerta) TableName() string {
	return "alertas"
}

type Repository interface {
	GetByUsuario(usuarioID int64, limit int) ([]*Alerta, error)
	GetByID(id int64) (*Alerta, error)
	CountUnread(usuarioID int64) (int64, error)
	Save(a *Alerta) error
	CreateBatch(alerts []*Alerta) error
	Delete(id int64) error
}
