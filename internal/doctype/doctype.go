package doctype

// TipoDocumento classifies documents (invoice, memo, contract, ...).
// Shared reference data: deactivate-only, never removed while referenced.
type TipoDocumento struct {
	ID          int64  `json:"id" gorm:"primaryKey"`
	Nombre      string `json:"nombre" gorm:"column:nombre;not null"`
	Codigo      string `json:"codigo" gorm:"column:codigo"`
	Descripcion string `json:"descripcion" gorm:"column:descripcion"`
	Activo      bool   `json:"activo" gorm:"column:activo;default:true"`
}

func (TipoDocumento) TableName() string {
	return "tipos_documento"
}

type Repository interface {
	GetAll() ([]*TipoDocumento, error)
	GetByID(id int64) (*TipoDocumento, error)
	Create(tipo *TipoDocumento) error
	Update(tipo *TipoDocumento) error
	Deactivate(id int64) error
}

type CreateTipoDTO struct {
	Nombre      string `json:"nombre"`
	Codigo      string `json:"codigo"`
	Descripcion string `json:"descripcion"`
}

type UpdateTipoDTO struct {
	Nombre      *string `json:"nombre,omitempty"`
	Codigo      *string `json:"codigo,omitempty"`
	Descripcion *string `json:"descripcion,omitempty"`
	Activo      *bool   `json:"activo,omitempty"`
}
