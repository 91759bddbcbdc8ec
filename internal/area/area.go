package area

// Area is an organizational unit. Areas originate documents and are the
// endpoints of movements, so they are never hard-deleted, only deactivated.
type Area struct {
	ID          int64  `json:"id" gorm:"primaryKey"`
	Nombre      string `json:"nombre" gorm:"column:nombre;not null"`
	Codigo      string `json:"codigo" gorm:"column:codigo"`
	Descripcion string `json:"descripcion" gorm:"column:descripcion"`
	Activo      bool   `json:"activo" gorm:"column:activo;default:true"`
}

func (Area) TableName() string {
	return "areas"
}

type Repository interface {
	GetAll() ([]*Area, error)
	GetByID(id int64) (*Area, error)
	Create(area *Area) error
	Update(area *Area) error
	Deactivate(id int64) error
	ActiveUserIDs(areaID int64) ([]int64, error)
}
