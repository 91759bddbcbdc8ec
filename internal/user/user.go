package user

import "time"

// Usuario is a system account. Lockout bookkeeping lives on the row so a
// single read answers "may this user log in".
type Usuario struct {
	ID                 int64      `json:"id" gorm:"primaryKey"`
	NombreUsuario      string     `json:"nombre_usuario" gorm:"column:nombre_usuario;uniqueIndex;not null"`
	NombreCompleto     string     `json:"nombre_completo" gorm:"column:nombre_completo"`
	Email              string     `json:"email" gorm:"column:email"`
	PasswordHash       string     `json:"-" gorm:"column:password_hash;not null"`
	Rol                string     `json:"rol" gorm:"column:rol;not null"`
	AreaID             *int64     `json:"area_id,omitempty" gorm:"column:area_id"`
	Activo             bool       `json:"activo" gorm:"column:activo;default:true"`
	IntentosFallidos   int        `json:"-" gorm:"column:intentos_fallidos;default:0"`
	BloqueadoHasta     *time.Time `json:"-" gorm:"column:bloqueado_hasta"`
	UltimoAcceso       *time.Time `json:"ultimo_acceso,omitempty" gorm:"column:ultimo_acceso"`
	FechaRegistro      time.Time  `json:"fecha_registro" gorm:"column:fecha_registro"`
	FechaActualizacion time.Time  `json:"fecha_actualizacion" gorm:"column:fecha_actualizacion"`
}

func (Usuario) TableName() string {
	return "usuarios"
}

// UsuarioDTO is the read shape for listings: the area id resolved to its
// name so clients do not need a second request.
type UsuarioDTO struct {
	ID             int64      `json:"id"`
	NombreUsuario  string     `json:"nombre_usuario"`
	NombreCompleto string     `json:"nombre_completo"`
	Email          string     `json:"email"`
	Rol            string     `json:"rol"`
	AreaID         *int64     `json:"area_id,omitempty"`
	AreaNombre     *string    `json:"area_nombre,omitempty"`
	Activo         bool       `json:"activo"`
	UltimoAcceso   *time.Time `json:"ultimo_acceso,omitempty"`
}

type Repository interface {
	GetAll() ([]UsuarioDTO, error)
	GetByID(id int64) (*UsuarioDTO, error)
	UpdateRol(id int64, rol string) error
	UpdateEstado(id int64, activo bool) error
}
