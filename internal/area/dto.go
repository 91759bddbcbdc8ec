package area

import "errors"

type CreateAreaDTO struct {
	Nombre      string `json:"nombre"`
	Codigo      string `json:"codigo"`
	Descripcion string `json:"descripcion"`
}

func (dto CreateAreaDTO) Validate() error {
	if dto.Nombre == "" {
		return errors.New("nombre is required")
	}
	if len(dto.Nombre) > 100 {
		return errors.New("nombre must be less than 100 characters")
	}
	return nil
}

type UpdateAreaDTO struct {
	Nombre      *string `json:"nombre,omitempty"`
	Codigo      *string `json:"codigo,omitempty"`
	Descripcion *string `json:"descripcion,omitempty"`
	Activo      *bool   `json:"activo,omitempty"`
}
