package auth

import "errors"

type LoginDTO struct {
	Username string `json:"nombre_usuario"`
	Password string `json:"password"`
}

func (dto LoginDTO) Validate() error {
	if dto.Username == "" {
		return errors.New("nombre_usuario is required")
	}
	if dto.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

type RefreshDTO struct {
	RefreshToken string `json:"refresh_token"`
}
