package user

import (
	"log/slog"

	"github.com/sgdocumental/document-tracking/internal"
	"github.com/sgdocumental/document-tracking/internal/permission"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetAll() ([]UsuarioDTO, error) {
	users, err := s.repo.GetAll()
	if err != nil {
		return nil, internal.NewInternalError("failed to list users", err)
	}
	return users, nil
}

func (s *Service) GetByID(id int64) (*UsuarioDTO, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if u == nil {
		return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	}
	return u, nil
}

// UpdateRol changes a user's role. The role must be one of the known names.
func (s *Service) UpdateRol(id int64, rol string) (*UsuarioDTO, error) {
	if !permission.IsValidRole(rol) {
		return nil, internal.NewValidationFieldError("rol", "unknown rol: "+rol, internal.ErrCodeInvalidRole)
	}

	u, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateRol(id, rol); err != nil {
		return nil, internal.NewInternalError("failed to update user role", err)
	}

	s.logger.Info("user role updated", "user_id", id, "rol", rol)
	u.Rol = rol
	return u, nil
}

func (s *Service) UpdateEstado(id int64, activo bool) (*UsuarioDTO, error) {
	u, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateEstado(id, activo); err != nil {
		return nil, internal.NewInternalError("failed to update user status", err)
	}

	s.logger.Info("user status updated", "user_id", id, "activo", activo)
	u.Activo = activo
	return u, nil
}
