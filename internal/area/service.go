package area

import (
	"log/slog"

	"github.com/sgdocumental/document-tracking/internal"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetAll() ([]*Area, error) {
	areas, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list areas", "error", err)
		return nil, err
	}
	return areas, nil
}

func (s *Service) GetByID(id int64) (*Area, error) {
	a, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get area", "error", err, "area_id", id)
		return nil, err
	}
	if a == nil {
		return nil, internal.NewNotFoundError("Area not found", internal.ErrCodeAreaNotFound)
	}
	return a, nil
}

func (s *Service) Create(dto CreateAreaDTO) (*Area, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	a := &Area{
		Nombre:      dto.Nombre,
		Codigo:      dto.Codigo,
		Descripcion: dto.Descripcion,
		Activo:      true,
	}
	if err := s.repo.Create(a); err != nil {
		s.logger.Error("failed to create area", "error", err, "nombre", dto.Nombre)
		return nil, err
	}

	s.logger.Info("area created", "area_id", a.ID, "nombre", a.Nombre)
	return a, nil
}

func (s *Service) Update(id int64, dto UpdateAreaDTO) (*Area, error) {
	a, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Nombre != nil {
		a.Nombre = *dto.Nombre
	}
	if dto.Codigo != nil {
		a.Codigo = *dto.Codigo
	}
	if dto.Descripcion != nil {
		a.Descripcion = *dto.Descripcion
	}
	if dto.Activo != nil {
		a.Activo = *dto.Activo
	}

	if err := s.repo.Update(a); err != nil {
		s.logger.Error("failed to update area", "error", err, "area_id", id)
		return nil, err
	}
	return a, nil
}

// Delete deactivates the area. Documents and movements keep referencing the
// row, so it is never removed.
func (s *Service) Delete(id int64) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(id); err != nil {
		s.logger.Error("failed to deactivate area", "error", err, "area_id", id)
		return err
	}
	s.logger.Info("area deactivated", "area_id", id)
	return nil
}
