package doctype

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

func (s *Service) GetAll() ([]*TipoDocumento, error) {
	tipos, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list document types", "error", err)
		return nil, err
	}
	return tipos, nil
}

func (s *Service) GetByID(id int64) (*TipoDocumento, error) {
	t, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get document type", "error", err, "tipo_id", id)
		return nil, err
	}
	if t == nil {
		return nil, internal.NewNotFoundError("Document type not found", internal.ErrCodeDocTypeNotFound)
	}
	return t, nil
}

func (s *Service) Create(dto CreateTipoDTO) (*TipoDocumento, error) {
	if dto.Nombre == "" {
		return nil, internal.NewValidationFieldError("nombre", "nombre is required", internal.ErrCodeValidationFailed)
	}

	t := &TipoDocumento{
		Nombre:      dto.Nombre,
		Codigo:      dto.Codigo,
		Descripcion: dto.Descripcion,
		Activo:      true,
	}
	if err := s.repo.Create(t); err != nil {
		s.logger.Error("failed to create document type", "error", err, "nombre", dto.Nombre)
		return nil, err
	}

	s.logger.Info("document type created", "tipo_id", t.ID, "nombre", t.Nombre)
	return t, nil
}

func (s *Service) Update(id int64, dto UpdateTipoDTO) (*TipoDocumento, error) {
	t, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Nombre != nil {
		t.Nombre = *dto.Nombre
	}
	if dto.Codigo != nil {
		t.Codigo = *dto.Codigo
	}
	if dto.Descripcion != nil {
		t.Descripcion = *dto.Descripcion
	}
	if dto.Activo != nil {
		t.Activo = *dto.Activo
	}

	if err := s.repo.Update(t); err != nil {
		s.logger.Error("failed to update document type", "error", err, "tipo_id", id)
		return nil, err
	}
	return t, nil
}

func (s *Service) Delete(id int64) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(id); err != nil {
		s.logger.Error("failed to deactivate document type", "error", err, "tipo_id", id)
		return err
	}
	return nil
}
