package history

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service wraps the repository with logging and defaulting. Writers inside
// repository transactions insert entries directly; this service covers the
// standalone write path and all reads.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Record(entry *Entry) error {
	if entry.DocumentoID == 0 {
		return ErrEmptyDocumento
	}
	Prepare(entry)

	if err := s.repo.Record(entry); err != nil {
		s.logger.Error("failed to record history entry",
			"error", err,
			"documento_id", entry.DocumentoID,
			"tipo_cambio", entry.TipoCambio)
		return err
	}

	return nil
}

func (s *Service) GetByDocumento(documentoID int64) ([]*Entry, error) {
	entries, err := s.repo.GetByDocumento(documentoID)
	if err != nil {
		s.logger.Error("failed to load document history", "error", err, "documento_id", documentoID)
		return nil, err
	}
	return entries, nil
}

// Prepare fills the uuid and timestamp of an entry before insertion.
func Prepare(entry *Entry) {
	if entry.UUID == "" {
		entry.UUID = uuid.NewString()
	}
	if entry.FechaCambio.IsZero() {
		entry.FechaCambio = time.Now().UTC()
	}
}
