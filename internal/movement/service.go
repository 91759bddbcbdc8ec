package movement

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sgdocumental/document-tracking/internal"
	"github.com/sgdocumental/document-tracking/internal/area"
	"github.com/sgdocumental/document-tracking/internal/core/events"
	"github.com/sgdocumental/document-tracking/internal/document"
	"github.com/sgdocumental/document-tracking/internal/history"
)

type AreaLookup interface {
	GetByID(id int64) (*area.Area, error)
}

type Service struct {
	repo   Repository
	areas  AreaLookup
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo Repository, areas AreaLookup, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		areas:  areas,
		bus:    bus,
		logger: logger,
	}
}

// Create registers a movement and puts the document en_transito. The whole
// state change runs under a row lock on the document, so of two concurrent
// movements one wins and the other observes en_transito and gets a conflict.
func (s *Service) Create(ctx context.Context, dto CreateMovimientoDTO, usuarioID *int64) (*Movimiento, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	destino, err := s.areas.GetByID(dto.AreaDestinoID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up area", err)
	}
	if destino == nil || !destino.Activo {
		return nil, internal.NewValidationFieldError("area_destino_id",
			"destination area does not exist or is inactive", internal.ErrCodeInactiveReference)
	}

	now := time.Now().UTC()
	var created *Movimiento

	err = s.repo.WithDocumentLock(dto.DocumentoID, func(tx TxRepository, doc *document.Documento) error {
		if doc == nil {
			return internal.NewNotFoundError("document not found", internal.ErrCodeDocumentNotFound)
		}
		if doc.Estado == document.EstadoArchivado {
			return internal.NewConflictError("archived documents cannot be moved", internal.ErrCodeDocumentArchived)
		}
		if doc.Estado == document.EstadoEnTransito {
			return internal.NewConflictError("document is already in transit", internal.ErrCodeDocumentInTransit)
		}

		m := &Movimiento{
			UUID:                 uuid.NewString(),
			DocumentoID:          doc.ID,
			AreaOrigenID:         doc.AreaOrigenID,
			AreaDestinoID:        dto.AreaDestinoID,
			FechaMovimiento:      now,
			UsuarioResponsableID: usuarioID,
			Motivo:               dto.Motivo,
		}
		if err := tx.CreateMovimiento(m); err != nil {
			return err
		}

		estadoAnterior := doc.Estado
		doc.Estado = document.EstadoEnTransito
		doc.FechaActualizacion = now
		if err := tx.SaveDocumento(doc); err != nil {
			return err
		}

		estadoNuevo := doc.Estado
		entry := &history.Entry{
			UUID:           uuid.NewString(),
			DocumentoID:    doc.ID,
			FechaCambio:    now,
			UsuarioID:      usuarioID,
			TipoCambio:     history.TipoMovimiento,
			EstadoAnterior: &estadoAnterior,
			EstadoNuevo:    &estadoNuevo,
			AreaAnteriorID: &m.AreaOrigenID,
			AreaNuevaID:    &m.AreaDestinoID,
			Observacion:    &m.Motivo,
		}
		if err := tx.RecordHistory(entry); err != nil {
			return err
		}

		created = m
		return nil
	})
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		return nil, internal.NewInternalError("failed to register movement", err)
	}

	s.logger.Info("document moved",
		"movimiento_id", created.ID,
		"documento_id", created.DocumentoID,
		"area_destino_id", created.AreaDestinoID)

	s.publish(ctx, EventDocumentMoved, created)
	return created, nil
}

// Return closes a movement: the document goes back to activo and the
// movement records its return date. Returning twice is a conflict.
func (s *Service) Return(ctx context.Context, movimientoID int64, usuarioID *int64) (*Movimiento, error) {
	m, err := s.repo.GetByID(movimientoID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load movement", err)
	}
	if m == nil {
		return nil, internal.NewNotFoundError("movement not found", internal.ErrCodeMovementNotFound)
	}

	now := time.Now().UTC()
	var returned *Movimiento

	err = s.repo.WithDocumentLock(m.DocumentoID, func(tx TxRepository, doc *document.Documento) error {
		if doc == nil {
			return internal.NewNotFoundError("document not found", internal.ErrCodeDocumentNotFound)
		}

		// Re-read under the lock: a concurrent return may have won.
		locked, err := tx.GetMovimiento(movimientoID)
		if err != nil {
			return err
		}
		if locked == nil {
			return internal.NewNotFoundError("movement not found", internal.ErrCodeMovementNotFound)
		}
		if locked.Devuelto {
			return internal.NewConflictError("movement is already returned", internal.ErrCodeAlreadyReturned)
		}

		locked.Devuelto = true
		locked.FechaDevolucion = &now
		if err := tx.SaveMovimiento(locked); err != nil {
			return err
		}

		estadoAnterior := doc.Estado
		doc.Estado = document.EstadoActivo
		doc.FechaActualizacion = now
		if err := tx.SaveDocumento(doc); err != nil {
			return err
		}

		estadoNuevo := doc.Estado
		obs := "Documento devuelto"
		entry := &history.Entry{
			UUID:           uuid.NewString(),
			DocumentoID:    doc.ID,
			FechaCambio:    now,
			UsuarioID:      usuarioID,
			TipoCambio:     history.TipoDevolucion,
			EstadoAnterior: &estadoAnterior,
			EstadoNuevo:    &estadoNuevo,
			AreaAnteriorID: &locked.AreaDestinoID,
			AreaNuevaID:    &locked.AreaOrigenID,
			Observacion:    &obs,
		}
		if err := tx.RecordHistory(entry); err != nil {
			return err
		}

		returned = locked
		return nil
	})
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		return nil, internal.NewInternalError("failed to return movement", err)
	}

	s.logger.Info("document returned",
		"movimiento_id", returned.ID,
		"documento_id", returned.DocumentoID)

	s.publish(ctx, EventDocumentReturned, returned)
	return returned, nil
}

func (s *Service) GetAll() ([]*Movimiento, error) {
	movimientos, err := s.repo.GetAll()
	if err != nil {
		return nil, internal.NewInternalError("failed to list movements", err)
	}
	return movimientos, nil
}

func (s *Service) GetByID(id int64) (*Movimiento, error) {
	m, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load movement", err)
	}
	if m == nil {
		return nil, internal.NewNotFoundError("movement not found", internal.ErrCodeMovementNotFound)
	}
	return m, nil
}

func (s *Service) GetByDocumento(documentoID int64) ([]*Movimiento, error) {
	movimientos, err := s.repo.GetByDocumento(documentoID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list movements", err)
	}
	return movimientos, nil
}

// GetByDateRange lists movements with fecha_movimiento inside the inclusive
// range.
func (s *Service) GetByDateRange(dto DateRangeDTO) ([]*Movimiento, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}
	movimientos, err := s.repo.GetByDateRange(dto.Desde, dto.Hasta)
	if err != nil {
		return nil, internal.NewInternalError("failed to list movements", err)
	}
	return movimientos, nil
}

func (s *Service) publish(ctx context.Context, eventType string, m *Movimiento) {
	if s.bus == nil {
		return
	}
	event := events.BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data: map[string]interface{}{
			"movimiento_id":   m.ID,
			"documento_id":    m.DocumentoID,
			"area_origen_id":  m.AreaOrigenID,
			"area_destino_id": m.AreaDestinoID,
			"motivo":          m.Motivo,
		},
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish movement event", "event_type", eventType, "error", err)
	}
}
