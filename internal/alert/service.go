package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sgdocumental/document-tracking/internal"
	"github.com/sgdocumental/document-tracking/internal/core/events"
	"github.com/sgdocumental/document-tracking/internal/movement"
)

// AreaUsers resolves which users should be notified about activity in an
// area.
type AreaUsers interface {
	ActiveUserIDs(areaID int64) ([]int64, error)
}

type Service struct {
	repo      Repository
	areaUsers AreaUsers
	logger    *slog.Logger
}

func NewService(repo Repository, areaUsers AreaUsers, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		areaUsers: areaUsers,
		logger:    logger,
	}
}

// Subscribe registers the movement fan-out handler on the event bus.
func (s *Service) Subscribe(bus *events.EventBus) {
	bus.Subscribe(movement.EventDocumentMoved, s.handleDocumentMoved)
}

func (s *Service) List(usuarioID int64) ([]*Alerta, error) {
	alerts, err := s.repo.GetByUsuario(usuarioID, MaxListed)
	if err != nil {
		return nil, internal.NewInternalError("failed to list alerts", err)
	}
	return alerts, nil
}

func (s *Service) UnreadCount(usuarioID int64) (int64, error) {
	count, err := s.repo.CountUnread(usuarioID)
	if err != nil {
		return 0, internal.NewInternalError("failed to count alerts", err)
	}
	return count, nil
}

// MarkRead flags an alert as read. Marking an already read alert again is a
// no-op.
func (s *Service) MarkRead(id, usuarioID int64) (*Alerta, error) {
	a, err := s.ownedAlert(id, usuarioID)
	if err != nil {
		return nil, err
	}
	if a.Leida {
		return a, nil
	}

	now := time.Now().UTC()
	a.Leida = true
	a.FechaLectura = &now
	if err := s.repo.Save(a); err != nil {
		return nil, internal.NewInternalError("failed to update alert", err)
	}
	return a, nil
}

func (s *Service) Delete(id, usuarioID int64) error {
	if _, err := s.ownedAlert(id, usuarioID); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return internal.NewInternalError("failed to delete alert", err)
	}
	return nil
}

func (s *Service) ownedAlert(id, usuarioID int64) (*Alerta, error) {
	a, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load alert", err)
	}
	if a == nil {
		return nil, internal.NewNotFoundError("alert not found", internal.ErrCodeAlertNotFound)
	}
	if a.UsuarioID != usuarioID {
		return nil, internal.NewForbiddenError("alert belongs to another user", internal.ErrCodeAlertNotFound)
	}
	return a, nil
}

// handleDocumentMoved creates one alert per active user of the destination
// area. Failures are logged by the bus; alerts are best effort and never
// block the movement itself.
func (s *Service) handleDocumentMoved(ctx context.Context, event events.Event) error {
	data, ok := event.Payload().(map[string]interface{})
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.EventType())
	}

	areaDestinoID, ok := asInt64(data["area_destino_id"])
	if !ok {
		return fmt.Errorf("event %s missing area_destino_id", event.EventID())
	}
	documentoID, _ := asInt64(data["documento_id"])
	movimientoID, _ := asInt64(data["movimiento_id"])
	motivo, _ := data["motivo"].(string)

	userIDs, err := s.areaUsers.ActiveUserIDs(areaDestinoID)
	if err != nil {
		return fmt.Errorf("resolve destination users: %w", err)
	}
	if len(userIDs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	alerts := make([]*Alerta, 0, len(userIDs))
	for _, userID := range userIDs {
		alerts = append(alerts, &Alerta{
			UUID:          uuid.NewString(),
			UsuarioID:     userID,
			Titulo:        "Documento en camino a su área",
			Mensaje:       motivo,
			TipoAlerta:    TipoMovimiento,
			FechaCreacion: now,
			DocumentoID:   &documentoID,
			MovimientoID:  &movimientoID,
		})
	}

	if err := s.repo.CreateBatch(alerts); err != nil {
		return fmt.Errorf("create alerts: %w", err)
	}

	s.logger.Info("movement alerts created",
		"area_destino_id", areaDestinoID,
		"documento_id", documentoID,
		"count", len(alerts))
	return nil
}

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
