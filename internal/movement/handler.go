package movement

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/sgdocumental/document-tracking/internal"
	"github.com/sgdocumental/document-tracking/internal/transport"
)

type ServiceAPI interface {
	GetAll() ([]*Movimiento, error)
	GetByID(id int64) (*Movimiento, error)
	GetByDocumento(documentoID int64) ([]*Movimiento, error)
	GetByDateRange(dto DateRangeDTO) ([]*Movimiento, error)
	Create(ctx context.Context, dto CreateMovimientoDTO, usuarioID *int64) (*Movimiento, error)
	Return(ctx context.Context, movimientoID int64, usuarioID *int64) (*Movimiento, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) GetMovimientos(w http.ResponseWriter, r *http.Request) {
	movimientos, err := h.Service.GetAll()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, movimientos)
}

func (h *Handler) GetMovimiento(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid movement ID")
		return
	}

	m, err := h.Service.GetByID(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) GetMovimientosByDocumento(w http.ResponseWriter, r *http.Request) {
	documentoID, err := strconv.ParseInt(chi.URLParam(r, "documentoId"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid document ID")
		return
	}

	movimientos, err := h.Service.GetByDocumento(documentoID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, movimientos)
}

// GetMovimientosByRange filters by fecha_movimiento, bounds inclusive.
// Query params: desde, hasta (RFC 3339 or YYYY-MM-DD).
func (h *Handler) GetMovimientosByRange(w http.ResponseWriter, r *http.Request) {
	desde, err := parseDateParam(r.URL.Query().Get("desde"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid desde date")
		return
	}
	rawHasta := r.URL.Query().Get("hasta")
	hasta, err := parseDateParam(rawHasta)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid hasta date")
		return
	}
	// A date-only upper bound covers the whole day.
	if len(rawHasta) == len("2006-01-02") {
		hasta = hasta.Add(24*time.Hour - time.Nanosecond)
	}

	movimientos, err := h.Service.GetByDateRange(DateRangeDTO{Desde: desde, Hasta: hasta})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, movimientos)
}

func (h *Handler) CreateMovimiento(w http.ResponseWriter, r *http.Request) {
	var dto CreateMovimientoDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := h.Service.Create(r.Context(), dto, currentUserID(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, m)
}

func (h *Handler) DevolverMovimiento(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid movement ID")
		return
	}

	m, err := h.Service.Return(r.Context(), id, currentUserID(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, m)
}

func parseDateParam(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func currentUserID(r *http.Request) *int64 {
	if id := internal.UserIDFromContext(r.Context()); id > 0 {
		return &id
	}
	return nil
}
