package alert

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/sgdocumental/document-tracking/internal"
	"github.com/sgdocumental/document-tracking/internal/transport"
)

type ServiceAPI interface {
	List(usuarioID int64) ([]*Alerta, error)
	UnreadCount(usuarioID int64) (int64, error)
	MarkRead(id, usuarioID int64) (*Alerta, error)
	Delete(id, usuarioID int64) error
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

func (h *Handler) GetAlertas(w http.ResponseWriter, r *http.Request) {
	usuarioID := internal.UserIDFromContext(r.Context())
	if usuarioID == 0 {
		h.WriteError(w, http.StatusUnauthorized, "missing authenticated user")
		return
	}

	alerts, err := h.Service.List(usuarioID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, alerts)
}

func (h *Handler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	usuarioID := internal.UserIDFromContext(r.Context())
	if usuarioID == 0 {
		h.WriteError(w, http.StatusUnauthorized, "missing authenticated user")
		return
	}

	count, err := h.Service.UnreadCount(usuarioID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]int64{"no_leidas": count})
}

func (h *Handler) MarkLeida(w http.ResponseWriter, r *http.Request) {
	usuarioID := internal.UserIDFromContext(r.Context())
	if usuarioID == 0 {
		h.WriteError(w, http.StatusUnauthorized, "missing authenticated user")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid alert ID")
		return
	}

	a, err := h.Service.MarkRead(id, usuarioID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) DeleteAlerta(w http.ResponseWriter, r *http.Request) {
	usuarioID := internal.UserIDFromContext(r.Context())
	if usuarioID == 0 {
		h.WriteError(w, http.StatusUnauthorized, "missing authenticated user")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid alert ID")
		return
	}

	if err := h.Service.Delete(id, usuarioID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
