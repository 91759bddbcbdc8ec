package permission

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/sgdocumental/document-tracking/internal/auth"
	"github.com/sgdocumental/document-tracking/internal/transport"
)

type ServiceAPI interface {
	GetAllPermisos() ([]Permiso, error)
	EffectivePermissions(ctx context.Context, userID int64) ([]Permiso, error)
	UserDetail(userID int64) (*UserPermissionDetail, error)
	RolesMatrix() ([]RoleMatrixEntry, error)
	AssignToRole(ctx context.Context, dto AssignRoleDTO) error
	RevokeFromRole(ctx context.Context, dto AssignRoleDTO) error
	BulkAssignToRole(ctx context.Context, dto BulkAssignRoleDTO) error
	AssignToUser(ctx context.Context, dto AssignUserDTO) error
	RevokeFromUser(ctx context.Context, dto AssignUserDTO) error
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

func (h *Handler) GetPermisos(w http.ResponseWriter, r *http.Request) {
	permisos, err := h.Service.GetAllPermisos()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, permisos)
}

// GetMyPermissions returns the effective permission set of the
// authenticated user.
func (h *Handler) GetMyPermissions(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "missing authenticated user")
		return
	}

	permisos, err := h.Service.EffectivePermissions(r.Context(), user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, permisos)
}

func (h *Handler) GetUserDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	detail, err := h.Service.UserDetail(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) GetRolesMatrix(w http.ResponseWriter, r *http.Request) {
	matrix, err := h.Service.RolesMatrix()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, matrix)
}

func (h *Handler) AssignToRole(w http.ResponseWriter, r *http.Request) {
	var dto AssignRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.AssignToRole(r.Context(), dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "assigned"})
}

func (h *Handler) RevokeFromRole(w http.ResponseWriter, r *http.Request) {
	var dto AssignRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.RevokeFromRole(r.Context(), dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

func (h *Handler) BulkAssignToRole(w http.ResponseWriter, r *http.Request) {
	var dto BulkAssignRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.BulkAssignToRole(r.Context(), dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "assigned"})
}

func (h *Handler) AssignToUser(w http.ResponseWriter, r *http.Request) {
	var dto AssignUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.AssignToUser(r.Context(), dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "assigned"})
}

func (h *Handler) RevokeFromUser(w http.ResponseWriter, r *http.Request) {
	var dto AssignUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.RevokeFromUser(r.Context(), dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}
