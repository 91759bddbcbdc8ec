package document

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/sgdocumental/document-tracking/internal"
	"github.com/sgdocumental/document-tracking/internal/history"
	"github.com/sgdocumental/document-tracking/internal/transport"
)

type ServiceAPI interface {
	GetAll() ([]*Documento, error)
	GetByID(id int64) (*Documento, error)
	GetByCodigo(codigo string) (*Documento, error)
	GetByQR(codigoQR string) (*Documento, error)
	Search(filter BusquedaDocumentoDTO) ([]*Documento, error)
	GetHistory(id int64) ([]*history.Entry, error)
	Create(dto CreateDocumentoDTO, usuarioID *int64) (*Documento, error)
	Update(id int64, dto UpdateDocumentoDTO, usuarioID *int64) (*Documento, error)
	Archive(id int64, usuarioID *int64) error
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

func (h *Handler) GetDocumentos(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Service.GetAll()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, docs)
}

func (h *Handler) GetDocumento(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid document ID")
		return
	}

	doc, err := h.Service.GetByID(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) GetDocumentoByCodigo(w http.ResponseWriter, r *http.Request) {
	codigo := chi.URLParam(r, "codigo")
	if codigo == "" {
		h.WriteError(w, http.StatusBadRequest, "codigo is required")
		return
	}

	doc, err := h.Service.GetByCodigo(codigo)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) GetDocumentoByQR(w http.ResponseWriter, r *http.Request) {
	codigoQR := chi.URLParam(r, "codigoQR")
	if codigoQR == "" {
		h.WriteError(w, http.StatusBadRequest, "codigoQR is required")
		return
	}

	doc, err := h.Service.GetByQR(codigoQR)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) SearchDocumentos(w http.ResponseWriter, r *http.Request) {
	var filter BusquedaDocumentoDTO
	if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	docs, err := h.Service.Search(filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, docs)
}

func (h *Handler) CreateDocumento(w http.ResponseWriter, r *http.Request) {
	var dto CreateDocumentoDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.Service.Create(dto, currentUserID(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/documentos/%d", doc.ID))
	h.WriteJSON(w, http.StatusCreated, doc)
}

func (h *Handler) UpdateDocumento(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid document ID")
		return
	}

	var dto UpdateDocumentoDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.Service.Update(id, dto, currentUserID(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) DeleteDocumento(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid document ID")
		return
	}

	if err := h.Service.Archive(id, currentUserID(r)); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetHistorial(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid document ID")
		return
	}

	entries, err := h.Service.GetHistory(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, entries)
}

func currentUserID(r *http.Request) *int64 {
	if id := internal.UserIDFromContext(r.Context()); id > 0 {
		return &id
	}
	return nil
}
