package document

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sgdocumental/document-tracking/internal"
	"github.com/sgdocumental/document-tracking/internal/area"
	"github.com/sgdocumental/document-tracking/internal/doctype"
	"github.com/sgdocumental/document-tracking/internal/history"
)

// AreaLookup and TipoLookup validate that referenced records exist and are
// active before a document is registered.
type AreaLookup interface {
	GetByID(id int64) (*area.Area, error)
}

type TipoLookup interface {
	GetByID(id int64) (*doctype.TipoDocumento, error)
}

type HistoryReader interface {
	GetByDocumento(documentoID int64) ([]*history.Entry, error)
}

type Service struct {
	repo   Repository
	areas  AreaLookup
	tipos  TipoLookup
	trail  HistoryReader
	logger *slog.Logger
}

func NewService(repo Repository, areas AreaLookup, tipos TipoLookup, trail HistoryReader, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		areas:  areas,
		tipos:  tipos,
		trail:  trail,
		logger: logger,
	}
}

// Create registers a document. The generated codigo is sequential within the
// gestion; the document and its creacion history entry are persisted in one
// transaction.
func (s *Service) Create(dto CreateDocumentoDTO, usuarioID *int64) (*Documento, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	tipo, err := s.tipos.GetByID(dto.TipoDocumentoID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up document type", err)
	}
	if tipo == nil || !tipo.Activo {
		return nil, internal.NewValidationFieldError("tipo_documento_id",
			"document type does not exist or is inactive", internal.ErrCodeInactiveReference)
	}

	origen, err := s.areas.GetByID(dto.AreaOrigenID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up area", err)
	}
	if origen == nil || !origen.Activo {
		return nil, internal.NewValidationFieldError("area_origen_id",
			"area does not exist or is inactive", internal.ErrCodeInactiveReference)
	}

	seq, err := s.repo.NextSequence(dto.Gestion)
	if err != nil {
		return nil, internal.NewInternalError("failed to generate document code", err)
	}

	now := time.Now().UTC()
	doc := &Documento{
		UUID:               uuid.NewString(),
		Codigo:             fmt.Sprintf("DOC-%s-%05d", dto.Gestion, seq),
		NumeroCorrelativo:  dto.NumeroCorrelativo,
		TipoDocumentoID:    dto.TipoDocumentoID,
		AreaOrigenID:       dto.AreaOrigenID,
		Gestion:            dto.Gestion,
		FechaDocumento:     dto.FechaDocumento,
		Descripcion:        dto.Descripcion,
		ResponsableID:      dto.ResponsableID,
		UbicacionFisica:    dto.UbicacionFisica,
		Estado:             EstadoActivo,
		FechaRegistro:      now,
		FechaActualizacion: now,
	}
	qr := fmt.Sprintf("SGD|%s|%s", doc.Codigo, doc.UUID)
	doc.CodigoQR = &qr

	estado := doc.Estado
	obs := "Documento registrado"
	entry := &history.Entry{
		UUID:        uuid.NewString(),
		FechaCambio: now,
		UsuarioID:   usuarioID,
		TipoCambio:  history.TipoCreacion,
		EstadoNuevo: &estado,
		AreaNuevaID: &doc.AreaOrigenID,
		Observacion: &obs,
	}

	if err := s.repo.CreateWithHistory(doc, entry); err != nil {
		return nil, internal.NewInternalError("failed to create document", err)
	}

	s.logger.Info("document registered", "codigo", doc.Codigo, "tipo_documento_id", doc.TipoDocumentoID)
	return doc, nil
}

// Update applies a partial update. Each field that actually changes gets its
// own modificacion history entry carrying the previous value; the write and
// the entries share one transaction.
func (s *Service) Update(id int64, dto UpdateDocumentoDTO, usuarioID *int64) (*Documento, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	doc, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load document", err)
	}
	if doc == nil {
		return nil, internal.NewNotFoundError("document not found", internal.ErrCodeDocumentNotFound)
	}

	now := time.Now().UTC()
	var entries []*history.Entry

	fieldEntry := func(campo, anterior, nuevo string) *history.Entry {
		return &history.Entry{
			UUID:            uuid.NewString(),
			DocumentoID:     doc.ID,
			FechaCambio:     now,
			UsuarioID:       usuarioID,
			TipoCambio:      history.TipoModificacion,
			CampoModificado: &campo,
			ValorAnterior:   &anterior,
			ValorNuevo:      &nuevo,
		}
	}

	if dto.Descripcion != nil && *dto.Descripcion != doc.Descripcion {
		entries = append(entries, fieldEntry("descripcion", doc.Descripcion, *dto.Descripcion))
		doc.Descripcion = *dto.Descripcion
	}

	if dto.UbicacionFisica != nil && *dto.UbicacionFisica != doc.UbicacionFisica {
		entries = append(entries, fieldEntry("ubicacion_fisica", doc.UbicacionFisica, *dto.UbicacionFisica))
		doc.UbicacionFisica = *dto.UbicacionFisica
	}

	if dto.ResponsableID != nil && !sameID(dto.ResponsableID, doc.ResponsableID) {
		entries = append(entries, fieldEntry("responsable_id", formatID(doc.ResponsableID), formatID(dto.ResponsableID)))
		doc.ResponsableID = dto.ResponsableID
	}

	if dto.Estado != nil && *dto.Estado != doc.Estado {
		// en_transito transitions belong to the movement flow; a direct
		// archive here would be undone by the pending devolucion.
		if doc.Estado == EstadoEnTransito || *dto.Estado == EstadoEnTransito {
			return nil, internal.NewConflictError(
				"estado en_transito can only change through movements", internal.ErrCodeDocumentInTransit)
		}
		anterior := doc.Estado
		nuevo := *dto.Estado
		e := fieldEntry("estado", anterior, nuevo)
		e.EstadoAnterior = &anterior
		e.EstadoNuevo = &nuevo
		entries = append(entries, e)
		doc.Estado = nuevo
	}

	if len(entries) == 0 {
		return doc, nil
	}

	doc.FechaActualizacion = now
	if err := s.repo.UpdateWithHistory(doc, entries); err != nil {
		return nil, internal.NewInternalError("failed to update document", err)
	}

	s.logger.Info("document updated", "codigo", doc.Codigo, "changed_fields", len(entries))
	return doc, nil
}

func (s *Service) GetAll() ([]*Documento, error) {
	docs, err := s.repo.GetAll()
	if err != nil {
		return nil, internal.NewInternalError("failed to list documents", err)
	}
	return docs, nil
}

func (s *Service) GetByID(id int64) (*Documento, error) {
	doc, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load document", err)
	}
	if doc == nil {
		return nil, internal.NewNotFoundError("document not found", internal.ErrCodeDocumentNotFound)
	}
	return doc, nil
}

func (s *Service) GetByCodigo(codigo string) (*Documento, error) {
	doc, err := s.repo.GetByCodigo(codigo)
	if err != nil {
		return nil, internal.NewInternalError("failed to load document", err)
	}
	if doc == nil {
		return nil, internal.NewNotFoundError("document not found", internal.ErrCodeDocumentNotFound)
	}
	return doc, nil
}

func (s *Service) GetByQR(codigoQR string) (*Documento, error) {
	doc, err := s.repo.GetByQR(codigoQR)
	if err != nil {
		return nil, internal.NewInternalError("failed to load document", err)
	}
	if doc == nil {
		return nil, internal.NewNotFoundError("document not found", internal.ErrCodeDocumentNotFound)
	}
	return doc, nil
}

// Search applies the filters conjunctively; omitted filters match everything.
func (s *Service) Search(filter BusquedaDocumentoDTO) ([]*Documento, error) {
	if err := filter.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}
	docs, err := s.repo.Search(filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to search documents", err)
	}
	return docs, nil
}

// GetHistory returns the document's audit trail, newest first.
func (s *Service) GetHistory(id int64) ([]*history.Entry, error) {
	doc, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load document", err)
	}
	if doc == nil {
		return nil, internal.NewNotFoundError("document not found", internal.ErrCodeDocumentNotFound)
	}

	entries, err := s.trail.GetByDocumento(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load document history", err)
	}
	return entries, nil
}

// Archive is the delete operation: the document stays queryable but accepts
// no further movements.
func (s *Service) Archive(id int64, usuarioID *int64) error {
	doc, err := s.repo.GetByID(id)
	if err != nil {
		return internal.NewInternalError("failed to load document", err)
	}
	if doc == nil {
		return internal.NewNotFoundError("document not found", internal.ErrCodeDocumentNotFound)
	}
	if doc.Estado == EstadoArchivado {
		return internal.NewConflictError("document is already archived", internal.ErrCodeDocumentArchived)
	}
	if doc.Estado == EstadoEnTransito {
		return internal.NewConflictError("document has a pending movement", internal.ErrCodeDocumentInTransit)
	}

	now := time.Now().UTC()
	anterior := doc.Estado
	nuevo := EstadoArchivado
	obs := "Documento archivado"
	entry := &history.Entry{
		UUID:           uuid.NewString(),
		DocumentoID:    doc.ID,
		FechaCambio:    now,
		UsuarioID:      usuarioID,
		TipoCambio:     history.TipoArchivado,
		EstadoAnterior: &anterior,
		EstadoNuevo:    &nuevo,
		Observacion:    &obs,
	}

	doc.Estado = EstadoArchivado
	doc.FechaActualizacion = now
	if err := s.repo.UpdateWithHistory(doc, []*history.Entry{entry}); err != nil {
		return internal.NewInternalError("failed to archive document", err)
	}

	s.logger.Info("document archived", "codigo", doc.Codigo)
	return nil
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func formatID(id *int64) string {
	if id == nil {
		return ""
	}
	return fmt.Sprintf("%d", *id)
}
