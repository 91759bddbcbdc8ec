package document_test

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sgdocumental/document-tracking/internal"
	"github.com/sgdocumental/document-tracking/internal/area"
	"github.com/sgdocumental/document-tracking/internal/doctype"
	"github.com/sgdocumental/document-tracking/internal/document"
	"github.com/sgdocumental/document-tracking/internal/history"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDocumentService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Document Service Suite")
}

// MockRepository implements document.Repository for testing
type MockRepository struct {
	docs       map[int64]*document.Documento
	entries    []*history.Entry
	nextID     int64
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{docs: make(map[int64]*document.Documento), nextID: 1}
}

func (m *MockRepository) SetShouldFail(fail bool, err error) {
	m.shouldFail = fail
	m.failError = err
}

func (m *MockRepository) GetAll() ([]*document.Documento, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var out []*document.Documento
	for _, d := range m.docs {
		out = append(out, d)
	}
	return out, nil
}

func (m *MockRepository) GetByID(id int64) (*document.Documento, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.docs[id], nil
}

func (m *MockRepository) GetByCodigo(codigo string) (*document.Documento, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	for _, d := range m.docs {
		if d.Codigo == codigo {
			return d, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) GetByQR(codigoQR string) (*document.Documento, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	for _, d := range m.docs {
		if d.CodigoQR != nil && *d.CodigoQR == codigoQR {
			return d, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) Search(filter document.BusquedaDocumentoDTO) ([]*document.Documento, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var out []*document.Documento
	for _, d := range m.docs {
		if filter.Estado != "" && d.Estado != filter.Estado {
			continue
		}
		if filter.Gestion != "" && d.Gestion != filter.Gestion {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (m *MockRepository) NextSequence(gestion string) (int64, error) {
	if m.shouldFail {
		return 0, m.failError
	}
	var count int64
	for _, d := range m.docs {
		if d.Gestion == gestion {
			count++
		}
	}
	return count + 1, nil
}

func (m *MockRepository) CreateWithHistory(doc *document.Documento, entry *history.Entry) error {
	if m.shouldFail {
		return m.failError
	}
	doc.ID = m.nextID
	m.nextID++
	m.docs[doc.ID] = doc
	entry.DocumentoID = doc.ID
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockRepository) UpdateWithHistory(doc *document.Documento, entries []*history.Entry) error {
	if m.shouldFail {
		return m.failError
	}
	m.docs[doc.ID] = doc
	m.entries = append(m.entries, entries...)
	return nil
}

// MockAreas implements document.AreaLookup
type MockAreas struct {
	areas map[int64]*area.Area
}

func (m *MockAreas) GetByID(id int64) (*area.Area, error) {
	return m.areas[id], nil
}

// MockTipos implements document.TipoLookup
type MockTipos struct {
	tipos map[int64]*doctype.TipoDocumento
}

func (m *MockTipos) GetByID(id int64) (*doctype.TipoDocumento, error) {
	return m.tipos[id], nil
}

type MockTrail struct {
	entries map[int64][]*history.Entry
}

func (m *MockTrail) GetByDocumento(documentoID int64) ([]*history.Entry, error) {
	return m.entries[documentoID], nil
}

var _ = Describe("Document Service", func() {
	var (
		mockRepo *MockRepository
		areas    *MockAreas
		tipos    *MockTipos
		trail    *MockTrail
		service  *document.Service
	)

	validCreate := func() document.CreateDocumentoDTO {
		return document.CreateDocumentoDTO{
			NumeroCorrelativo: "NI-0042",
			TipoDocumentoID:   1,
			AreaOrigenID:      1,
			Gestion:           "2026",
			FechaDocumento:    time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			Descripcion:       "Nota de prueba",
		}
	}

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		areas = &MockAreas{areas: map[int64]*area.Area{
			1: {ID: 1, Nombre: "Contabilidad", Activo: true},
			2: {ID: 2, Nombre: "Archivo", Activo: false},
		}}
		tipos = &MockTipos{tipos: map[int64]*doctype.TipoDocumento{
			1: {ID: 1, Nombre: "Nota Interna", Activo: true},
			2: {ID: 2, Nombre: "Obsoleto", Activo: false},
		}}
		trail = &MockTrail{entries: make(map[int64][]*history.Entry)}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = document.NewService(mockRepo, areas, tipos, trail, logger)
	})

	Describe("Create", func() {
		It("registers the document with a generated sequential codigo", func() {
			doc, err := service.Create(validCreate(), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.Codigo).To(Equal("DOC-2026-00001"))
			Expect(doc.Estado).To(Equal(document.EstadoActivo))
			Expect(doc.UUID).NotTo(BeEmpty())

			second, err := service.Create(validCreate(), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Codigo).To(Equal("DOC-2026-00002"))
		})

		It("assigns a QR payload derived from the codigo", func() {
			doc, err := service.Create(validCreate(), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.CodigoQR).NotTo(BeNil())
			Expect(*doc.CodigoQR).To(ContainSubstring(doc.Codigo))
		})

		It("writes a creacion history entry alongside the document", func() {
			userID := int64(7)
			doc, err := service.Create(validCreate(), &userID)
			Expect(err).NotTo(HaveOccurred())

			Expect(mockRepo.entries).To(HaveLen(1))
			entry := mockRepo.entries[0]
			Expect(entry.TipoCambio).To(Equal(history.TipoCreacion))
			Expect(entry.DocumentoID).To(Equal(doc.ID))
			Expect(*entry.EstadoNuevo).To(Equal(document.EstadoActivo))
			Expect(*entry.UsuarioID).To(Equal(userID))
		})

		It("rejects a missing numero_correlativo", func() {
			dto := validCreate()
			dto.NumeroCorrelativo = ""
			_, err := service.Create(dto, nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("rejects an inactive document type", func() {
			dto := validCreate()
			dto.TipoDocumentoID = 2
			_, err := service.Create(dto, nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInactiveReference))
		})

		It("rejects an inactive origin area", func() {
			dto := validCreate()
			dto.AreaOrigenID = 2
			_, err := service.Create(dto, nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInactiveReference))
		})

		It("rejects an unknown area", func() {
			dto := validCreate()
			dto.AreaOrigenID = 99
			_, err := service.Create(dto, nil)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Update", func() {
		var docID int64

		BeforeEach(func() {
			doc, err := service.Create(validCreate(), nil)
			Expect(err).NotTo(HaveOccurred())
			docID = doc.ID
			mockRepo.entries = nil
		})

		It("records one history entry per changed field with the previous value", func() {
			newDesc := "Descripción corregida"
			newUbicacion := "Estante B-3"
			_, err := service.Update(docID, document.UpdateDocumentoDTO{
				Descripcion:     &newDesc,
				UbicacionFisica: &newUbicacion,
			}, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(mockRepo.entries).To(HaveLen(2))
			byField := map[string]*history.Entry{}
			for _, e := range mockRepo.entries {
				Expect(e.TipoCambio).To(Equal(history.TipoModificacion))
				byField[*e.CampoModificado] = e
			}
			Expect(*byField["descripcion"].ValorAnterior).To(Equal("Nota de prueba"))
			Expect(*byField["descripcion"].ValorNuevo).To(Equal(newDesc))
			Expect(*byField["ubicacion_fisica"].ValorAnterior).To(Equal(""))
			Expect(*byField["ubicacion_fisica"].ValorNuevo).To(Equal(newUbicacion))
		})

		It("does not record entries for fields that did not change", func() {
			same := "Nota de prueba"
			doc, err := service.Update(docID, document.UpdateDocumentoDTO{Descripcion: &same}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(mockRepo.entries).To(BeEmpty())
			Expect(doc.Descripcion).To(Equal(same))
		})

		It("records estado transitions with both states", func() {
			archivado := document.EstadoArchivado
			_, err := service.Update(docID, document.UpdateDocumentoDTO{Estado: &archivado}, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(mockRepo.entries).To(HaveLen(1))
			entry := mockRepo.entries[0]
			Expect(*entry.EstadoAnterior).To(Equal(document.EstadoActivo))
			Expect(*entry.EstadoNuevo).To(Equal(document.EstadoArchivado))
		})

		It("rejects estado changes while the document is in transit", func() {
			mockRepo.docs[docID].Estado = document.EstadoEnTransito

			archivado := document.EstadoArchivado
			_, err := service.Update(docID, document.UpdateDocumentoDTO{Estado: &archivado}, nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDocumentInTransit))
			Expect(mockRepo.docs[docID].Estado).To(Equal(document.EstadoEnTransito))
			Expect(mockRepo.entries).To(BeEmpty())
		})

		It("rejects setting en_transito directly", func() {
			enTransito := document.EstadoEnTransito
			_, err := service.Update(docID, document.UpdateDocumentoDTO{Estado: &enTransito}, nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDocumentInTransit))
		})

		It("rejects an unknown estado", func() {
			bogus := "perdido"
			_, err := service.Update(docID, document.UpdateDocumentoDTO{Estado: &bogus}, nil)
			Expect(err).To(HaveOccurred())
		})

		It("returns NotFound for a missing document", func() {
			desc := "x"
			_, err := service.Update(9999, document.UpdateDocumentoDTO{Descripcion: &desc}, nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
		})
	})

	Describe("Archive", func() {
		var docID int64

		BeforeEach(func() {
			doc, err := service.Create(validCreate(), nil)
			Expect(err).NotTo(HaveOccurred())
			docID = doc.ID
			mockRepo.entries = nil
		})

		It("sets estado archivado and appends an archivado entry", func() {
			err := service.Archive(docID, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(mockRepo.docs[docID].Estado).To(Equal(document.EstadoArchivado))
			Expect(mockRepo.entries).To(HaveLen(1))
			Expect(mockRepo.entries[0].TipoCambio).To(Equal(history.TipoArchivado))
		})

		It("conflicts while the document is in transit", func() {
			mockRepo.docs[docID].Estado = document.EstadoEnTransito

			err := service.Archive(docID, nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDocumentInTransit))
			Expect(mockRepo.docs[docID].Estado).To(Equal(document.EstadoEnTransito))
		})

		It("conflicts when the document is already archived", func() {
			Expect(service.Archive(docID, nil)).To(Succeed())

			err := service.Archive(docID, nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
		})

		It("returns NotFound for a missing document", func() {
			err := service.Archive(12345, nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
		})
	})

	Describe("GetHistory", func() {
		It("returns NotFound when the document does not exist", func() {
			_, err := service.GetHistory(404)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
		})

		It("returns the trail for an existing document", func() {
			doc, err := service.Create(validCreate(), nil)
			Expect(err).NotTo(HaveOccurred())
			trail.entries[doc.ID] = []*history.Entry{{DocumentoID: doc.ID, TipoCambio: history.TipoCreacion}}

			entries, err := service.GetHistory(doc.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
		})
	})

	Describe("Search", func() {
		It("propagates repository failures", func() {
			mockRepo.SetShouldFail(true, errors.New("db down"))
			_, err := service.Search(document.BusquedaDocumentoDTO{})
			Expect(err).To(HaveOccurred())
		})

		It("rejects an inverted date range", func() {
			desde := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
			hasta := desde.AddDate(0, 0, -10)
			_, err := service.Search(document.BusquedaDocumentoDTO{FechaDesde: &desde, FechaHasta: &hasta})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetByCodigo", func() {
		It("finds a registered document by its generated code", func() {
			doc, err := service.Create(validCreate(), nil)
			Expect(err).NotTo(HaveOccurred())

			found, err := service.GetByCodigo(doc.Codigo)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.ID).To(Equal(doc.ID))
		})

		It("returns NotFound for an unknown code", func() {
			_, err := service.GetByCodigo(fmt.Sprintf("DOC-2026-%05d", 999))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
		})
	})
})
