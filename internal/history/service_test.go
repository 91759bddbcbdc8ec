package history_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sgdocumental/document-tracking/internal/history"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestHistoryService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "History Service Suite")
}

// MockRepository implements history.Repository for testing
type MockRepository struct {
	entries    []*history.Entry
	shouldFail bool
	failError  error
}

func (m *MockRepository) SetShouldFail(fail bool, err error) {
	m.shouldFail = fail
	m.failError = err
}

func (m *MockRepository) Record(entry *history.Entry) error {
	if m.shouldFail {
		return m.failError
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockRepository) GetByDocumento(documentoID int64) ([]*history.Entry, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var out []*history.Entry
	for _, e := range m.entries {
		if e.DocumentoID == documentoID {
			out = append(out, e)
		}
	}
	return out, nil
}

var _ = Describe("History Service", func() {
	var (
		mockRepo *MockRepository
		service  *history.Service
	)

	BeforeEach(func() {
		mockRepo = &MockRepository{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = history.NewService(mockRepo, logger)
	})

	Describe("Record", func() {
		It("persists the entry and fills uuid and timestamp", func() {
			obs := "Documento revisado"
			entry := &history.Entry{
				DocumentoID: 12,
				TipoCambio:  history.TipoModificacion,
				Observacion: &obs,
			}

			Expect(service.Record(entry)).To(Succeed())
			Expect(mockRepo.entries).To(HaveLen(1))
			Expect(entry.UUID).NotTo(BeEmpty())
			Expect(entry.FechaCambio).NotTo(BeZero())
		})

		It("keeps a caller-supplied uuid and timestamp", func() {
			stamped := time.Date(2026, 2, 14, 10, 30, 0, 0, time.UTC)
			entry := &history.Entry{
				UUID:        "fixed-uuid",
				DocumentoID: 12,
				FechaCambio: stamped,
				TipoCambio:  history.TipoDevolucion,
			}

			Expect(service.Record(entry)).To(Succeed())
			Expect(entry.UUID).To(Equal("fixed-uuid"))
			Expect(entry.FechaCambio).To(Equal(stamped))
		})

		It("rejects an entry without a document id", func() {
			err := service.Record(&history.Entry{TipoCambio: history.TipoCreacion})
			Expect(err).To(Equal(history.ErrEmptyDocumento))
			Expect(mockRepo.entries).To(BeEmpty())
		})

		It("propagates repository failures", func() {
			mockRepo.SetShouldFail(true, errors.New("db down"))
			err := service.Record(&history.Entry{DocumentoID: 12, TipoCambio: history.TipoCreacion})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetByDocumento", func() {
		It("returns only the entries of the requested document", func() {
			Expect(service.Record(&history.Entry{DocumentoID: 1, TipoCambio: history.TipoCreacion})).To(Succeed())
			Expect(service.Record(&history.Entry{DocumentoID: 2, TipoCambio: history.TipoCreacion})).To(Succeed())
			Expect(service.Record(&history.Entry{DocumentoID: 1, TipoCambio: history.TipoMovimiento})).To(Succeed())

			entries, err := service.GetByDocumento(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(2))
		})

		It("propagates repository failures", func() {
			mockRepo.SetShouldFail(true, errors.New("db down"))
			_, err := service.GetByDocumento(1)
			Expect(err).To(HaveOccurred())
		})
	})
})
