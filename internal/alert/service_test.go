package alert_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sgdocumental/document-tracking/internal"
	"github.com/sgdocumental/document-tracking/internal/alert"
	"github.com/sgdocumental/document-tracking/internal/core/events"
	"github.com/sgdocumental/document-tracking/internal/movement"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestAlertService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Alert Service Suite")
}

type MockRepository struct {
	alerts     map[int64]*alert.Alerta
	nextID     int64
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{alerts: make(map[int64]*alert.Alerta), nextID: 1}
}

func (m *MockRepository) SetShouldFail(fail bool, err error) {
	m.shouldFail = fail
	m.failError = err
}

func (m *MockRepository) AddAlert(a *alert.Alerta) {
	if a.ID == 0 {
		a.ID = m.nextID
		m.nextID++
	}
	m.alerts[a.ID] = a
}

func (m *MockRepository) GetByUsuario(usuarioID int64, limit int) ([]*alert.Alerta, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var out []*alert.Alerta
	for _, a := range m.alerts {
		if a.UsuarioID == usuarioID && len(out) < limit {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MockRepository) GetByID(id int64) (*alert.Alerta, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.alerts[id], nil
}

func (m *MockRepository) CountUnread(usuarioID int64) (int64, error) {
	if m.shouldFail {
		return 0, m.failError
	}
	var count int64
	for _, a := range m.alerts {
		if a.UsuarioID == usuarioID && !a.Leida {
			count++
		}
	}
	return count, nil
}

func (m *MockRepository) Save(a *alert.Alerta) error {
	if m.shouldFail {
		return m.failError
	}
	m.alerts[a.ID] = a
	return nil
}

func (m *MockRepository) CreateBatch(alerts []*alert.Alerta) error {
	if m.shouldFail {
		return m.failError
	}
	for _, a := range alerts {
		m.AddAlert(a)
	}
	return nil
}

func (m *MockRepository) Delete(id int64) error {
	if m.shouldFail {
		return m.failError
	}
	delete(m.alerts, id)
	return nil
}

type MockAreaUsers struct {
	usersByArea map[int64][]int64
	err         error
}

func (m *MockAreaUsers) ActiveUserIDs(areaID int64) ([]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.usersByArea[areaID], nil
}

var _ = Describe("Alert Service", func() {
	var (
		mockRepo  *MockRepository
		areaUsers *MockAreaUsers
		service   *alert.Service
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockRepo = NewMockRepository()
		areaUsers = &MockAreaUsers{usersByArea: map[int64][]int64{
			2: {20, 21},
			3: {},
		}}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = alert.NewService(mockRepo, areaUsers, logger)
	})

	movedEvent := func(areaDestinoID int64) events.BaseEvent {
		return events.BaseEvent{
			ID:        "evt-1",
			Type:      movement.EventDocumentMoved,
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"movimiento_id":   int64(100),
				"documento_id":    int64(10),
				"area_origen_id":  int64(1),
				"area_destino_id": areaDestinoID,
				"motivo":          "Revisión contable",
			},
		}
	}

	Describe("movement fan-out", func() {
		var bus *events.EventBus

		BeforeEach(func() {
			logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
			bus = events.NewEventBus(logger)
			service.Subscribe(bus)
		})

		It("creates one alert per active user of the destination area", func() {
			Expect(bus.PublishSync(ctx, movedEvent(2))).To(Succeed())

			first, err := service.List(20)
			Expect(err).NotTo(HaveOccurred())
			Expect(first).To(HaveLen(1))
			Expect(first[0].Titulo).To(Equal("Documento en camino a su área"))
			Expect(first[0].Mensaje).To(Equal("Revisión contable"))
			Expect(first[0].TipoAlerta).To(Equal(alert.TipoMovimiento))
			Expect(first[0].Leida).To(BeFalse())
			Expect(*first[0].DocumentoID).To(Equal(int64(10)))
			Expect(*first[0].MovimientoID).To(Equal(int64(100)))

			second, err := service.List(21)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(HaveLen(1))
		})

		It("does nothing when the destination area has no active users", func() {
			Expect(bus.PublishSync(ctx, movedEvent(3))).To(Succeed())
			Expect(mockRepo.alerts).To(BeEmpty())
		})

		It("tolerates numeric payload values decoded as float64", func() {
			event := movedEvent(2)
			event.Data["area_destino_id"] = float64(2)
			event.Data["documento_id"] = float64(10)

			Expect(bus.PublishSync(ctx, event)).To(Succeed())

			alerts, err := service.List(20)
			Expect(err).NotTo(HaveOccurred())
			Expect(alerts).To(HaveLen(1))
			Expect(*alerts[0].DocumentoID).To(Equal(int64(10)))
		})

		It("fails when the payload lacks the destination area", func() {
			event := movedEvent(2)
			delete(event.Data, "area_destino_id")
			Expect(bus.PublishSync(ctx, event)).NotTo(Succeed())
		})

		It("surfaces user resolution failures to the bus", func() {
			areaUsers.err = errors.New("db down")
			Expect(bus.PublishSync(ctx, movedEvent(2))).NotTo(Succeed())
		})
	})

	Describe("UnreadCount", func() {
		It("counts only unread alerts for the user", func() {
			mockRepo.AddAlert(&alert.Alerta{UsuarioID: 20, Titulo: "a"})
			mockRepo.AddAlert(&alert.Alerta{UsuarioID: 20, Titulo: "b", Leida: true})
			mockRepo.AddAlert(&alert.Alerta{UsuarioID: 21, Titulo: "c"})

			count, err := service.UnreadCount(20)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
		})
	})

	Describe("MarkRead", func() {
		var owned *alert.Alerta

		BeforeEach(func() {
			owned = &alert.Alerta{UsuarioID: 20, Titulo: "Documento en camino a su área"}
			mockRepo.AddAlert(owned)
		})

		It("stamps the read time", func() {
			a, err := service.MarkRead(owned.ID, 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Leida).To(BeTrue())
			Expect(a.FechaLectura).NotTo(BeNil())
		})

		It("keeps the original read time when marked again", func() {
			first, err := service.MarkRead(owned.ID, 20)
			Expect(err).NotTo(HaveOccurred())
			readAt := *first.FechaLectura

			again, err := service.MarkRead(owned.ID, 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(*again.FechaLectura).To(Equal(readAt))
		})

		It("refuses another user's alert", func() {
			_, err := service.MarkRead(owned.ID, 99)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("returns NotFound for a missing alert", func() {
			_, err := service.MarkRead(777, 20)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeAlertNotFound))
		})
	})

	Describe("Delete", func() {
		var owned *alert.Alerta

		BeforeEach(func() {
			owned = &alert.Alerta{UsuarioID: 20, Titulo: "x"}
			mockRepo.AddAlert(owned)
		})

		It("removes the owner's alert", func() {
			Expect(service.Delete(owned.ID, 20)).To(Succeed())
			Expect(mockRepo.alerts).To(BeEmpty())
		})

		It("refuses another user's alert", func() {
			err := service.Delete(owned.ID, 99)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})
	})

	Describe("List", func() {
		It("wraps repository failures", func() {
			mockRepo.SetShouldFail(true, errors.New("db down"))
			_, err := service.List(20)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
		})
	})
})
