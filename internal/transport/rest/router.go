package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/sgdocumental/document-tracking/internal/alert"
	"github.com/sgdocumental/document-tracking/internal/area"
	"github.com/sgdocumental/document-tracking/internal/auth"
	"github.com/sgdocumental/document-tracking/internal/doctype"
	"github.com/sgdocumental/document-tracking/internal/document"
	"github.com/sgdocumental/document-tracking/internal/movement"
	"github.com/sgdocumental/document-tracking/internal/permission"
	"github.com/sgdocumental/document-tracking/internal/transport/middleware"
	"github.com/sgdocumental/document-tracking/internal/transport/swagger"
	"github.com/sgdocumental/document-tracking/internal/user"
)

// Handlers groups every feature handler the router mounts.
type Handlers struct {
	Auth       *auth.Handler
	Document   *document.Handler
	Movement   *movement.Handler
	Area       *area.Handler
	DocType    *doctype.Handler
	User       *user.Handler
	Permission *permission.Handler
	Alert      *alert.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		// Everything below requires a valid token.
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Route("/documentos", func(dr chi.Router) {
				dr.Get("/", h.Document.GetDocumentos)
				dr.Post("/", h.Document.CreateDocumento)
				dr.Post("/buscar", h.Document.SearchDocumentos)
				dr.Get("/codigo/{codigo}", h.Document.GetDocumentoByCodigo)
				dr.Get("/qr/{codigoQR}", h.Document.GetDocumentoByQR)
				dr.Get("/{id}", h.Document.GetDocumento)
				dr.Put("/{id}", h.Document.UpdateDocumento)
				dr.Get("/{id}/historial", h.Document.GetHistorial)

				dr.Group(func(ar chi.Router) {
					ar.Use(middleware.RequirePermissions(permission.CodeDocumentosEliminar))
					ar.Delete("/{id}", h.Document.DeleteDocumento)
				})
			})

			pr.Route("/movimientos", func(mr chi.Router) {
				mr.Get("/", h.Movement.GetMovimientos)
				mr.Post("/", h.Movement.CreateMovimiento)
				mr.Get("/rango", h.Movement.GetMovimientosByRange)
				mr.Get("/documento/{documentoId}", h.Movement.GetMovimientosByDocumento)
				mr.Get("/{id}", h.Movement.GetMovimiento)
				mr.Post("/{id}/devolver", h.Movement.DevolverMovimiento)
			})

			pr.Route("/areas", func(ar chi.Router) {
				ar.Get("/", h.Area.GetAreas)
				ar.Post("/", h.Area.CreateArea)
				ar.Get("/{id}", h.Area.GetArea)
				ar.Put("/{id}", h.Area.UpdateArea)
				ar.Delete("/{id}", h.Area.DeleteArea)
			})

			pr.Route("/tipos-documento", func(tr chi.Router) {
				tr.Get("/", h.DocType.GetTipos)
				tr.Post("/", h.DocType.CreateTipo)
				tr.Get("/{id}", h.DocType.GetTipo)
				tr.Put("/{id}", h.DocType.UpdateTipo)
				tr.Delete("/{id}", h.DocType.DeleteTipo)
			})

			pr.Route("/usuarios", func(ur chi.Router) {
				ur.Get("/", h.User.GetUsuarios)
				ur.Get("/{id}", h.User.GetUsuario)

				ur.Group(func(ar chi.Router) {
					ar.Use(middleware.RequirePermissions(permission.CodeUsuariosGestionar))
					ar.Put("/{id}/rol", h.User.UpdateRol)
					ar.Put("/{id}/estado", h.User.UpdateEstado)
				})
			})

			pr.Route("/permisos", func(pmr chi.Router) {
				pmr.Get("/usuario", h.Permission.GetMyPermissions)

				// Grant administration is reserved to system administrators.
				pmr.Group(func(ar chi.Router) {
					ar.Use(middleware.RequireAdmin())
					ar.Get("/", h.Permission.GetPermisos)
					ar.Get("/roles", h.Permission.GetRolesMatrix)
					ar.Get("/usuarios/{id}", h.Permission.GetUserDetail)
					ar.Post("/asignar", h.Permission.AssignToRole)
					ar.Post("/revocar", h.Permission.RevokeFromRole)
					ar.Post("/bulk-asignar", h.Permission.BulkAssignToRole)
					ar.Post("/usuarios/asignar", h.Permission.AssignToUser)
					ar.Post("/usuarios/revocar", h.Permission.RevokeFromUser)
				})
			})

			pr.Route("/alertas", func(ar chi.Router) {
				ar.Get("/", h.Alert.GetAlertas)
				ar.Get("/unread-count", h.Alert.GetUnreadCount)
				ar.Put("/{id}/leida", h.Alert.MarkLeida)
				ar.Delete("/{id}", h.Alert.DeleteAlerta)
			})
		})
	})
}
