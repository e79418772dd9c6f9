package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/Autonom664/hr-performance-dstchemicals/internal/auth"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/conversation"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/cycle"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/report"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/transport/middleware"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/transport/swagger"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/user"
)

// Handlers bundles the per-feature handlers the router mounts.
type Handlers struct {
	Auth         *auth.Handler
	User         *user.Handler
	Cycle        *cycle.Handler
	Conversation *conversation.Handler
	Report       *report.Handler
}

// RegisterAllRoutes wires the full HTTP surface onto the router. The
// API lives under /api; the OpenAPI document and Swagger UI sit at the
// root.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, authz *auth.Authorization, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORSWithOrigins(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"message":"HR Performance Management API","version":"1.0.0"}`))
		})

		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)

			sr.Group(func(ar chi.Router) {
				ar.Use(h.Auth.AuthMiddleware)
				ar.Post("/change-password", h.Auth.ChangePassword)
				ar.Post("/logout", h.Auth.Logout)
				ar.Get("/me", h.Auth.Me)
			})
		})

		// Everything below requires a session.
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/cycles/active", h.Cycle.GetActiveCycle)
			pr.Get("/cycles/all", h.Cycle.ListAllCycles)

			pr.Route("/conversations", func(cr chi.Router) {
				cr.Get("/me", h.Conversation.GetMyConversation)
				cr.Put("/me", h.Conversation.UpdateMyConversation)
				cr.Get("/me/history", h.Conversation.GetMyHistory)
				cr.Get("/{id}", h.Conversation.GetConversation)
				cr.Get("/{id}/pdf", h.Report.ExportConversationPDF)
			})

			pr.Group(func(mr chi.Router) {
				mr.Use(authz.RequireManager())
				mr.Get("/manager/reports", h.Conversation.GetReports)
				mr.Get("/manager/reports/{email}/history", h.Conversation.GetReportHistory)
				mr.Get("/manager/conversations/{employee_email}", h.Conversation.GetReportConversation)
				mr.Put("/manager/conversations/{employee_email}", h.Conversation.UpdateReportConversation)
			})

			pr.Group(func(ar chi.Router) {
				ar.Use(authz.RequireAdmin())

				ar.Route("/admin/users", func(ur chi.Router) {
					ur.Get("/", h.User.ListUsers)
					ur.Post("/", h.User.CreateUser)
					ur.Post("/import", h.User.ImportUsers)
					ur.Post("/import/csv", h.User.ImportUsersCSV)
					ur.Post("/reset-passwords", h.User.ResetAllPasswords)
					ur.Patch("/{email}", h.User.UpdateUser)
					ur.Delete("/{email}", h.User.DeleteUser)
					ur.Post("/{email}/reset-password", h.User.ResetPassword)
				})

				ar.Route("/admin/cycles", func(cr chi.Router) {
					cr.Get("/", h.Cycle.ListCycles)
					cr.Post("/", h.Cycle.CreateCycle)
					cr.Patch("/{id}", h.Cycle.UpdateCycleStatus)
					cr.Delete("/{id}", h.Cycle.DeleteCycle)
				})
			})
		})
	})
}
