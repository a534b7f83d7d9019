package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/worklane/workforce-backend-go/internal/config"
	"github.com/worklane/workforce-backend-go/internal/handler/http/middleware"
	"github.com/worklane/workforce-backend-go/internal/pkg/jwt"
)

func NewRouter(
	cfg *config.Config,
	jwtService jwt.Service,
	authHandler AuthHandler,
	attendanceHandler AttendanceHandler,
	approvalHandler ApprovalHandler,
	notificationHandler NotificationHandler,
) *chi.Mux {
	r := chi.NewRouter()

	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "workforce-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/logout", authHandler.Logout)
		})

		// The SSE stream authenticates with a query-string token because
		// EventSource cannot set headers.
		r.Get("/notifications/stream", notificationHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {

				// Subject endpoints need an organization-bound account
				r.Group(func(r chi.Router) {
					r.Use(middleware.OrganizationRequired)
					r.Post("/check-in", attendanceHandler.CheckIn)
					r.Post("/check-out", attendanceHandler.CheckOut)
					r.Get("/status", attendanceHandler.Status)
					r.Get("/my", attendanceHandler.GetMyRecords)
				})

				r.Get("/{id}", attendanceHandler.Get)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Use(middleware.OrganizationRequired)
					r.Get("/", attendanceHandler.List)
					r.Put("/{id}", attendanceHandler.Update)
					r.Delete("/{id}", attendanceHandler.Delete)
				})
			})

			r.Route("/approvals", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.OrganizationRequired)
					r.Post("/", approvalHandler.Enqueue)
					r.Get("/", approvalHandler.List)
				})

				r.Get("/{id}", approvalHandler.Get)

				// Admin only; global admins resolve without an organization
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/{id}/approve", approvalHandler.Approve)
					r.Post("/{id}/reject", approvalHandler.Reject)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Get("/unread-count", notificationHandler.UnreadCount)
				r.Get("/sse-token", notificationHandler.SSEToken)
				r.Put("/read", notificationHandler.MarkAsRead)
				r.Put("/read-all", notificationHandler.MarkAllAsRead)
				r.Delete("/{id}", notificationHandler.Delete)
			})
		})
	})

	return r
}
