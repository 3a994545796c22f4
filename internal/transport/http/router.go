package http

import (
	"net/http"

	"github.com/bombers-push/internal/application/audience"
	"github.com/bombers-push/internal/application/device"
	"github.com/bombers-push/internal/application/dispatch"
	"github.com/bombers-push/internal/application/notification"
	"github.com/bombers-push/internal/application/receipt"
	"github.com/bombers-push/internal/config"
	"github.com/bombers-push/internal/domain"
	"github.com/bombers-push/internal/transport/http/handler"
	appmiddleware "github.com/bombers-push/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — registration is hit on every app launch.
	registerRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	resolver := audience.NewResolver(deps.UserRepo, deps.TeamRepo)
	deviceSvc := device.NewService(deps.DeviceRepo)
	tracker := receipt.NewTracker(deps.ReceiptRepo, deviceSvc)
	dispatcher := dispatch.NewDispatcher(
		resolver,
		deviceSvc,
		tracker,
		deps.NotificationRepo,
		deps.UserNotificationRepo,
		deps.Senders,
		cfg.DispatchWorkers,
		cfg.PushTimeout,
	)
	notifSvc := notification.NewService(
		deps.NotificationRepo,
		deps.ReceiptRepo,
		deps.UserNotificationRepo,
		dispatcher,
		cfg.PushEnabled,
	)

	healthH := handler.NewHealthHandler()
	deviceH := handler.NewDeviceHandler(deviceSvc)
	notifH := handler.NewNotificationHandler(notifSvc)
	imageH := handler.NewImageHandler(deps.ImageStore)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			// Any authenticated user
			r.With(registerRL.Limit).Post("/devices/register", deviceH.Register)
			r.Get("/devices", deviceH.List)
			r.Get("/notifications/feed", notifH.Feed)
			r.Post("/notifications/receipt/open", notifH.Open)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Post("/notifications", notifH.Create)
				r.Get("/notifications/{id}", notifH.Get)
				r.Post("/notifications/{id}/send", notifH.Send)
				r.Get("/notifications/{id}/receipts", notifH.Receipts)
				r.Post("/notifications/image", imageH.Upload)
			})
		})
	})

	return r
}
