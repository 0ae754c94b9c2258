package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/surplusmarket-backend/api/controllers"
	ordercontrollers "github.com/angelmondragon/surplusmarket-backend/api/controllers/orders"
	"github.com/angelmondragon/surplusmarket-backend/api/middleware"
	"github.com/angelmondragon/surplusmarket-backend/internal/orders"
	"github.com/angelmondragon/surplusmarket-backend/pkg/config"
	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
	"github.com/angelmondragon/surplusmarket-backend/pkg/logger"
)

// Deps are the collaborators the HTTP surface needs. Health entries may be nil when the
// dependency is not configured.
type Deps struct {
	Health       map[string]controllers.Pinger
	Idempotency  middleware.IdempotencyStore
	Orders       orders.Service
	Inbox        controllers.NotificationsInbox
	MetricsRoute http.Handler
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Health))
	})
	if deps.MetricsRoute != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsRoute)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Idempotency, logg))

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.RequireRole(logg, enums.ActorRoleCustomer, enums.ActorRoleAdmin)).
				Post("/", ordercontrollers.Create(deps.Orders, logg))
			r.Get("/", ordercontrollers.List(deps.Orders, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(deps.Orders, logg))
			r.Post("/{orderId}/status", ordercontrollers.UpdateStatus(deps.Orders, logg))
			r.Post("/{orderId}/cancel", ordercontrollers.Cancel(deps.Orders, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Inbox, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Inbox, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Inbox, logg))
		})
	})

	return r
}
