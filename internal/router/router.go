package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/GregMSThompson/widget-dashboard/internal/handlers"
	"github.com/GregMSThompson/widget-dashboard/internal/middleware"
)

func NewRouter(deps *handlers.Deps, metrics http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewLoggerMiddleware(deps.Log).LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}

	dh := handlers.NewDashboardHandlers(deps)
	auth := middleware.NewMiddleware(deps.Firebase)

	r.With(auth.FirebaseAuth).Mount("/dashboard", dh.DashboardRoutes())
	return r
}
