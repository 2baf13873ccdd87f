package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/vaultflow/internal/api/middleware"
	"github.com/phrazzld/vaultflow/internal/flow"
)

// RequestTimeout bounds the time a handler may spend on one request.
const RequestTimeout = 30 * time.Second

// NewRouter creates the HTTP handler with all routes and middleware.
func NewRouter(manager *flow.Manager, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(RequestTimeout))

	flows := NewFlowHandler(manager)
	tasks := NewTaskHandler(manager.Registry())

	r.Route("/api", func(r chi.Router) {
		r.Route("/flows", func(r chi.Router) {
			r.Post("/", flows.StartFlow)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", flows.GetFlow)
				r.Delete("/", flows.DeleteFlow)
				r.Post("/unlock", flows.Unlock)
				r.Post("/recreate", flows.Recreate)
				r.Post("/back", flows.Back)
				r.Put("/task", flows.ReplaceTask)
				r.Post("/entries", flows.CreateEntry)
				r.Post("/selection", flows.SelectEntry)
			})
		})

		r.Post("/tasks/resolve", tasks.Resolve)
		r.Get("/tasks/kinds", tasks.Kinds)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
