package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jdesfossez/gt1000ctl/internal/facade"
	"github.com/jdesfossez/gt1000ctl/internal/logger"
	"github.com/jdesfossez/gt1000ctl/pkg/api/handlers"
)

// NewRouter creates and configures the chi router with all middleware and routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Custom request logging using the internal logger
//   - Panic recovery to prevent server crashes
//   - Request timeout to prevent hung requests
//
// Routes:
//   - GET  /health        - Liveness probe
//   - GET  /health/ready   - Readiness probe (device identity resolved)
//   - GET  /api/v1/state   - Full mirrored state snapshot
//   - GET  /api/v1/{category}/types             - Known type names for a category
//   - POST /api/v1/{category}/{index}/toggle    - Toggle a switch field
//   - POST /api/v1/{category}/{index}/value     - Set a raw slider value
//   - POST /api/v1/{category}/{index}/type      - Set a type field
func NewRouter(f *facade.Facade) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	healthHandler := handlers.NewHealthHandler(f)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	facadeHandler := handlers.NewFacadeHandler(f)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", facadeHandler.GetState)
		r.Route("/{category}", func(r chi.Router) {
			r.Get("/types", facadeHandler.ListTypes)
			r.Route("/{index}", func(r chi.Router) {
				r.Post("/toggle", facadeHandler.Toggle)
				r.Post("/value", facadeHandler.SetValue)
				r.Post("/type", facadeHandler.SetType)
			})
		})
	})

	return r
}

// requestLogger is a custom middleware that logs requests using the internal logger.
//
// It logs request start at DEBUG and request completion at INFO, with method,
// path, status and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.DebugCtx(r.Context(), "api request started",
			logger.RequestID(requestID), logger.Method(r.Method), logger.Path(r.URL.Path))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger.InfoCtx(r.Context(), "api request completed",
			logger.RequestID(requestID), logger.Method(r.Method), logger.Path(r.URL.Path),
			logger.Status(ww.Status()), logger.DurationMs(logger.Duration(start)))
	})
}
