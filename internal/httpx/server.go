package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vladislavdragonenkov/shopcore/internal/health"
	"github.com/vladislavdragonenkov/shopcore/internal/metrics"
	"github.com/vladislavdragonenkov/shopcore/internal/version"
)

const requestTimeout = 15 * time.Second

// NewRouter собирает роутер API со служебными маршрутами. healthHandler и
// httpMetrics опциональны: nil отключает соответствующую обвязку.
func NewRouter(handler *Handler, healthHandler *health.Handler, httpMetrics *metrics.HTTPMetrics) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	if httpMetrics != nil {
		r.Use(metricsMiddleware(httpMetrics))
	}

	if healthHandler != nil {
		r.Method(http.MethodGet, "/healthz", healthHandler)
		r.Get("/livez", health.LivenessHandler)
		r.Get("/readyz", healthHandler.ReadinessHandler)
	}
	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		v, c, d := version.Info()
		writeJSON(w, http.StatusOK, map[string]string{"version": v, "commit": c, "date": d})
	})

	handler.Register(r)
	return r
}

// metricsMiddleware записывает длительность запроса по шаблону маршрута,
// а не по сырому пути, чтобы не раздувать кардинальность метрики.
func metricsMiddleware(m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			m.RecordRequest(r.Method, route, ww.Status(), time.Since(start))
		})
	}
}
