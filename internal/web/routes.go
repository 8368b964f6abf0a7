package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rook-computer/rendersettings/internal/metrics"
)

// RouterConfig selects the optional parts of the router.
type RouterConfig struct {
	Deps    APIV1Deps
	DevMode bool

	// PreviewRequestsPerMinute limits preview rendering per client IP.
	// Zero means DefaultPreviewRequestsPerMinute; negative disables it.
	PreviewRequestsPerMinute int
}

// DefaultPreviewRequestsPerMinute bounds how often one client can render.
const DefaultPreviewRequestsPerMinute = 120

// NewRouter builds the standard router:
//   - /api/v1/* for the settings API
//   - /metrics for Prometheus
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	if cfg.DevMode {
		r.Use(devCORS)
	}
	r.Use(recordDuration)

	r.Mount("/api/v1", apiV1Router(cfg))
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// recordDuration observes request latency by chi route pattern so path
// parameters do not explode the label set.
func recordDuration(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

// devCORS lets a settings editor served from another local origin call the
// API while developing it.
func devCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Methods", "GET,PUT,OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Set("Access-Control-Expose-Headers", "X-Preview-Cache,Retry-After")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
