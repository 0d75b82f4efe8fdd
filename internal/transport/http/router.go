// Package httptransport assembles the public router. Handlers own their
// middleware chains; the router only mounts them next to the operational
// endpoints.
package httptransport

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yabetsTesfaye/addiscares-backend/internal/transport/http/shared"
)

// Registrar is anything that can attach its routes to the router.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports backend liveness for the health endpoint.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// NewRouter wires all endpoints. nil health checkers are skipped so the
// memory backend serves a trivially healthy /healthz.
func NewRouter(handlers []Registrar, checks map[string]HealthChecker) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", handleHealth(checks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	for _, h := range handlers {
		h.Register(r)
	}
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func handleHealth(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: map[string]string{}}
		status := http.StatusOK
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check.Health(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		shared.WriteJSON(w, status, resp)
	}
}
