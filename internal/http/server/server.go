// Package server assembles the HTTP routes of the registration API.
package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aanand-mishra/learnfast-registration/internal/http/handlers/health"
	"github.com/aanand-mishra/learnfast-registration/internal/http/handlers/register"
	"github.com/aanand-mishra/learnfast-registration/internal/metrics"
)

// NewRouter returns the route table:
//
//	POST /api/quick-register → quick (email + password) registration
//	POST /api/register       → full student registration
//	GET  /api/health         → liveness
//	GET  /metrics            → Prometheus metrics from gatherer
func NewRouter(svc register.Registrar, m *metrics.Metrics, gatherer prometheus.Gatherer) *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("POST /api/quick-register", register.Quick(svc, m))
	router.HandleFunc("POST /api/register", register.Full(svc, m))
	router.HandleFunc("GET /api/health", health.New(time.Now))
	router.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return router
}
