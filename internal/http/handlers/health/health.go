// Package health serves GET /api/health.
package health

import (
	"net/http"
	"time"

	"github.com/aanand-mishra/learnfast-registration/internal/types"
	"github.com/aanand-mishra/learnfast-registration/internal/utils/response"
)

// New returns the health handler. now is usually time.Now.
//
// Success response (200 OK):
//
//	{ "status": "OK", "timestamp": "2026-10-14T12:00:00Z" }
func New(now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, types.HealthResponse{
			Status:    "OK",
			Timestamp: now().UTC(),
		})
	}
}
