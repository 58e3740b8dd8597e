// Package register contains the HTTP handlers for both registration
// variants.
//
// HANDLER PATTERN — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────
// The router expects func(http.ResponseWriter, *http.Request). To inject
// the registration service and metrics we use factory functions that
// accept the dependencies once at startup and return the handler:
//
//	router.HandleFunc("POST /api/quick-register", register.Quick(svc, m))
package register

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/learnfast-registration/internal/metrics"
	"github.com/aanand-mishra/learnfast-registration/internal/registration"
	"github.com/aanand-mishra/learnfast-registration/internal/types"
	"github.com/aanand-mishra/learnfast-registration/internal/utils/response"
)

// maxBodyBytes caps the size of a registration request body.
const maxBodyBytes = 1 << 20

// Registrar is the part of the registration service the handlers use.
type Registrar interface {
	QuickRegister(req types.QuickRegisterRequest) (types.QuickRegistration, error)
	Register(req types.RegisterRequest) (types.Student, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// Quick handles POST /api/quick-register
//
// Request body (JSON):
//
//	{ "email": "a@b.com", "password": "longenough" }
//
// Success response (201 Created):
//
//	{ "message": "Quick registration successful!", "redirect": "/#register" }
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, or failed validation
//	409 Conflict     — email already registered
//	500 Internal     — storage failure
//
// ─────────────────────────────────────────────────────────────────────────────
func Quick(svc Registrar, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		slog.Info("quick registration requested")

		var req types.QuickRegisterRequest
		if err := decode(w, r, &req); err != nil {
			m.ObserveRegistration("quick", metrics.OutcomeInvalid, start)
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		rec, err := svc.QuickRegister(req)
		if err != nil {
			writeError(w, m, "quick", start, err)
			return
		}

		slog.Info("quick registration created", slog.String("id", rec.ID))
		m.ObserveRegistration("quick", metrics.OutcomeCreated, start)

		response.WriteJSON(w, http.StatusCreated, types.QuickRegisterResponse{
			Message:  registration.QuickMessage,
			Redirect: registration.QuickRedirect,
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Full handles POST /api/register
//
// Request body (JSON):
//
//	{ "firstname": "Ada", "lastname": "Lovelace", "email": "ada@example.com",
//	  "password": "analytical", "course": "web-dev", "terms": true }
//
// Success response (201 Created):
//
//	{ "message": "Registration complete! Welcome to LearnFast.",
//	  "student": { "firstname": "Ada", "email": "ada@example.com" } }
//
// Error responses: as for Quick.
// ─────────────────────────────────────────────────────────────────────────────
func Full(svc Registrar, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		slog.Info("full registration requested")

		var req types.RegisterRequest
		if err := decode(w, r, &req); err != nil {
			m.ObserveRegistration("full", metrics.OutcomeInvalid, start)
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		st, err := svc.Register(req)
		if err != nil {
			writeError(w, m, "full", start, err)
			return
		}

		slog.Info("student registered", slog.String("id", st.ID))
		m.ObserveRegistration("full", metrics.OutcomeCreated, start)

		response.WriteJSON(w, http.StatusCreated, types.RegisterResponse{
			Message: registration.FullMessage,
			Student: types.StudentSummary{Firstname: st.Firstname, Email: st.Email},
		})
	}
}

// decode reads a single JSON object from the body into dst.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return errors.New(response.MsgEmptyBody)
	}
	return err
}

// writeError maps service errors to status codes:
// ValidationError → 400, ConflictError → 409, anything else → 500.
func writeError(w http.ResponseWriter, m *metrics.Metrics, variant string, start time.Time, err error) {
	var (
		verr *registration.ValidationError
		cerr *registration.ConflictError
	)

	switch {
	case errors.As(err, &verr):
		slog.Info("registration rejected",
			slog.String("variant", variant),
			slog.String("reason", verr.Reason))
		m.ObserveRegistration(variant, metrics.OutcomeInvalid, start)
		response.WriteJSON(w, http.StatusBadRequest, response.Error(verr.Reason))

	case errors.As(err, &cerr):
		slog.Info("registration conflict",
			slog.String("variant", variant),
			slog.String("collection", string(cerr.Collection)))
		m.ObserveRegistration(variant, metrics.OutcomeConflict, start)
		response.WriteJSON(w, http.StatusConflict, response.Error(cerr.Reason))

	default:
		slog.Error("registration failed",
			slog.String("variant", variant),
			slog.String("error", err.Error()))
		m.ObserveRegistration(variant, metrics.OutcomeError, start)
		response.WriteJSON(w, http.StatusInternalServerError, response.Error(response.MsgInternal))
	}
}
