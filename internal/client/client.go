// Package client is the submission side of registration: it validates a
// form with the same rules the server applies, submits it, and keeps the
// form's status line, inline errors and prefill cache up to date.
//
// A Submit call goes through these steps:
//
//	clear errors → collect values → validate (abort on failure)
//	→ "Submitting..." → POST → success: message, redirect or reset,
//	  cache {firstname, email} (full only) | failure: "Error: ..."
//	→ after StatusTimeout, clear a submitting/error status
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aanand-mishra/learnfast-registration/internal/types"
	"github.com/aanand-mishra/learnfast-registration/internal/validate"
)

// PartialKey is the KV key holding the cached {firstname, email}.
const PartialKey = "studentPartial"

// Default UI delays.
const (
	DefaultRedirectDelay = 1500 * time.Millisecond
	DefaultStatusTimeout = 5 * time.Second
)

// Status lines and inline messages shown by the client.
const (
	MsgSubmitting      = "Submitting..."
	MsgServerError     = "Server error"
	MsgInvalidEmail    = "Invalid email"
	MsgPasswordShort   = "Password too short"
	MsgPasswordTooLong = "Password too long"
	MsgRequired        = "Required"
	MsgMustAgree       = "You must agree"
)

// ErrInvalid is returned by Submit when client-side validation fails.
// The form's Errors hold the per-field messages.
var ErrInvalid = errors.New("client: form has invalid fields")

// ServerError is returned by Submit when the API answers with a non-2xx
// status.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Result is what a successful submission returns.
type Result struct {
	Message string
	// Redirect is the absolute URL the form will navigate to, if any.
	Redirect string
	// Student is set for full registrations.
	Student *types.StudentSummary
}

// Config configures a Submitter. Zero values get defaults.
type Config struct {
	// BaseURL is the API root, e.g. "http://localhost:3000".
	BaseURL string

	HTTPClient *http.Client

	// Store caches partial input between sessions. Nil disables caching.
	Store KV

	RedirectDelay time.Duration
	StatusTimeout time.Duration

	// OnNavigate, if set, is called when a scheduled redirect fires.
	OnNavigate func(url string)
}

// Submitter submits forms to the registration API.
type Submitter struct {
	base       *url.URL
	httpClient *http.Client
	store      KV

	redirectDelay time.Duration
	statusTimeout time.Duration
	onNavigate    func(string)

	validator *validate.Validator

	mu     sync.Mutex
	timers []*time.Timer
	wg     sync.WaitGroup
}

// New returns a Submitter for cfg.
func New(cfg Config) (*Submitter, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("client.New: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("client.New: base url %q must be absolute", cfg.BaseURL)
	}

	s := &Submitter{
		base:          base,
		httpClient:    cfg.HTTPClient,
		store:         cfg.Store,
		redirectDelay: cfg.RedirectDelay,
		statusTimeout: cfg.StatusTimeout,
		onNavigate:    cfg.OnNavigate,
		validator:     validate.New(),
	}
	if s.httpClient == nil {
		s.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if s.redirectDelay <= 0 {
		s.redirectDelay = DefaultRedirectDelay
	}
	if s.statusTimeout <= 0 {
		s.statusTimeout = DefaultStatusTimeout
	}
	return s, nil
}

// Submit validates and sends form. It returns ErrInvalid if validation
// fails (nothing is sent), a *ServerError for a non-2xx answer, or the
// transport error. In every case the form's status is updated.
func (s *Submitter) Submit(ctx context.Context, form *Form) (Result, error) {
	form.clearErrors()

	var (
		endpoint string
		payload  any
	)
	switch form.Variant() {
	case Quick:
		req := collectQuick(form)
		endpoint, payload = "/api/quick-register", req
		annotate(form, s.validator.Check(req))
	case Full:
		req := collectFull(form)
		endpoint, payload = "/api/register", req
		annotate(form, s.validator.Check(req))
	default:
		return Result{}, fmt.Errorf("client: unknown form variant %d", form.Variant())
	}

	if len(form.Errors()) > 0 {
		return Result{}, ErrInvalid
	}

	form.setStatus(StatusSubmitting, MsgSubmitting)
	// The status line is cleared later whatever happens next.
	defer s.schedule(s.statusTimeout, form.clearTransientStatus)

	body, err := s.post(ctx, endpoint, payload)
	if err != nil {
		msg := err.Error()
		var serr *ServerError
		if errors.As(err, &serr) {
			msg = serr.Message
		}
		form.setStatus(StatusError, "Error: "+msg)
		slog.Debug("registration submit failed",
			slog.String("endpoint", endpoint),
			slog.String("error", msg))
		return Result{}, err
	}

	res := Result{Message: body.Message, Student: body.Student}
	form.setStatus(StatusSuccess, body.Message)

	if form.Variant() == Quick && body.Redirect != "" {
		res.Redirect = s.resolve(body.Redirect)
		s.schedule(s.redirectDelay, func() {
			form.navigate(res.Redirect)
			if s.onNavigate != nil {
				s.onNavigate(res.Redirect)
			}
		})
	} else {
		form.Reset()
	}

	if full, ok := payload.(types.RegisterRequest); ok {
		s.savePartial(types.StudentSummary{Firstname: full.Firstname, Email: full.Email})
	}

	return res, nil
}

// Prefill fills the firstname and email of a full form from the cached
// partial submission. Empty cached values are skipped. It reports whether
// anything was filled.
func (s *Submitter) Prefill(form *Form) (bool, error) {
	if s.store == nil || form.Variant() != Full {
		return false, nil
	}
	partial, ok, err := LoadPartial(s.store)
	if err != nil || !ok {
		return false, err
	}

	filled := false
	if partial.Firstname != "" {
		form.Set(FieldFirstname, partial.Firstname)
		filled = true
	}
	if partial.Email != "" {
		form.Set(FieldEmail, partial.Email)
		filled = true
	}
	return filled, nil
}

// LoadPartial reads the cached partial submission from store.
func LoadPartial(store KV) (types.StudentSummary, bool, error) {
	raw, ok, err := store.Get(PartialKey)
	if err != nil || !ok {
		return types.StudentSummary{}, false, err
	}
	var partial types.StudentSummary
	if err := json.Unmarshal([]byte(raw), &partial); err != nil {
		return types.StudentSummary{}, false, fmt.Errorf("client: decode %s: %w", PartialKey, err)
	}
	return partial, true, nil
}

// Wait blocks until every scheduled redirect and status timer has run.
func (s *Submitter) Wait() {
	s.wg.Wait()
}

// Close stops timers that have not fired yet.
func (s *Submitter) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.timers {
		if t.Stop() {
			s.wg.Done()
		}
	}
	s.timers = nil
}

func collectQuick(form *Form) types.QuickRegisterRequest {
	return types.QuickRegisterRequest{
		Email:    strings.TrimSpace(form.Value(FieldEmail)),
		Password: form.Value(FieldPassword),
	}
}

func collectFull(form *Form) types.RegisterRequest {
	return types.RegisterRequest{
		Firstname: strings.TrimSpace(form.Value(FieldFirstname)),
		Lastname:  strings.TrimSpace(form.Value(FieldLastname)),
		Email:     strings.TrimSpace(form.Value(FieldEmail)),
		Password:  form.Value(FieldPassword),
		Course:    form.Value(FieldCourse),
		Terms:     form.Terms(),
	}
}

// annotate turns validation failures into inline messages.
func annotate(form *Form, failures []validate.Failure) {
	for _, f := range failures {
		switch {
		case f.Field == FieldEmail:
			form.setError(FieldEmail, MsgInvalidEmail)
		case f.Field == FieldTerms:
			form.setError(FieldTerms, MsgMustAgree)
		case f.Rule == validate.RulePassword:
			form.setError(FieldPassword, MsgPasswordShort)
		case f.Rule == validate.RulePassMax:
			form.setError(FieldPassword, MsgPasswordTooLong)
		default:
			form.setError(f.Field, MsgRequired)
		}
	}
}

type apiResponse struct {
	Message  string                `json:"message"`
	Redirect string                `json:"redirect"`
	Student  *types.StudentSummary `json:"student"`
	Error    string                `json:"error"`
}

func (s *Submitter) post(ctx context.Context, endpoint string, payload any) (apiResponse, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return apiResponse{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.resolve(endpoint), bytes.NewReader(data))
	if err != nil {
		return apiResponse{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return apiResponse{}, err
	}
	defer resp.Body.Close()

	var body apiResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := body.Error
		if decodeErr != nil || msg == "" {
			msg = MsgServerError
		}
		return apiResponse{}, &ServerError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return apiResponse{}, fmt.Errorf("decode response: %w", decodeErr)
	}
	return body, nil
}

func (s *Submitter) resolve(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return s.base.ResolveReference(u).String()
}

func (s *Submitter) savePartial(partial types.StudentSummary) {
	if s.store == nil {
		return
	}
	data, err := json.Marshal(partial)
	if err == nil {
		err = s.store.Set(PartialKey, string(data))
	}
	if err != nil {
		// Registration already succeeded; only the prefill is lost.
		slog.Warn("could not cache partial registration", slog.String("error", err.Error()))
	}
}

func (s *Submitter) schedule(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wg.Add(1)
	t := time.AfterFunc(d, func() {
		defer s.wg.Done()
		fn()
	})
	s.timers = append(s.timers, t)
}
