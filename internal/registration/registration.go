// Package registration runs the signup pipeline shared by both
// registration variants:
//
//	VALIDATE -> CHECK DUPLICATE -> CREATE RECORD -> PERSIST
//
// Validation failures stop the pipeline before the store is touched. The
// duplicate check is a fast path; the store's Create methods repeat it
// atomically, so two concurrent requests for the same email still yield
// exactly one record.
package registration

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aanand-mishra/learnfast-registration/internal/password"
	"github.com/aanand-mishra/learnfast-registration/internal/storage"
	"github.com/aanand-mishra/learnfast-registration/internal/types"
	"github.com/aanand-mishra/learnfast-registration/internal/validate"
)

// Human-readable reasons returned to the caller.
const (
	ReasonQuickRequired  = "Email and password required"
	ReasonQuickEmail     = "Invalid email format"
	ReasonQuickPassword  = "Password must be 8+ characters"
	ReasonQuickDuplicate = "Email already registered"

	ReasonFullRequired  = "All required fields must be filled"
	ReasonFullPassword  = "Password too short"
	ReasonFullEmail     = "Invalid email"
	ReasonFullDuplicate = "Student already exists"

	ReasonPasswordTooLong = "Password must be at most 72 bytes"
)

// Success messages and the quick-registration redirect target.
const (
	QuickMessage  = "Quick registration successful!"
	QuickRedirect = "/#register"
	FullMessage   = "Registration complete! Welcome to LearnFast."
)

// ValidationError reports input that failed validation (HTTP 400).
// Reason is the first failing rule; Failures lists every failing field.
type ValidationError struct {
	Reason   string
	Failures []validate.Failure
}

func (e *ValidationError) Error() string { return e.Reason }

// ConflictError reports an email already present in the target
// collection (HTTP 409).
type ConflictError struct {
	Collection storage.Collection
	Reason     string
}

func (e *ConflictError) Error() string { return e.Reason }

// Service creates registrations.
type Service struct {
	store     storage.Storage
	validator *validate.Validator
	hasher    *password.Hasher

	now   func() time.Time
	newID func() string
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces uuid.NewString.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// New returns a Service storing records in store.
func New(store storage.Storage, hasher *password.Hasher, opts ...Option) *Service {
	s := &Service{
		store:     store,
		validator: validate.New(),
		hasher:    hasher,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QuickRegister validates req and stores a new quick registration.
func (s *Service) QuickRegister(req types.QuickRegisterRequest) (types.QuickRegistration, error) {
	if failures := s.validator.Check(req); failures != nil {
		return types.QuickRegistration{}, &ValidationError{
			Reason:   quickReason(failures),
			Failures: failures,
		}
	}

	_, err := s.store.FindQuickRegistration(req.Email)
	if err == nil {
		return types.QuickRegistration{}, quickConflict()
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return types.QuickRegistration{}, fmt.Errorf("QuickRegister: find: %w", err)
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return types.QuickRegistration{}, err
	}

	rec := types.QuickRegistration{
		ID:           s.newID(),
		Email:        req.Email,
		PasswordHash: hash,
		RegisteredAt: s.timestamp(),
	}

	if err := s.store.CreateQuickRegistration(rec); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return types.QuickRegistration{}, quickConflict()
		}
		return types.QuickRegistration{}, fmt.Errorf("QuickRegister: create: %w", err)
	}
	return rec, nil
}

// Register validates req and stores a new student.
func (s *Service) Register(req types.RegisterRequest) (types.Student, error) {
	if failures := s.validator.Check(req); failures != nil {
		return types.Student{}, &ValidationError{
			Reason:   fullReason(failures),
			Failures: failures,
		}
	}

	_, err := s.store.FindStudent(req.Email)
	if err == nil {
		return types.Student{}, fullConflict()
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return types.Student{}, fmt.Errorf("Register: find: %w", err)
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return types.Student{}, err
	}

	var course *string
	if c := strings.TrimSpace(req.Course); c != "" {
		course = &c
	}

	st := types.Student{
		ID:            s.newID(),
		Firstname:     req.Firstname,
		Lastname:      req.Lastname,
		Email:         req.Email,
		PasswordHash:  hash,
		Course:        course,
		TermsAccepted: true,
		RegisteredAt:  s.timestamp(),
	}

	if err := s.store.CreateStudent(st); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return types.Student{}, fullConflict()
		}
		return types.Student{}, fmt.Errorf("Register: create: %w", err)
	}
	return st, nil
}

func (s *Service) hash(plain string) (string, error) {
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// timestamp is UTC without a monotonic reading so a record compares equal
// to itself after a store round trip.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Round(0)
}

// Presence problems are reported before format problems, whatever field
// they are on. Among format problems each variant has its own order.
func quickReason(failures []validate.Failure) string {
	switch {
	case validate.Has(failures, validate.RuleRequired):
		return ReasonQuickRequired
	case validate.Has(failures, validate.RuleEmail):
		return ReasonQuickEmail
	case validate.Has(failures, validate.RulePassword):
		return ReasonQuickPassword
	default:
		return ReasonPasswordTooLong
	}
}

func fullReason(failures []validate.Failure) string {
	switch {
	case validate.Has(failures, validate.RuleRequired, validate.RuleTerms):
		return ReasonFullRequired
	case validate.Has(failures, validate.RulePassword):
		return ReasonFullPassword
	case validate.Has(failures, validate.RulePassMax):
		return ReasonPasswordTooLong
	default:
		return ReasonFullEmail
	}
}

func quickConflict() error {
	return &ConflictError{Collection: storage.QuickRegistrations, Reason: ReasonQuickDuplicate}
}

func fullConflict() error {
	return &ConflictError{Collection: storage.Students, Reason: ReasonFullDuplicate}
}
