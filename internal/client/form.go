package client

import (
	"maps"
	"sync"
)

// Variant selects which registration a form submits.
type Variant int

const (
	Quick Variant = iota
	Full
)

// Field names. They match the JSON names used by the API.
const (
	FieldFirstname = "firstname"
	FieldLastname  = "lastname"
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldCourse    = "course"
	FieldTerms     = "terms"
)

// StatusKind classifies the form's status line.
type StatusKind string

const (
	StatusIdle       StatusKind = ""
	StatusSubmitting StatusKind = "submitting"
	StatusSuccess    StatusKind = "success"
	StatusError      StatusKind = "error"
)

// Form is the client-side state of one signup form: field values, inline
// field errors, a status line and whether the page has navigated away.
//
// Timers started by a Submitter update the form from other goroutines,
// so all access goes through the mutex.
type Form struct {
	mu        sync.Mutex
	variant   Variant
	values    map[string]string
	terms     bool
	errors    map[string]string
	status    string
	kind      StatusKind
	navigated string
}

// NewForm returns an empty form for variant.
func NewForm(variant Variant) *Form {
	return &Form{
		variant: variant,
		values:  make(map[string]string),
		errors:  make(map[string]string),
	}
}

// Variant returns the form's registration variant.
func (f *Form) Variant() Variant {
	return f.variant
}

// Set stores the raw value of a text field.
func (f *Form) Set(field, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[field] = value
}

// Value returns the raw value of a text field.
func (f *Form) Value(field string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[field]
}

// SetTerms sets the terms checkbox.
func (f *Form) SetTerms(accepted bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terms = accepted
}

// Terms reports whether the terms checkbox is ticked.
func (f *Form) Terms() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.terms
}

// Errors returns a copy of the inline field errors.
func (f *Form) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.errors)
}

// Status returns the status line and its kind.
func (f *Form) Status() (string, StatusKind) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, f.kind
}

// NavigatedTo returns the URL the form navigated to, or "".
func (f *Form) NavigatedTo() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.navigated
}

// Reset clears every field value and the terms checkbox. Errors and the
// status line are left alone.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.values)
	f.terms = false
}

func (f *Form) clearErrors() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.errors)
}

func (f *Form) setError(field, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors[field] = msg
}

func (f *Form) setStatus(kind StatusKind, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kind = kind
	f.status = msg
}

// clearTransientStatus clears a submitting or error status unless the
// form has navigated away. A success message stays.
func (f *Form) clearTransientStatus() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.navigated != "" {
		return
	}
	if f.kind == StatusSubmitting || f.kind == StatusError {
		f.kind = StatusIdle
		f.status = ""
	}
}

func (f *Form) navigate(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.navigated = url
}
