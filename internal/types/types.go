// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, the registration service and the client can all
// import types without depending on each other.
package types

import "time"

// QuickRegistration is the minimal signup record: email and password only.
//
// PasswordHash holds the bcrypt output (cost, salt and digest in a single
// string). The plaintext password never reaches a stored record.
type QuickRegistration struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Student is the record created by a full registration.
//
// Course is a pointer so an absent course is written as JSON null.
// TermsAccepted is always true for a stored student.
type Student struct {
	ID            string    `json:"id"`
	Firstname     string    `json:"firstname"`
	Lastname      string    `json:"lastname"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"passwordHash"`
	Course        *string   `json:"course"`
	TermsAccepted bool      `json:"termsAccepted"`
	RegisteredAt  time.Time `json:"registeredAt"`
}

// QuickRegisterRequest is the body of POST /api/quick-register.
//
// Struct tags serve two purposes:
//
//  1. json:"..."     — the wire name of the field.
//  2. validate:"..." — rules checked by the go-playground/validator
//     instance built in internal/validate. Presence (notblank) is listed
//     first so a missing value is never also reported as malformed.
type QuickRegisterRequest struct {
	Email    string `json:"email"    validate:"notblank,emailfmt"`
	Password string `json:"password" validate:"notblank,password,pwmax"`
}

// RegisterRequest is the body of POST /api/register.
// Course is optional; Terms must be the JSON boolean true.
type RegisterRequest struct {
	Firstname string `json:"firstname" validate:"notblank"`
	Lastname  string `json:"lastname"  validate:"notblank"`
	Email     string `json:"email"     validate:"notblank,emailfmt"`
	Password  string `json:"password"  validate:"notblank,password,pwmax"`
	Course    string `json:"course,omitempty"`
	Terms     bool   `json:"terms"     validate:"accepted"`
}

// QuickRegisterResponse is the 201 body of a quick registration.
type QuickRegisterResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

// StudentSummary is the part of a student echoed back after registering
// and cached by the client for later prefill.
type StudentSummary struct {
	Firstname string `json:"firstname"`
	Email     string `json:"email"`
}

// RegisterResponse is the 201 body of a full registration.
type RegisterResponse struct {
	Message string         `json:"message"`
	Student StudentSummary `json:"student"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
