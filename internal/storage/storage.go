// Package storage defines the Storage interface — a contract that any
// record store must satisfy to work with the registration service.
//
// Handlers and the service never know which store they are talking to.
// Two implementations exist:
//
//   - jsondb: the whole state held in memory and rewritten to a single
//     JSON document after every insert (the default).
//   - sqlite: one table per collection with a UNIQUE email column.
//
// There is one namespace per registration variant: the same email may
// be registered once as a quick registration and once as a student.
package storage

import (
	"errors"

	"github.com/aanand-mishra/learnfast-registration/internal/types"
)

// Collection names a record namespace. The values match the keys of the
// persisted JSON document.
type Collection string

const (
	QuickRegistrations Collection = "quickRegistrations"
	Students           Collection = "students"
)

var (
	// ErrNotFound is returned by the Find methods when no record has the
	// requested email.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists is returned by the Create methods when a record with
	// the same email already exists in the target collection.
	ErrAlreadyExists = errors.New("record already exists")
)

// Storage is the record store contract.
type Storage interface {
	// FindQuickRegistration returns the quick registration with the exact
	// email, or ErrNotFound.
	FindQuickRegistration(email string) (types.QuickRegistration, error)

	// FindStudent returns the student with the exact email, or ErrNotFound.
	FindStudent(email string) (types.Student, error)

	// CreateQuickRegistration inserts rec unless its email is already
	// taken (ErrAlreadyExists). The check and the insert are atomic, and
	// the record is durable once this returns nil.
	CreateQuickRegistration(rec types.QuickRegistration) error

	// CreateStudent is CreateQuickRegistration for the students collection.
	CreateStudent(rec types.Student) error

	// Close releases any resources held by the store.
	Close() error
}
