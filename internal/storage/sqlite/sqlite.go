// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// The JSON document store rewrites the whole file on every insert. SQLite
// keeps the same single-file deployment but gives us transactional
// inserts: each collection is a table with a UNIQUE email column, so
// "insert if absent" is one INSERT statement and the database enforces
// it even under concurrent requests.
//
// Importing go-sqlite3 registers the "sqlite3" driver with database/sql
// in the driver's init(); we also use its Error type to recognise
// constraint violations.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/learnfast-registration/internal/config"
	"github.com/aanand-mishra/learnfast-registration/internal/storage"
	"github.com/aanand-mishra/learnfast-registration/internal/types"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

var _ storage.Storage = (*SQLite)(nil)

// Timestamps are stored as TEXT in this layout so they sort and compare
// correctly and round-trip without losing precision.
const timeLayout = time.RFC3339Nano

// New opens the SQLite database at cfg.StoragePath, creates both tables
// if they do not already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sql.Open("sqlite3", cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// CREATE TABLE IF NOT EXISTS is idempotent — safe to run on every
	// startup.
	//
	// email is UNIQUE per table: the two collections are separate
	// namespaces. terms_accepted is constrained to 1 so no student can
	// ever be stored without accepting the terms.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS quick_registrations (
			id             TEXT PRIMARY KEY,
			email          TEXT NOT NULL UNIQUE,
			password_hash  TEXT NOT NULL,
			registered_at  TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS students (
			id             TEXT PRIMARY KEY,
			firstname      TEXT NOT NULL,
			lastname       TEXT NOT NULL,
			email          TEXT NOT NULL UNIQUE,
			password_hash  TEXT NOT NULL,
			course         TEXT,
			terms_accepted INTEGER NOT NULL CHECK (terms_accepted = 1),
			registered_at  TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create tables: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// CreateQuickRegistration inserts a row into quick_registrations.
//
// There is no separate SELECT before the INSERT: the UNIQUE constraint
// rejects a duplicate email atomically and we translate that error into
// storage.ErrAlreadyExists.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) CreateQuickRegistration(rec types.QuickRegistration) error {
	stmt, err := s.Db.Prepare(
		"INSERT INTO quick_registrations (id, email, password_hash, registered_at) VALUES (?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("CreateQuickRegistration: prepare: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(rec.ID, rec.Email, rec.PasswordHash, rec.RegisteredAt.UTC().Format(timeLayout))
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("CreateQuickRegistration: exec: %w", err)
	}
	return nil
}

// CreateStudent inserts a row into students. See CreateQuickRegistration.
func (s *SQLite) CreateStudent(rec types.Student) error {
	if !rec.TermsAccepted {
		return fmt.Errorf("CreateStudent: terms not accepted")
	}

	stmt, err := s.Db.Prepare(`
		INSERT INTO students
			(id, firstname, lastname, email, password_hash, course, terms_accepted, registered_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?)`,
	)
	if err != nil {
		return fmt.Errorf("CreateStudent: prepare: %w", err)
	}
	defer stmt.Close()

	// A nil *string is stored as SQL NULL.
	var course sql.NullString
	if rec.Course != nil {
		course = sql.NullString{String: *rec.Course, Valid: true}
	}

	_, err = stmt.Exec(
		rec.ID, rec.Firstname, rec.Lastname, rec.Email, rec.PasswordHash,
		course, rec.RegisteredAt.UTC().Format(timeLayout),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("CreateStudent: exec: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// FindQuickRegistration fetches exactly one row matched by email.
// QueryRow returns a *Row; a missing match surfaces as sql.ErrNoRows from
// Scan, which we translate to storage.ErrNotFound.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) FindQuickRegistration(email string) (types.QuickRegistration, error) {
	stmt, err := s.Db.Prepare(
		"SELECT id, email, password_hash, registered_at FROM quick_registrations WHERE email = ? LIMIT 1",
	)
	if err != nil {
		return types.QuickRegistration{}, fmt.Errorf("FindQuickRegistration: prepare: %w", err)
	}
	defer stmt.Close()

	var (
		rec          types.QuickRegistration
		registeredAt string
	)
	err = stmt.QueryRow(email).Scan(&rec.ID, &rec.Email, &rec.PasswordHash, &registeredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.QuickRegistration{}, storage.ErrNotFound
		}
		return types.QuickRegistration{}, fmt.Errorf("FindQuickRegistration: scan: %w", err)
	}

	rec.RegisteredAt, err = time.Parse(timeLayout, registeredAt)
	if err != nil {
		return types.QuickRegistration{}, fmt.Errorf("FindQuickRegistration: parse time: %w", err)
	}
	return rec, nil
}

// FindStudent fetches exactly one student matched by email.
func (s *SQLite) FindStudent(email string) (types.Student, error) {
	stmt, err := s.Db.Prepare(`
		SELECT id, firstname, lastname, email, password_hash, course, terms_accepted, registered_at
		FROM students WHERE email = ? LIMIT 1`,
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("FindStudent: prepare: %w", err)
	}
	defer stmt.Close()

	var (
		st           types.Student
		course       sql.NullString
		registeredAt string
	)
	err = stmt.QueryRow(email).Scan(
		&st.ID,
		&st.Firstname,
		&st.Lastname,
		&st.Email,
		&st.PasswordHash,
		&course,
		&st.TermsAccepted,
		&registeredAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, storage.ErrNotFound
		}
		return types.Student{}, fmt.Errorf("FindStudent: scan: %w", err)
	}

	if course.Valid {
		st.Course = &course.String
	}
	st.RegisteredAt, err = time.Parse(timeLayout, registeredAt)
	if err != nil {
		return types.Student{}, fmt.Errorf("FindStudent: parse time: %w", err)
	}
	return st, nil
}

// Close closes the connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// isUniqueViolation reports whether err is SQLite's UNIQUE constraint
// failure (SQLITE_CONSTRAINT_UNIQUE or, for the id column,
// SQLITE_CONSTRAINT_PRIMARYKEY).
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
