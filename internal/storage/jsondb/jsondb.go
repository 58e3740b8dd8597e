// Package jsondb provides a storage.Storage implementation that keeps the
// whole state in memory and rewrites it as one JSON document after every
// insert:
//
//	{ "students": [...], "quickRegistrations": [...] }
//
// The document is loaded once at startup. If the backend has no data yet
// it is created with both collections empty.
//
// A single mutex covers duplicate check, append and flush, so two
// concurrent inserts of the same email cannot both succeed.
package jsondb

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/aanand-mishra/learnfast-registration/internal/storage"
	"github.com/aanand-mishra/learnfast-registration/internal/types"
)

// Document is the persisted layout.
type Document struct {
	Students           []types.Student           `json:"students"`
	QuickRegistrations []types.QuickRegistration `json:"quickRegistrations"`
}

// Store is the JSON document store.
type Store struct {
	mu      sync.Mutex
	backend Backend
	doc     Document

	// email -> position in the matching slice
	quickByEmail   map[string]int
	studentByEmail map[string]int
}

var _ storage.Storage = (*Store)(nil)

// New returns an empty Store on top of backend. Call Load before use.
func New(backend Backend) *Store {
	s := &Store{backend: backend}
	s.reset(Document{})
	return s
}

// Open is New followed by Load.
func Open(backend Backend) (*Store, error) {
	s := New(backend)
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the in-memory state with the backend's document. A
// missing document is created with empty collections.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.backend.Read()
	if errors.Is(err, ErrNoData) {
		s.reset(Document{})
		if err := s.flushLocked(); err != nil {
			return fmt.Errorf("jsondb.Load: create: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("jsondb.Load: read: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("jsondb.Load: parse: %w", err)
	}
	s.reset(doc)
	return nil
}

// Flush writes the whole in-memory state to the backend.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *Store) FindQuickRegistration(email string) (types.QuickRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.quickByEmail[email]
	if !ok {
		return types.QuickRegistration{}, storage.ErrNotFound
	}
	return s.doc.QuickRegistrations[i], nil
}

func (s *Store) FindStudent(email string) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.studentByEmail[email]
	if !ok {
		return types.Student{}, storage.ErrNotFound
	}
	return s.doc.Students[i], nil
}

func (s *Store) CreateQuickRegistration(rec types.QuickRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quickByEmail[rec.Email]; ok {
		return storage.ErrAlreadyExists
	}

	n := len(s.doc.QuickRegistrations)
	s.doc.QuickRegistrations = append(s.doc.QuickRegistrations, rec)
	s.quickByEmail[rec.Email] = n

	if err := s.flushLocked(); err != nil {
		// Undo so the failed insert is not visible to later readers.
		s.doc.QuickRegistrations = s.doc.QuickRegistrations[:n]
		delete(s.quickByEmail, rec.Email)
		return fmt.Errorf("CreateQuickRegistration: %w", err)
	}
	return nil
}

func (s *Store) CreateStudent(rec types.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.studentByEmail[rec.Email]; ok {
		return storage.ErrAlreadyExists
	}

	n := len(s.doc.Students)
	s.doc.Students = append(s.doc.Students, rec)
	s.studentByEmail[rec.Email] = n

	if err := s.flushLocked(); err != nil {
		s.doc.Students = s.doc.Students[:n]
		delete(s.studentByEmail, rec.Email)
		return fmt.Errorf("CreateStudent: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the current document.
func (s *Store) Snapshot() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Document{
		Students:           append([]types.Student{}, s.doc.Students...),
		QuickRegistrations: append([]types.QuickRegistration{}, s.doc.QuickRegistrations...),
	}
}

// Close is a no-op: every insert has already been flushed.
func (s *Store) Close() error {
	return nil
}

func (s *Store) flushLocked() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("flush: encode: %w", err)
	}
	if err := s.backend.Write(data); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// reset installs doc and rebuilds the email indexes. Nil collections
// become empty ones so they encode as [] rather than null. When a
// hand-edited file holds the same email twice, the first record wins.
func (s *Store) reset(doc Document) {
	if doc.Students == nil {
		doc.Students = make([]types.Student, 0)
	}
	if doc.QuickRegistrations == nil {
		doc.QuickRegistrations = make([]types.QuickRegistration, 0)
	}
	s.doc = doc

	s.quickByEmail = make(map[string]int, len(doc.QuickRegistrations))
	for i, r := range doc.QuickRegistrations {
		if _, dup := s.quickByEmail[r.Email]; !dup {
			s.quickByEmail[r.Email] = i
		}
	}
	s.studentByEmail = make(map[string]int, len(doc.Students))
	for i, st := range doc.Students {
		if _, dup := s.studentByEmail[st.Email]; !dup {
			s.studentByEmail[st.Email] = i
		}
	}
}
