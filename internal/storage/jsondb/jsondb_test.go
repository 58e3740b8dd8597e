package jsondb

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/aanand-mishra/learnfast-registration/internal/storage"
	"github.com/aanand-mishra/learnfast-registration/internal/types"
)

type StoreSuite struct {
	suite.Suite
	backend *MemoryBackend
	store   *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.backend = NewMemoryBackend()
	store, err := Open(s.backend)
	s.Require().NoError(err)
	s.store = store
}

func newQuick(email string) types.QuickRegistration {
	return types.QuickRegistration{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "$2a$04$hash",
		RegisteredAt: time.Now().UTC().Round(0),
	}
}

func newStudent(email string) types.Student {
	course := "web-dev"
	return types.Student{
		ID:            uuid.NewString(),
		Firstname:     "Ada",
		Lastname:      "Lovelace",
		Email:         email,
		PasswordHash:  "$2a$04$hash",
		Course:        &course,
		TermsAccepted: true,
		RegisteredAt:  time.Now().UTC().Round(0),
	}
}

func (s *StoreSuite) TestLoadCreatesEmptyDocument() {
	s.Equal(1, s.backend.Writes(), "Load must create the missing document")

	raw, err := s.backend.Read()
	s.Require().NoError(err)
	s.JSONEq(`{"students": [], "quickRegistrations": []}`, string(raw))
}

func (s *StoreSuite) TestLookups() {
	s.Run("finds a quick registration after creation", func() {
		rec := newQuick("a@b.com")
		s.Require().NoError(s.store.CreateQuickRegistration(rec))

		found, err := s.store.FindQuickRegistration("a@b.com")
		s.Require().NoError(err)
		s.Equal(rec, found)
	})

	s.Run("returns ErrNotFound for unknown email", func() {
		_, err := s.store.FindQuickRegistration("nobody@b.com")
		s.Require().ErrorIs(err, storage.ErrNotFound)

		_, err = s.store.FindStudent("nobody@b.com")
		s.Require().ErrorIs(err, storage.ErrNotFound)
	})

	s.Run("lookup is case-sensitive", func() {
		_, err := s.store.FindQuickRegistration("A@B.COM")
		s.Require().ErrorIs(err, storage.ErrNotFound)
	})
}

func (s *StoreSuite) TestDuplicateRejected() {
	s.Require().NoError(s.store.CreateStudent(newStudent("ada@example.com")))
	err := s.store.CreateStudent(newStudent("ada@example.com"))
	s.Require().ErrorIs(err, storage.ErrAlreadyExists)

	s.Len(s.store.Snapshot().Students, 1)
}

func (s *StoreSuite) TestCollectionsAreIndependent() {
	s.Require().NoError(s.store.CreateQuickRegistration(newQuick("same@example.com")))
	s.Require().NoError(s.store.CreateStudent(newStudent("same@example.com")))

	doc := s.store.Snapshot()
	s.Len(doc.QuickRegistrations, 1)
	s.Len(doc.Students, 1)
}

func (s *StoreSuite) TestEveryInsertIsFlushed() {
	before := s.backend.Writes()
	s.Require().NoError(s.store.CreateQuickRegistration(newQuick("one@example.com")))
	s.Require().NoError(s.store.CreateStudent(newStudent("two@example.com")))
	s.Equal(before+2, s.backend.Writes())

	// A rejected duplicate does not write.
	_ = s.store.CreateStudent(newStudent("two@example.com"))
	s.Equal(before+2, s.backend.Writes())
}

func (s *StoreSuite) TestReloadRoundTrip() {
	quick := newQuick("q@example.com")
	student := newStudent("s@example.com")
	noCourse := newStudent("nocourse@example.com")
	noCourse.Course = nil
	s.Require().NoError(s.store.CreateQuickRegistration(quick))
	s.Require().NoError(s.store.CreateStudent(student))
	s.Require().NoError(s.store.CreateStudent(noCourse))

	reloaded, err := Open(s.backend)
	s.Require().NoError(err)

	gotQuick, err := reloaded.FindQuickRegistration("q@example.com")
	s.Require().NoError(err)
	s.Equal(quick, gotQuick)

	gotStudent, err := reloaded.FindStudent("s@example.com")
	s.Require().NoError(err)
	s.Equal(student, gotStudent)

	gotNoCourse, err := reloaded.FindStudent("nocourse@example.com")
	s.Require().NoError(err)
	s.Nil(gotNoCourse.Course)
}

func (s *StoreSuite) TestConcurrentInsertsOfSameEmail() {
	const n = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.store.CreateQuickRegistration(newQuick("race@example.com")); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, created)
	s.Len(s.store.Snapshot().QuickRegistrations, 1)
}

// failingBackend accepts the initial create and fails every later write.
type failingBackend struct {
	MemoryBackend
	fail bool
}

func (b *failingBackend) Write(data []byte) error {
	if b.fail {
		return errors.New("disk full")
	}
	return b.MemoryBackend.Write(data)
}

func TestFailedFlushLeavesNoPartialInsert(t *testing.T) {
	backend := &failingBackend{}
	store, err := Open(backend)
	require.NoError(t, err)

	backend.fail = true
	err = store.CreateQuickRegistration(newQuick("a@b.com"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrAlreadyExists)

	_, err = store.FindQuickRegistration("a@b.com")
	require.ErrorIs(t, err, storage.ErrNotFound)

	// Once the backend recovers the same email can be inserted.
	backend.fail = false
	require.NoError(t, store.CreateQuickRegistration(newQuick("a@b.com")))
}

func TestLoadRejectsCorruptDocument(t *testing.T) {
	backend := NewMemoryBackend()
	require.NoError(t, backend.Write([]byte(`{"students": [`)))

	_, err := Open(backend)
	require.Error(t, err)
}

func TestLoadAcceptsNullCollections(t *testing.T) {
	backend := NewMemoryBackend()
	require.NoError(t, backend.Write([]byte(`{"students": null}`)))

	store, err := Open(backend)
	require.NoError(t, err)

	doc := store.Snapshot()
	assert.Empty(t, doc.Students)
	assert.Empty(t, doc.QuickRegistrations)
}

func TestFileBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "db.json")

	store, err := Open(NewFileBackend(path))
	require.NoError(t, err)

	// The missing file is created on load.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"students": [], "quickRegistrations": []}`, string(raw))

	rec := newQuick("file@example.com")
	require.NoError(t, store.CreateQuickRegistration(rec))

	raw, err = os.ReadFile(path)
	require.NoError(t, err)
	var doc Document
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc.QuickRegistrations, 1)
	assert.Equal(t, rec, doc.QuickRegistrations[0])

	// No temp files are left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	reopened, err := Open(NewFileBackend(path))
	require.NoError(t, err)
	got, err := reopened.FindQuickRegistration("file@example.com")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}
