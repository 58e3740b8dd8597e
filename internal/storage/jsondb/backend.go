package jsondb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNoData is returned by Backend.Read when nothing has been written yet.
var ErrNoData = errors.New("jsondb: no data")

// Backend is the durability layer under a Store: it reads and writes the
// whole encoded document at once.
type Backend interface {
	// Read returns the last written document, or ErrNoData.
	Read() ([]byte, error)

	// Write replaces the stored document with data. It returns only once
	// the data is durable.
	Write(data []byte) error
}

// FileBackend stores the document in a single file.
//
// Writes go to a temporary file in the same directory which is then
// renamed over the target, so readers see either the old or the new
// document and never a half-written one.
type FileBackend struct {
	path string
}

// NewFileBackend returns a backend for the file at path. The file does
// not have to exist yet.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (b *FileBackend) Read() ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("FileBackend.Read: %w", err)
	}
	return data, nil
}

func (b *FileBackend) Write(data []byte) error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("FileBackend.Write: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("FileBackend.Write: create temp: %w", err)
	}
	tmpName := tmp.Name()
	// Removing after a successful rename fails harmlessly.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("FileBackend.Write: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("FileBackend.Write: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("FileBackend.Write: close: %w", err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		return fmt.Errorf("FileBackend.Write: rename: %w", err)
	}
	return nil
}

// MemoryBackend keeps the encoded document in memory. Used by tests and
// by anything that wants a throwaway store.
type MemoryBackend struct {
	mu     sync.Mutex
	data   []byte
	writes int
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) Read() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return nil, ErrNoData
	}
	return append([]byte(nil), b.data...), nil
}

func (b *MemoryBackend) Write(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append([]byte(nil), data...)
	b.writes++
	return nil
}

// Writes returns how many times Write has been called.
func (b *MemoryBackend) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}
