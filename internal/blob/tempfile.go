package blob

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/alnah/go-qrsheet/internal/fileutil"
)

// TempFile writes each blob to its own file under dir and hands out file://
// URLs, so a system viewer can open them. Revoke deletes the file.
type TempFile struct {
	dir string

	mu     sync.Mutex
	files  map[string]tempEntry
	closed bool
}

type tempEntry struct {
	path        string
	contentType string
}

// NewTempFile creates a TempFile store. An empty dir selects os.TempDir().
func NewTempFile(dir string) *TempFile {
	if dir == "" {
		dir = os.TempDir()
	}
	return &TempFile{dir: dir, files: make(map[string]tempEntry)}
}

// Put writes data to a new file.
func (s *TempFile) Put(data []byte, contentType string) (Handle, error) {
	if len(data) == 0 {
		return Handle{}, ErrEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Handle{}, ErrClosed
	}

	id := newID()
	path := filepath.Join(s.dir, fileutil.TempPrefix+id+"."+extension(contentType))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return Handle{}, fmt.Errorf("writing blob: %w", err)
	}

	s.files[id] = tempEntry{path: path, contentType: contentType}
	return Handle{ID: id, URL: fileURL(path), ContentType: contentType}, nil
}

// Get reads the blob back from disk.
func (s *TempFile) Get(id string) ([]byte, string, error) {
	s.mu.Lock()
	e, ok := s.files[id]
	s.mu.Unlock()
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	data, err := os.ReadFile(e.path) // #nosec G304 -- path built by Put
	if err != nil {
		return nil, "", fmt.Errorf("reading blob: %w", err)
	}
	return data, e.contentType, nil
}

// Path returns the file backing id.
func (s *TempFile) Path(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.files[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.path, nil
}

// Revoke deletes the file behind id.
func (s *TempFile) Revoke(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.files[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.files, id)
	if err := os.Remove(e.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing blob: %w", err)
	}
	return nil
}

// Close deletes every file still held.
func (s *TempFile) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for id, e := range s.files {
		if err := os.Remove(e.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
		delete(s.files, id)
	}
	s.closed = true
	return errors.Join(errs...)
}

// fileURL converts an absolute path to a file:// URL.
func fileURL(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

// Compile-time interface check.
var _ Store = (*TempFile)(nil)
