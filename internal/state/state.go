// Package state persists small values between runs, such as the last
// transform script.
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/alnah/go-qrsheet/internal/fileutil"
	"github.com/alnah/go-qrsheet/internal/yamlutil"
)

// ScriptKey stores the raw transform script text.
const ScriptKey = "transformScript"

// ErrState wraps read and write failures of the backing store.
var ErrState = errors.New("state store failed")

// KV is a string key-value store.
type KV interface {
	// Get returns the value for key and whether it exists.
	Get(key string) (string, bool, error)
	// Set stores value under key.
	Set(key, value string) error
	// Delete removes key. Missing keys are not an error.
	Delete(key string) error
}

// DefaultPath returns the state file location under the user config
// directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrState, err)
	}
	return filepath.Join(dir, "go-qrsheet", "state.yaml"), nil
}

// Memory keeps values in process memory.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// File stores values as a YAML map in one file. Every Set rewrites the
// file atomically. A missing file reads as empty.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile creates a File store at path. The file is created on first Set.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file.
func (f *File) Path() string {
	return f.path
}

func (f *File) load() (map[string]string, error) {
	values := make(map[string]string)
	info, err := os.Stat(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrState, err)
	}
	if info.Size() == 0 {
		return values, nil
	}
	if err := yamlutil.ReadFile(f.path, &values, false); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrState, f.path, err)
	}
	return values, nil
}

func (f *File) save(values map[string]string) error {
	data, err := yamlutil.Marshal(values)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrState, err)
	}
	if err := fileutil.WriteFileAtomic(f.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrState, err)
	}
	return nil
}

func (f *File) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.save(values)
}

// Compile-time interface checks.
var (
	_ KV = (*Memory)(nil)
	_ KV = (*File)(nil)
)
