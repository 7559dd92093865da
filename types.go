package qrsheet

import (
	"sync"

	"github.com/alnah/go-qrsheet/internal/blob"
	"github.com/alnah/go-qrsheet/internal/state"
)

// Output formats.
const (
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// Render backends.
const (
	BackendNative = "native"
	BackendChrome = "chrome"
)

// Remainder policies for entities that do not fill the last row.
const (
	RemainderDrop = "drop"
	RemainderKeep = "keep"
)

// Defaults for a new Sheet.
const (
	DefaultPPI     = 200
	DefaultColumns = 2
)

// ScriptKey is the state key holding the last transform script.
const ScriptKey = state.ScriptKey

// Tag is one encoded entity: its display name, the raw payload and the
// QR image as a data URI.
type Tag struct {
	Name    string `json:"name"`
	Payload string `json:"qrCode"`
	Image   string `json:"image"`
}

// BlobStore keeps rasterized sheets until released.
type BlobStore = blob.Store

// Handle addresses one stored sheet.
type Handle = blob.Handle

// StateStore persists the transform script between runs.
type StateStore = state.KV

// NewMemoryStore returns a BlobStore kept in memory. URLs are prefix + id.
func NewMemoryStore(prefix string) *blob.Memory {
	return blob.NewMemory(prefix)
}

// NewTempFileStore returns a BlobStore writing files under dir (empty for
// the system temp dir). URLs use the file scheme.
func NewTempFileStore(dir string) *blob.TempFile {
	return blob.NewTempFile(dir)
}

// NewFileState returns a StateStore backed by a YAML file.
func NewFileState(path string) *state.File {
	return state.NewFile(path)
}

// NewMemoryState returns a StateStore kept in memory.
func NewMemoryState() *state.Memory {
	return state.NewMemory()
}

// Resource is a printed sheet registered in a BlobStore. Call Release when
// the viewer is done with it.
type Resource struct {
	Handle

	once    sync.Once
	err     error
	release func() error
}

// Release revokes the underlying blob. Calling it again is a no-op.
func (r *Resource) Release() error {
	r.once.Do(func() {
		if r.release != nil {
			r.err = r.release()
		}
	})
	return r.err
}
