// Package blob holds rendered sheet images behind short-lived handles.
//
// A Handle stays valid until it is revoked or the store is closed. Stores
// are safe for concurrent use.
package blob

import (
	"errors"
	"mime"
	"strings"

	"github.com/google/uuid"
)

// Sentinel errors for blob stores.
var (
	ErrNotFound = errors.New("blob not found")
	ErrClosed   = errors.New("blob store closed")
	ErrEmpty    = errors.New("blob is empty")
)

// Content types produced by the sheet.
const (
	ContentTypePNG = "image/png"
	ContentTypePDF = "application/pdf"
)

// Handle addresses one stored blob.
type Handle struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
}

// Store keeps blobs until they are revoked.
type Store interface {
	// Put stores data and returns its handle.
	Put(data []byte, contentType string) (Handle, error)
	// Get returns the bytes and content type for id.
	Get(id string) ([]byte, string, error)
	// Revoke releases id. Revoking an unknown id returns ErrNotFound.
	Revoke(id string) error
	// Close revokes everything.
	Close() error
}

func newID() string {
	return uuid.NewString()
}

// extension returns the file extension for a content type, without the dot.
func extension(contentType string) string {
	switch contentType {
	case ContentTypePNG:
		return "png"
	case ContentTypePDF:
		return "pdf"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return strings.TrimPrefix(exts[0], ".")
	}
	return "bin"
}
