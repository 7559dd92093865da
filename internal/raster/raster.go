// Package raster turns a laid-out page into a PNG bitmap of its border box.
//
// Two backends exist: Native draws the page with fogleman/gg and needs no
// browser; Chrome loads the HTML page in headless Chromium and screenshots
// the paper element.
package raster

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-qrsheet/internal/layout"
)

// Sentinel errors for rasterization.
var (
	// ErrRasterUnavailable means no image could be produced for the page.
	// Front ends may treat it as a silent no-op.
	ErrRasterUnavailable = errors.New("raster unavailable")

	// ErrPageUnavailable indicates the page container is missing.
	ErrPageUnavailable = fmt.Errorf("%w: page element not found", ErrRasterUnavailable)

	// ErrEmptyImage indicates the backend produced no image data.
	ErrEmptyImage = fmt.Errorf("%w: empty image", ErrRasterUnavailable)

	ErrInvalidBackend = errors.New("invalid render backend")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrScreenshot     = errors.New("failed to capture page")
)

// Backend names.
const (
	BackendNative = "native"
	BackendChrome = "chrome"
)

// Rasterizer renders a page to PNG bytes.
type Rasterizer interface {
	Rasterize(ctx context.Context, page layout.Page) ([]byte, error)
	Close() error
}

// ParseBackend validates a backend name. Empty selects native.
func ParseBackend(name string) (string, error) {
	switch strings.ToLower(name) {
	case "", BackendNative:
		return BackendNative, nil
	case BackendChrome:
		return BackendChrome, nil
	}
	return "", fmt.Errorf("%w: %q (must be native or chrome)", ErrInvalidBackend, name)
}
