package qrsheet

import (
	"errors"

	"github.com/alnah/go-qrsheet/internal/blob"
	"github.com/alnah/go-qrsheet/internal/encoder"
	"github.com/alnah/go-qrsheet/internal/layout"
	"github.com/alnah/go-qrsheet/internal/paper"
	"github.com/alnah/go-qrsheet/internal/raster"
	"github.com/alnah/go-qrsheet/internal/transform"
)

// Sentinel errors for library operations.
var (
	ErrSheetClosed   = errors.New("sheet is closed")
	ErrPDFGeneration = errors.New("PDF generation failed")

	// Settings validation errors.
	ErrInvalidPPI        = paper.ErrInvalidPPI
	ErrInvalidBlankWidth = paper.ErrInvalidBlankWidth
	ErrInvalidFormat     = errors.New("invalid output format")
	ErrUnknownPaper      = paper.ErrUnknownPaper
	ErrInvalidColumns    = layout.ErrInvalidColumns
	ErrInvalidRemainder  = layout.ErrInvalidRemainder
	ErrInvalidLevel      = encoder.ErrInvalidLevel
	ErrInvalidBackend    = raster.ErrInvalidBackend

	// Pipeline errors.
	ErrTransform = transform.ErrTransform
	ErrEncoding  = encoder.ErrEncoding

	// ErrRasterUnavailable is the parent of ErrPageUnavailable and
	// ErrEmptyImage.
	ErrRasterUnavailable = raster.ErrRasterUnavailable
	ErrPageUnavailable   = raster.ErrPageUnavailable
	ErrEmptyImage        = raster.ErrEmptyImage
	ErrBrowserConnect    = raster.ErrBrowserConnect

	// Blob errors.
	ErrBlobNotFound = blob.ErrNotFound
)
