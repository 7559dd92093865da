package main

import (
	"context"
	"errors"
	"os"

	"github.com/alnah/go-qrsheet"
	"github.com/alnah/go-qrsheet/internal/config"
	"github.com/alnah/go-qrsheet/internal/raster"
	"github.com/alnah/go-qrsheet/internal/state"
)

// Exit codes for the qrsheet CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser, capture or PDF errors
	ExitData    = 5 // Transform script or QR encoding rejected the data
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// User data errors (exit 5)
	if errors.Is(err, qrsheet.ErrTransform) ||
		errors.Is(err, qrsheet.ErrEncoding) {
		return ExitData
	}

	// Browser errors (exit 4)
	if errors.Is(err, qrsheet.ErrBrowserConnect) ||
		errors.Is(err, raster.ErrPageCreate) ||
		errors.Is(err, raster.ErrPageLoad) ||
		errors.Is(err, raster.ErrScreenshot) ||
		errors.Is(err, qrsheet.ErrRasterUnavailable) ||
		errors.Is(err, qrsheet.ErrPDFGeneration) ||
		errors.Is(err, context.DeadlineExceeded) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrReadSource) ||
		errors.Is(err, ErrReadScript) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, state.ErrState) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidPPI) ||
		errors.Is(err, config.ErrInvalidBlankWidth) ||
		errors.Is(err, config.ErrInvalidFormat) ||
		errors.Is(err, config.ErrInvalidTimeout) ||
		errors.Is(err, qrsheet.ErrInvalidPPI) ||
		errors.Is(err, qrsheet.ErrInvalidBlankWidth) ||
		errors.Is(err, qrsheet.ErrInvalidFormat) ||
		errors.Is(err, qrsheet.ErrUnknownPaper) ||
		errors.Is(err, qrsheet.ErrInvalidColumns) ||
		errors.Is(err, qrsheet.ErrInvalidRemainder) ||
		errors.Is(err, qrsheet.ErrInvalidLevel) ||
		errors.Is(err, qrsheet.ErrInvalidBackend) {
		return ExitUsage
	}

	return ExitGeneral
}
