package main

// Notes:
// - exitCodeFor: we test the sentinel errors from the qrsheet, config, raster
//   and state packages, plus wrapped errors to verify the errors.Is() chain.
// - Exit code constants: we verify Unix conventions (0=success, 1=general, 2=usage)
//   and custom codes are below 126.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/alnah/go-qrsheet"
	"github.com/alnah/go-qrsheet/internal/config"
	"github.com/alnah/go-qrsheet/internal/raster"
	"github.com/alnah/go-qrsheet/internal/state"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		// Success
		{"nil error", nil, ExitSuccess},

		// User data errors (exit 5)
		{"transform", qrsheet.ErrTransform, ExitData},
		{"encoding", qrsheet.ErrEncoding, ExitData},
		{"wrapped transform", fmt.Errorf("preview: %w", qrsheet.ErrTransform), ExitData},
		{"batch wrapping transform", fmt.Errorf("%w: 1 of 2 sheets: %w", ErrBatchFailed, qrsheet.ErrTransform), ExitData},

		// Browser errors (exit 4)
		{"browser connect", qrsheet.ErrBrowserConnect, ExitBrowser},
		{"page create", raster.ErrPageCreate, ExitBrowser},
		{"page load", raster.ErrPageLoad, ExitBrowser},
		{"screenshot", raster.ErrScreenshot, ExitBrowser},
		{"raster unavailable", qrsheet.ErrRasterUnavailable, ExitBrowser},
		{"page unavailable", qrsheet.ErrPageUnavailable, ExitBrowser},
		{"empty image", qrsheet.ErrEmptyImage, ExitBrowser},
		{"pdf generation", qrsheet.ErrPDFGeneration, ExitBrowser},
		{"deadline", context.DeadlineExceeded, ExitBrowser},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"no input", ErrNoInput, ExitIO},
		{"read source", ErrReadSource, ExitIO},
		{"read script", ErrReadScript, ExitIO},
		{"write output", ErrWriteOutput, ExitIO},
		{"state", state.ErrState, ExitIO},
		{"wrapped file not exist", fmt.Errorf("reading: %w", os.ErrNotExist), ExitIO},

		// Usage/config/validation errors (exit 2)
		{"usage", ErrUsage, ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"empty config name", config.ErrEmptyConfigName, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"config ppi", config.ErrInvalidPPI, ExitUsage},
		{"config blank width", config.ErrInvalidBlankWidth, ExitUsage},
		{"config format", config.ErrInvalidFormat, ExitUsage},
		{"config timeout", config.ErrInvalidTimeout, ExitUsage},
		{"sheet ppi", qrsheet.ErrInvalidPPI, ExitUsage},
		{"sheet blank width", qrsheet.ErrInvalidBlankWidth, ExitUsage},
		{"sheet format", qrsheet.ErrInvalidFormat, ExitUsage},
		{"unknown paper", qrsheet.ErrUnknownPaper, ExitUsage},
		{"invalid columns", qrsheet.ErrInvalidColumns, ExitUsage},
		{"invalid remainder", qrsheet.ErrInvalidRemainder, ExitUsage},
		{"invalid level", qrsheet.ErrInvalidLevel, ExitUsage},
		{"invalid backend", qrsheet.ErrInvalidBackend, ExitUsage},
		{"wrapped config parse", fmt.Errorf("loading: %w", config.ErrConfigParse), ExitUsage},

		// General errors (exit 1)
		{"unknown error", errors.New("something went wrong"), ExitGeneral},
		{"sheet closed", qrsheet.ErrSheetClosed, ExitGeneral},
		{"batch without cause", ErrBatchFailed, ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := exitCodeFor(tt.err)
			if got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExitCodeConstants - Unix conventions
// ---------------------------------------------------------------------------

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess = %d, want 0", ExitSuccess)
	}
	if ExitGeneral != 1 {
		t.Errorf("ExitGeneral = %d, want 1", ExitGeneral)
	}
	if ExitUsage != 2 {
		t.Errorf("ExitUsage = %d, want 2", ExitUsage)
	}

	codes := map[string]int{"ExitIO": ExitIO, "ExitBrowser": ExitBrowser, "ExitData": ExitData}
	seen := map[int]string{ExitSuccess: "ExitSuccess", ExitGeneral: "ExitGeneral", ExitUsage: "ExitUsage"}
	for name, code := range codes {
		if code >= 126 {
			t.Errorf("%s = %d, must be below 126", name, code)
		}
		if other, ok := seen[code]; ok {
			t.Errorf("%s and %s share code %d", name, other, code)
		}
		seen[code] = name
	}
}

// ---------------------------------------------------------------------------
// TestHintFor - Actionable hints
// ---------------------------------------------------------------------------

func TestHintFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"browser connect", qrsheet.ErrBrowserConnect, "--backend native"},
		{"timeout", fmt.Errorf("render: %w", context.DeadlineExceeded), "--timeout"},
		{"unknown paper", qrsheet.ErrUnknownPaper, "Letter"},
		{"transform", qrsheet.ErrTransform, "dataSourceString"},
		{"raster unavailable", qrsheet.ErrPageUnavailable, "--blank"},
		{"write output", ErrWriteOutput, "writable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := hintFor(tt.err)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("hintFor(%v) = %q, want it to contain %q", tt.err, got, tt.contains)
			}
		})
	}

	t.Run("no hint", func(t *testing.T) {
		t.Parallel()
		if got := hintFor(errors.New("other")); got != "" {
			t.Errorf("hintFor(other) = %q, want empty", got)
		}
	})
}
