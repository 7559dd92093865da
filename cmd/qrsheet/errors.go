package main

import (
	"context"
	"errors"

	"github.com/alnah/go-qrsheet"
	"github.com/alnah/go-qrsheet/internal/hints"
	"github.com/alnah/go-qrsheet/internal/paper"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage       = errors.New("invalid usage")
	ErrNoInput     = errors.New("no data source specified")
	ErrReadSource  = errors.New("failed to read data source")
	ErrReadScript  = errors.New("failed to read transform script")
	ErrWriteOutput = errors.New("failed to write output file")
	ErrBatchFailed = errors.New("batch failed")
)

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, qrsheet.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, qrsheet.ErrUnknownPaper):
		return hints.ForPaperNotFound(paper.Names())
	case errors.Is(err, qrsheet.ErrTransform):
		return hints.ForTransform()
	case errors.Is(err, qrsheet.ErrRasterUnavailable):
		return hints.ForRasterUnavailable()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}
