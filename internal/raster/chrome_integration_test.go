//go:build integration

package raster

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func TestChrome_Integration(t *testing.T) {
	c := NewChrome(nil, time.Minute)
	defer c.Close()

	page := testPage(t, 96, 10, 2, 4)
	out, err := c.Rasterize(context.Background(), page)
	if errors.Is(err, ErrBrowserConnect) {
		t.Skipf("no browser: %v", err)
	}
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}

	img := decodePNG(t, out)
	wantW := int(math.Round(page.Geometry.OuterWidth()))
	if d := img.Bounds().Dx() - wantW; d < -1 || d > 1 {
		t.Errorf("width = %d, want about %d", img.Bounds().Dx(), wantW)
	}
}
