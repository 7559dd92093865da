package raster

// Notes:
// - Native is tested end to end with real QR images from the encoder.
// - Chrome is tested with a mock capturer; the real browser path runs in
//   chrome_integration_test.go behind the integration build tag.

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/alnah/go-qrsheet/internal/encoder"
	"github.com/alnah/go-qrsheet/internal/layout"
	"github.com/alnah/go-qrsheet/internal/paper"
)

func testPage(t *testing.T, ppi, blank, columns, n int) layout.Page {
	t.Helper()

	enc := encoder.New()
	cells := make([]layout.Cell, n)
	for i := range cells {
		uri, err := enc.Encode("id:"+string(rune('a'+i)), ppi)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		cells[i] = layout.Cell{Name: "item-" + string(rune('a'+i)), Image: uri}
	}
	rows, err := layout.Pack(cells, columns, layout.RemainderDrop)
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	return layout.Page{
		Geometry: paper.NewGeometry(paper.Default(), ppi, float64(blank)),
		QRSize:   ppi,
		Rows:     rows,
	}
}

func decodePNG(t *testing.T, b []byte) image.Image {
	t.Helper()

	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	return img
}

func isDark(c interface{ RGBA() (r, g, b, a uint32) }) bool {
	r, g, b, _ := c.RGBA()
	return r < 0x4000 && g < 0x4000 && b < 0x4000
}

// ---------------------------------------------------------------------------
// TestNative - Pure Go Backend
// ---------------------------------------------------------------------------

func TestNative_BorderBoxSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		ppi, blank int
	}{
		{name: "72 ppi", ppi: 72, blank: 0},
		{name: "100 ppi with border", ppi: 100, blank: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			page := testPage(t, tt.ppi, tt.blank, 2, 4)
			out, err := NewNative().Rasterize(context.Background(), page)
			if err != nil {
				t.Fatalf("Rasterize() error = %v", err)
			}

			img := decodePNG(t, out)
			wantW := int(math.Round(page.Geometry.OuterWidth()))
			wantH := int(math.Round(page.Geometry.OuterHeight()))
			if img.Bounds().Dx() != wantW || img.Bounds().Dy() != wantH {
				t.Errorf("image = %dx%d, want %dx%d", img.Bounds().Dx(), img.Bounds().Dy(), wantW, wantH)
			}
		})
	}
}

func TestNative_DrawsQRCodes(t *testing.T) {
	t.Parallel()

	page := testPage(t, 100, 10, 2, 2)
	out, err := NewNative().Rasterize(context.Background(), page)
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	img := decodePNG(t, out)

	// The padding stays white.
	if isDark(img.At(2, 2)) {
		t.Error("padding pixel should be white")
	}

	// First cell: QR centered in the left half, finder pattern at its corner.
	g := page.Geometry
	cellWidth := g.Width / 2
	left := int(math.Round(g.Padding + (cellWidth-100)/2))
	top := int(math.Round(g.Padding))
	if !isDark(img.At(left+1, top+1)) {
		t.Errorf("expected a dark finder module at (%d,%d)", left+1, top+1)
	}
}

func TestNative_EmptyPage(t *testing.T) {
	t.Parallel()

	page := layout.Page{Geometry: paper.NewGeometry(paper.Default(), 50, 0)}
	out, err := NewNative().Rasterize(context.Background(), page)
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	img := decodePNG(t, out)
	if isDark(img.At(10, 10)) {
		t.Error("empty page should be blank")
	}
}

func TestNative_Errors(t *testing.T) {
	t.Parallel()

	t.Run("negative geometry", func(t *testing.T) {
		t.Parallel()

		page := layout.Page{Geometry: paper.NewGeometry(paper.Default(), 10, 500)}
		_, err := NewNative().Rasterize(context.Background(), page)
		if !errors.Is(err, ErrPageUnavailable) || !errors.Is(err, ErrRasterUnavailable) {
			t.Errorf("error = %v, want ErrPageUnavailable wrapping ErrRasterUnavailable", err)
		}
	})

	t.Run("zero geometry", func(t *testing.T) {
		t.Parallel()

		_, err := NewNative().Rasterize(context.Background(), layout.Page{})
		if !errors.Is(err, ErrEmptyImage) || !errors.Is(err, ErrRasterUnavailable) {
			t.Errorf("error = %v, want ErrEmptyImage wrapping ErrRasterUnavailable", err)
		}
	})

	t.Run("bad image", func(t *testing.T) {
		t.Parallel()

		page := layout.Page{
			Geometry: paper.NewGeometry(paper.Default(), 50, 0),
			QRSize:   50,
			Rows:     [][]layout.Cell{{{Name: "x", Image: "not a data uri"}}},
		}
		_, err := NewNative().Rasterize(context.Background(), page)
		if !errors.Is(err, encoder.ErrInvalidDataURI) {
			t.Errorf("error = %v, want ErrInvalidDataURI", err)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewNative().Rasterize(ctx, testPage(t, 50, 0, 1, 1))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestScale(t *testing.T) {
	t.Parallel()

	src := image.NewRGBA(image.Rect(0, 0, 40, 40))
	if got := scale(src, 40); got != image.Image(src) {
		t.Error("scale() should return same-size images unchanged")
	}
	if got := scale(src, 25).Bounds(); got.Dx() != 25 || got.Dy() != 25 {
		t.Errorf("scale() bounds = %v, want 25x25", got)
	}
}

// ---------------------------------------------------------------------------
// TestChrome - Browser Backend With Mock Capturer
// ---------------------------------------------------------------------------

type mockCapturer struct {
	html          string
	width, height int
	out           []byte
	err           error
	closed        bool
}

func (m *mockCapturer) Capture(ctx context.Context, filePath string, width, height int) ([]byte, error) {
	b, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	m.html = string(b)
	m.width, m.height = width, height
	return m.out, m.err
}

func (m *mockCapturer) Close() error {
	m.closed = true
	return nil
}

func TestChrome_Rasterize(t *testing.T) {
	t.Parallel()

	mock := &mockCapturer{out: []byte("png")}
	c := &Chrome{renderer: layout.NewRenderer(nil), capturer: mock}

	page := testPage(t, 50, 5, 2, 2)
	out, err := c.Rasterize(context.Background(), page)
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	if string(out) != "png" {
		t.Errorf("Rasterize() = %q, want capturer output", out)
	}
	if !strings.Contains(mock.html, `id="paper"`) || !strings.Contains(mock.html, "item-a") {
		t.Error("capturer should receive the rendered page")
	}
	if mock.width != int(math.Ceil(page.Geometry.OuterWidth())) || mock.height != int(math.Ceil(page.Geometry.OuterHeight())) {
		t.Errorf("viewport = %dx%d, want the border box", mock.width, mock.height)
	}

	if err := c.Close(); err != nil || !mock.closed {
		t.Errorf("Close() = %v, closed = %v", err, mock.closed)
	}
}

func TestChrome_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mock    *mockCapturer
		wantErr error
	}{
		{name: "empty capture", mock: &mockCapturer{}, wantErr: ErrEmptyImage},
		{name: "missing element", mock: &mockCapturer{err: ErrPageUnavailable}, wantErr: ErrRasterUnavailable},
		{name: "browser failure", mock: &mockCapturer{err: ErrBrowserConnect}, wantErr: ErrBrowserConnect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := &Chrome{renderer: layout.NewRenderer(nil), capturer: tt.mock}
			_, err := c.Rasterize(context.Background(), testPage(t, 50, 0, 1, 1))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    string
		wantErr error
	}{
		{input: "", want: BackendNative},
		{input: "native", want: BackendNative},
		{input: "Chrome", want: BackendChrome},
		{input: "cairo", wantErr: ErrInvalidBackend},
	}
	for _, tt := range tests {
		got, err := ParseBackend(tt.input)
		if !errors.Is(err, tt.wantErr) || got != tt.want {
			t.Errorf("ParseBackend(%q) = %q, %v; want %q, %v", tt.input, got, err, tt.want, tt.wantErr)
		}
	}
}
