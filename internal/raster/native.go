package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/alnah/go-qrsheet/internal/encoder"
	"github.com/alnah/go-qrsheet/internal/layout"
)

// labelLineSpacing matches the line-height of the HTML page.
const labelLineSpacing = 1.2

var parseGoRegular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// goRegularFace returns a new Go Regular face. Faces are not safe for
// concurrent use, so each rasterization builds its own.
func goRegularFace(size float64) (font.Face, error) {
	fnt, err := parseGoRegular()
	if err != nil {
		return nil, fmt.Errorf("parsing Go Regular: %w", err)
	}
	return opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Native draws pages in pure Go. It mirrors the HTML layout: equal-width
// columns inside the padded paper, each cell holding the QR image centered
// at the top and the wrapped name under it.
type Native struct{}

// NewNative creates a Native rasterizer.
func NewNative() *Native {
	return &Native{}
}

// Rasterize draws page at 1 image pixel per CSS pixel.
func (n *Native) Rasterize(ctx context.Context, page layout.Page) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g := page.Geometry
	if !g.Valid() {
		return nil, fmt.Errorf("%w: negative page size %.1fx%.1f", ErrPageUnavailable, g.Width, g.Height)
	}
	w := int(math.Round(g.OuterWidth()))
	h := int(math.Round(g.OuterHeight()))
	if w < 1 || h < 1 {
		return nil, ErrEmptyImage
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()

	if columns := page.Columns(); columns > 0 {
		if err := n.drawGrid(ctx, dc, page, columns); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	if buf.Len() == 0 {
		return nil, ErrEmptyImage
	}
	return buf.Bytes(), nil
}

func (n *Native) drawGrid(ctx context.Context, dc *gg.Context, page layout.Page, columns int) error {
	g := page.Geometry
	cellWidth := g.Width / float64(columns)
	side := page.CellSide()
	if side < 1 {
		return fmt.Errorf("%w: cells narrower than one pixel", ErrEmptyImage)
	}

	fontSize := layout.LabelFontSize(side)
	face, err := goRegularFace(fontSize)
	if err != nil {
		return err
	}
	defer face.Close()
	dc.SetFontFace(face)
	lineHeight := dc.FontHeight() * labelLineSpacing

	// Clip to the content box like the page's overflow rule.
	dc.DrawRectangle(g.Padding, g.Padding, g.Width, g.Height)
	dc.Clip()
	defer dc.ResetClip()

	y := g.Padding
	for i, row := range page.Rows {
		rowLines := 1
		for j, cell := range row {
			if err := ctx.Err(); err != nil {
				return err
			}

			img, err := encoder.DecodeDataURI(cell.Image)
			if err != nil {
				return fmt.Errorf("cell %d/%d (%s): %w", i, j, cell.Name, err)
			}

			x := g.Padding + float64(j)*cellWidth
			left := x + (cellWidth-float64(side))/2
			dc.DrawImage(scale(img, side), int(math.Round(left)), int(math.Round(y)))

			dc.SetColor(color.Black)
			lines := dc.WordWrap(cell.Name, float64(side))
			rowLines = max(rowLines, len(lines))
			dc.DrawStringWrapped(cell.Name, x+cellWidth/2, y+float64(side), 0.5, 0, float64(side), labelLineSpacing, gg.AlignCenter)
		}
		y += float64(side) + float64(rowLines)*lineHeight
	}
	return nil
}

// scale returns img resized to side x side with nearest-neighbor sampling,
// which keeps QR modules sharp. Images already at that size are returned
// as is.
func scale(img image.Image, side int) image.Image {
	b := img.Bounds()
	if b.Dx() == side && b.Dy() == side {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Close is a no-op.
func (n *Native) Close() error {
	return nil
}

// Compile-time interface check.
var _ Rasterizer = (*Native)(nil)
