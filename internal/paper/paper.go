// Package paper converts physical page sizes to pixel geometry.
//
// Lengths are millimeters, resolutions are pixels per inch, and one inch is
// exactly 25.4 millimeters. Nothing here rounds: rounding happens when a
// raster backend allocates an image.
package paper

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// MillimetersPerInch is the fixed conversion constant.
const MillimetersPerInch = 25.4

// Millimeter is a physical length.
type Millimeter = float64

// PixelPerInch is a print resolution.
type PixelPerInch = int

// Resolution limits. A page is rasterized into one RGBA bitmap, so its
// pixel count is bounded as well as its resolution. A3 at MaxPPI is
// 7016x9921, about 70 megapixels.
const (
	MaxPPI    = 600
	MaxPixels = 100_000_000
)

// Validation errors.
var (
	ErrUnknownPaper      = errors.New("unknown paper size")
	ErrInvalidPPI        = errors.New("invalid resolution")
	ErrInvalidBlankWidth = errors.New("invalid blank width")
)

// Size is a named physical page size.
type Size struct {
	Name   string
	Width  Millimeter
	Height Millimeter
}

// registry lists the supported sizes. The first entry is the default.
var registry = []Size{
	{Name: "A4", Width: 210, Height: 297},
	{Name: "A3", Width: 297, Height: 420},
	{Name: "A5", Width: 148, Height: 210},
	{Name: "A6", Width: 105, Height: 148},
	{Name: "Letter", Width: 215.9, Height: 279.4},
	{Name: "Legal", Width: 215.9, Height: 355.6},
}

// Default returns the first registered size (A4).
func Default() Size {
	return registry[0]
}

// Names returns the registered size names in registry order.
func Names() []string {
	names := make([]string, len(registry))
	for i, s := range registry {
		names[i] = s.Name
	}
	return names
}

// Lookup finds a size by name (case-insensitive).
func Lookup(name string) (Size, error) {
	for _, s := range registry {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return Size{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownPaper, name, strings.Join(Names(), ", "))
}

// ToPixels converts a length to pixels at the given resolution.
func ToPixels(length Millimeter, ppi PixelPerInch) float64 {
	return length / MillimetersPerInch * float64(ppi)
}

// Geometry is the pixel box of a page: content size plus uniform padding.
// The unprintable border is subtracted from each content dimension and also
// applied as padding.
type Geometry struct {
	Width   float64
	Height  float64
	Padding float64
}

// NewGeometry derives the page geometry. Negative results are not clamped;
// check Valid before rendering.
func NewGeometry(size Size, ppi PixelPerInch, blank float64) Geometry {
	return Geometry{
		Width:   ToPixels(size.Width, ppi) - blank,
		Height:  ToPixels(size.Height, ppi) - blank,
		Padding: blank,
	}
}

// Valid reports whether both content dimensions are non-negative.
func (g Geometry) Valid() bool {
	return g.Width >= 0 && g.Height >= 0 && g.Padding >= 0
}

// OuterWidth is the border-box width (content plus padding on both sides).
func (g Geometry) OuterWidth() float64 {
	return g.Width + 2*g.Padding
}

// OuterHeight is the border-box height.
func (g Geometry) OuterHeight() float64 {
	return g.Height + 2*g.Padding
}

// Pixels is the pixel count of the border box once rounded to a bitmap.
func (g Geometry) Pixels() float64 {
	return math.Round(g.OuterWidth()) * math.Round(g.OuterHeight())
}

// Resolve validates a paper name, resolution and blank width and returns
// the matching size and geometry.
func Resolve(name string, ppi PixelPerInch, blank float64) (Size, Geometry, error) {
	size, err := Lookup(name)
	if err != nil {
		return Size{}, Geometry{}, err
	}
	if ppi < 1 || ppi > MaxPPI {
		return Size{}, Geometry{}, fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidPPI, ppi, MaxPPI)
	}
	if blank < 0 {
		return Size{}, Geometry{}, fmt.Errorf("%w: %g (must not be negative)", ErrInvalidBlankWidth, blank)
	}
	g := NewGeometry(size, ppi, blank)
	if !g.Valid() {
		return Size{}, Geometry{}, fmt.Errorf("%w: %g leaves no printable area on %s at %d ppi",
			ErrInvalidBlankWidth, blank, size.Name, ppi)
	}
	if px := g.Pixels(); px > MaxPixels {
		return Size{}, Geometry{}, fmt.Errorf("%w: %s at %d ppi is %.0f megapixels (limit %d)",
			ErrInvalidPPI, size.Name, ppi, px/1e6, MaxPixels/1_000_000)
	}
	return size, g, nil
}
