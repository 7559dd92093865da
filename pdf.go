package qrsheet

import (
	"bytes"
	"fmt"
	"image/png"
	"math"

	"github.com/signintech/gopdf"

	"github.com/alnah/go-qrsheet/internal/paper"
)

// pointsPerInch is the PDF user space unit.
const pointsPerInch = 72

// wrapPDF places a rasterized sheet on one PDF page of the paper's size.
// The image keeps its physical size at ppi and is scaled down to fit when
// the blank border makes it larger than the page.
func wrapPDF(data []byte, size paper.Size, ppi int) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding sheet: %v", ErrPDFGeneration, err)
	}

	pageW := size.Width / paper.MillimetersPerInch * pointsPerInch
	pageH := size.Height / paper.MillimetersPerInch * pointsPerInch

	b := img.Bounds()
	w := float64(b.Dx()) / float64(ppi) * pointsPerInch
	h := float64(b.Dy()) / float64(ppi) * pointsPerInch
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: empty sheet image", ErrPDFGeneration)
	}
	if scale := math.Min(pageW/w, pageH/h); scale < 1 {
		w *= scale
		h *= scale
	}

	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: gopdf.Rect{W: pageW, H: pageH}})
	pdf.AddPage()

	if err := pdf.ImageFrom(img, 0, 0, &gopdf.Rect{W: w, H: h}); err != nil {
		return nil, fmt.Errorf("%w: placing image: %v", ErrPDFGeneration, err)
	}

	out, err := pdf.GetBytesPdfReturnErr()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	return out, nil
}
