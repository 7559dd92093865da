package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alnah/go-qrsheet/internal/paper"
)

// LabelFontSize returns the label font size in pixels for a QR side.
// Shared with the native rasterizer so both backends print the same text.
func LabelFontSize(qrSize int) float64 {
	return max(float64(qrSize)/8, 8)
}

// px formats a pixel length without rounding.
func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// buildPaperCSS generates the rules that depend on the geometry: the paper
// box, the print page size and the QR and label sizes. qrSize is the
// clamped side from Page.CellSide.
func buildPaperCSS(g paper.Geometry, qrSize int) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, `
/* Paper */
#paper {
  width: %s;
  height: %s;
  padding: %s;
}
`, px(g.Width), px(g.Height), px(g.Padding))

	fmt.Fprintf(&buf, `
/* Print: one sheet, no browser margin */
@page {
  size: %s %s;
  margin: 0;
}
`, px(g.OuterWidth()), px(g.OuterHeight()))

	if qrSize > 0 {
		fmt.Fprintf(&buf, `
/* Tags */
td.tag .qr img {
  width: %dpx;
  height: %dpx;
}
td.tag .name {
  font-size: %s;
  max-width: %dpx;
}
`, qrSize, qrSize, px(LabelFontSize(qrSize)), qrSize)
	}

	return buf.String()
}
