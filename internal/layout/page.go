package layout

import (
	"fmt"
	"html/template"
	"io"
	"sync"

	"github.com/alnah/go-qrsheet/internal/assets"
	"github.com/alnah/go-qrsheet/internal/paper"
)

// DefaultTitle is used when a Page has no title.
const DefaultTitle = "QR sheet"

// Cell is one rendered label: the display name and its QR image URI.
type Cell struct {
	Name  string
	Image string
}

// Page is everything needed to draw one sheet.
type Page struct {
	Title    string
	Geometry paper.Geometry
	QRSize   int
	Rows     [][]Cell
}

// Count returns the number of cells on the page.
func (p Page) Count() int {
	n := 0
	for _, row := range p.Rows {
		n += len(row)
	}
	return n
}

// Columns returns the length of the widest row.
func (p Page) Columns() int {
	n := 0
	for _, row := range p.Rows {
		n = max(n, len(row))
	}
	return n
}

// CellSide returns the QR side both backends draw: QRSize, clamped to the
// cell width. It is 0 for an empty page.
func (p Page) CellSide() int {
	columns := p.Columns()
	if columns == 0 {
		return 0
	}
	cellWidth := p.Geometry.Width / float64(columns)
	if p.QRSize < 1 || float64(p.QRSize) > cellWidth {
		return int(cellWidth)
	}
	return p.QRSize
}

// pageView is the template data for page.html.
type pageView struct {
	Title      string
	Style      template.CSS
	PaperStyle template.CSS
	Rows       [][]cellView
}

type cellView struct {
	Name  string
	Image template.URL
}

// Renderer turns a Page into an HTML document.
type Renderer struct {
	loader assets.AssetLoader

	once  sync.Once
	tmpl  *template.Template
	style string
	err   error
}

// NewRenderer creates a Renderer reading templates and styles from loader.
// A nil loader selects the embedded assets.
func NewRenderer(loader assets.AssetLoader) *Renderer {
	if loader == nil {
		loader = assets.NewEmbeddedLoader()
	}
	return &Renderer{loader: loader}
}

// init parses the page template and loads the base style once.
func (r *Renderer) init() {
	src, err := r.loader.LoadTemplate(assets.PageTemplateName)
	if err != nil {
		r.err = fmt.Errorf("%w: %v", ErrTemplate, err)
		return
	}
	tmpl, err := template.New(assets.PageTemplateName).Parse(src)
	if err != nil {
		r.err = fmt.Errorf("%w: parsing: %v", ErrTemplate, err)
		return
	}
	style, err := r.loader.LoadStyle(assets.DefaultStyleName)
	if err != nil {
		r.err = fmt.Errorf("%w: %v", ErrTemplate, err)
		return
	}
	r.tmpl = tmpl
	r.style = style
}

// Render writes page as an HTML document to w. Image URIs are emitted as
// trusted URLs; names are escaped.
func (r *Renderer) Render(w io.Writer, page Page) error {
	r.once.Do(r.init)
	if r.err != nil {
		return r.err
	}

	// #nosec G203 -- the style is a loaded asset and the paper CSS holds numbers only
	view := pageView{
		Title:      page.Title,
		Style:      template.CSS(r.style),
		PaperStyle: template.CSS(buildPaperCSS(page.Geometry, page.CellSide())),
		Rows:       make([][]cellView, len(page.Rows)),
	}
	if view.Title == "" {
		view.Title = DefaultTitle
	}
	for i, row := range page.Rows {
		cells := make([]cellView, len(row))
		for j, c := range row {
			// Encoder output is a data: URI, which html/template would
			// otherwise replace with #ZgotmplZ.
			cells[j] = cellView{Name: c.Name, Image: template.URL(c.Image)} // #nosec G203 -- encoder output
		}
		view.Rows[i] = cells
	}

	if err := r.tmpl.Execute(w, view); err != nil {
		return fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	return nil
}
