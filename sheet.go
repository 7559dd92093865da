package qrsheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-qrsheet/internal/assets"
	"github.com/alnah/go-qrsheet/internal/blob"
	"github.com/alnah/go-qrsheet/internal/encoder"
	"github.com/alnah/go-qrsheet/internal/layout"
	"github.com/alnah/go-qrsheet/internal/paper"
	"github.com/alnah/go-qrsheet/internal/raster"
	"github.com/alnah/go-qrsheet/internal/state"
	"github.com/alnah/go-qrsheet/internal/transform"
)

// MaxPPI is the highest accepted resolution. Pages are also limited to
// paper.MaxPixels pixels.
const MaxPPI = paper.MaxPPI

// entityTransformer runs the user script.
type entityTransformer interface {
	Transform(ctx context.Context, source, script string) ([]transform.Entity, error)
}

// batchEncoder turns payloads into image URIs in input order.
type batchEncoder interface {
	EncodeAll(ctx context.Context, payloads []string, size int) ([]string, error)
}

// Compile-time interface implementation checks.
var (
	_ entityTransformer = (*transform.Transformer)(nil)
	_ batchEncoder      = (*encoder.Encoder)(nil)
	_ raster.Rasterizer = (*raster.Native)(nil)
	_ raster.Rasterizer = (*raster.Chrome)(nil)
	_ BlobStore         = (*blob.Memory)(nil)
	_ BlobStore         = (*blob.TempFile)(nil)
	_ StateStore        = (*state.File)(nil)
)

// Sheet turns a data source and a transform script into a printable page of
// labeled QR codes. Create with NewSheet, call Preview to build the tags,
// Print to rasterize them, and Close when done.
//
// Preview and Print are serialized: a call waits until the previous one
// has returned. Tags, Rows and RenderHTML read the last successful Preview
// and may run concurrently with anything.
type Sheet struct {
	cfg      sheetConfig
	log      logrus.FieldLogger
	size     paper.Size
	geometry paper.Geometry
	policy   layout.Remainder

	transformer entityTransformer
	encoder     batchEncoder
	renderer    *layout.Renderer
	rasterizer  raster.Rasterizer
	store       BlobStore
	state       StateStore

	action sync.Mutex

	mu     sync.RWMutex
	tags   []Tag
	closed bool
}

// NewSheet creates a Sheet. Settings default to A4 at 200 ppi, two columns,
// no blank border, the drop remainder policy, medium recovery, the native
// backend and PNG output. Returns a wrapped sentinel error for any invalid
// setting.
func NewSheet(opts ...Option) (*Sheet, error) {
	s := &Sheet{
		cfg: sheetConfig{
			paper:            paper.Default().Name,
			ppi:              DefaultPPI,
			columns:          DefaultColumns,
			remainder:        RemainderDrop,
			level:            encoder.LevelMedium,
			backend:          BackendNative,
			format:           FormatPNG,
			renderTimeout:    defaultRenderTimeout,
			transformTimeout: defaultTransformTimeout,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.validate(); err != nil {
		return nil, err
	}

	if s.log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		s.log = discard
	}

	var loader assets.AssetLoader
	if s.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(s.cfg.assetPath)
		if err != nil {
			return nil, err
		}
		loader = resolver
	}
	s.renderer = layout.NewRenderer(loader)

	// Components injected by tests are kept.
	if s.transformer == nil {
		s.transformer = transform.New(transform.WithTimeout(s.cfg.transformTimeout))
	}
	if s.encoder == nil {
		level, _ := encoder.ParseLevel(s.cfg.level) // validated above
		s.encoder = encoder.New(encoder.WithLevel(level), encoder.WithConcurrency(s.cfg.concurrency))
	}
	if s.rasterizer == nil {
		switch s.cfg.backend {
		case BackendChrome:
			s.rasterizer = raster.NewChrome(s.renderer, s.cfg.renderTimeout)
		default:
			s.rasterizer = raster.NewNative()
		}
	}
	if s.store == nil {
		s.store = blob.NewTempFile("")
	}
	if s.state == nil {
		s.state = state.NewMemory()
	}

	return s, nil
}

// validate checks the settings and resolves the paper and geometry.
// This is the trust boundary for library users; the CLI validates its
// config file earlier with the same rules.
func (s *Sheet) validate() error {
	size, geometry, err := paper.Resolve(s.cfg.paper, s.cfg.ppi, s.cfg.blankWidth)
	if err != nil {
		return err
	}
	if err := layout.ValidateColumns(s.cfg.columns); err != nil {
		return err
	}
	policy, err := layout.ParseRemainder(s.cfg.remainder)
	if err != nil {
		return err
	}
	if _, err := encoder.ParseLevel(s.cfg.level); err != nil {
		return err
	}
	backend, err := raster.ParseBackend(s.cfg.backend)
	if err != nil {
		return err
	}
	switch strings.ToLower(s.cfg.format) {
	case FormatPNG, FormatPDF:
		s.cfg.format = strings.ToLower(s.cfg.format)
	default:
		return fmt.Errorf("%w: %q (must be png or pdf)", ErrInvalidFormat, s.cfg.format)
	}

	s.size = size
	s.geometry = geometry
	s.policy = policy
	s.cfg.backend = backend
	return nil
}

// Preview persists script, runs it against source, encodes every payload
// and replaces the current tags. On any failure the current tags are left
// untouched and the error wraps ErrTransform or ErrEncoding. A failure to
// persist the script is logged and does not fail the Preview.
func (s *Sheet) Preview(ctx context.Context, source, script string) (tags []Tag, err error) {
	s.action.Lock()
	defer s.action.Unlock()

	defer func() {
		if r := recover(); r != nil {
			tags = nil
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if s.isClosed() {
		return nil, ErrSheetClosed
	}

	start := time.Now()

	if err := s.state.Set(ScriptKey, script); err != nil {
		s.log.WithError(err).Warn("saving transform script")
	}

	entities, err := s.transformer.Transform(ctx, source, script)
	if err != nil {
		return nil, err
	}

	payloads := make([]string, len(entities))
	for i, e := range entities {
		payloads[i] = e.Payload
	}

	images, err := s.encoder.EncodeAll(ctx, payloads, s.cfg.ppi)
	if err != nil {
		return nil, err
	}
	if len(images) != len(entities) {
		return nil, fmt.Errorf("%w: got %d images for %d entities", ErrEncoding, len(images), len(entities))
	}

	tags = make([]Tag, len(entities))
	for i, e := range entities {
		tags[i] = Tag{Name: e.Name, Payload: e.Payload, Image: images[i]}
	}

	s.mu.Lock()
	s.tags = tags
	s.mu.Unlock()

	fields := logrus.Fields{
		"entities": len(tags),
		"duration": time.Since(start).Round(time.Millisecond),
	}
	if dropped := layout.Dropped(len(tags), s.cfg.columns, s.policy); dropped > 0 {
		s.log.WithFields(fields).WithField("dropped", dropped).Warn("entities past the last full row are not rendered")
	} else {
		s.log.WithFields(fields).Debug("preview")
	}

	return copyTags(tags), nil
}

// Tags returns the tags of the last successful Preview.
func (s *Sheet) Tags() []Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyTags(s.tags)
}

// Rows returns the current tags packed into the grid, as rendered.
func (s *Sheet) Rows() [][]Tag {
	rows, err := layout.Pack(s.Tags(), s.cfg.columns, s.policy)
	if err != nil {
		// Columns and policy are validated by NewSheet.
		panic(err)
	}
	return rows
}

// Dropped returns how many current tags are not rendered.
func (s *Sheet) Dropped() int {
	return layout.Dropped(len(s.Tags()), s.cfg.columns, s.policy)
}

// Paper returns the paper size in use.
func (s *Sheet) Paper() string {
	return s.size.Name
}

// SavedScript returns the persisted transform script.
func (s *Sheet) SavedScript() (string, bool, error) {
	return s.state.Get(ScriptKey)
}

// RenderHTML writes the current page as an HTML document.
func (s *Sheet) RenderHTML(ctx context.Context, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.renderer.Render(w, s.page())
}

// Export rasterizes the current page and returns it in format (FormatPNG or
// FormatPDF) with its content type. An empty format selects the configured
// one.
func (s *Sheet) Export(ctx context.Context, format string) (data []byte, contentType string, err error) {
	defer func() {
		if r := recover(); r != nil {
			data, contentType = nil, ""
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if s.isClosed() {
		return nil, "", ErrSheetClosed
	}
	return s.export(ctx, format)
}

func (s *Sheet) export(ctx context.Context, format string) ([]byte, string, error) {
	if format == "" {
		format = s.cfg.format
	}
	format = strings.ToLower(format)
	if format != FormatPNG && format != FormatPDF {
		return nil, "", fmt.Errorf("%w: %q (must be png or pdf)", ErrInvalidFormat, format)
	}

	start := time.Now()
	png, err := s.rasterizer.Rasterize(ctx, s.page())
	if err != nil {
		return nil, "", err
	}
	s.log.WithFields(logrus.Fields{
		"backend":  s.cfg.backend,
		"bytes":    len(png),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("rasterized")

	if format == FormatPNG {
		return png, blob.ContentTypePNG, nil
	}

	pdf, err := wrapPDF(png, s.size, s.cfg.ppi)
	if err != nil {
		return nil, "", err
	}
	return pdf, blob.ContentTypePDF, nil
}

// Print rasterizes the current page in the configured format and registers
// it in the blob store. The caller opens Resource.URL and calls Release
// when the viewer is closed. Errors wrapping ErrRasterUnavailable mean
// there was nothing to capture.
func (s *Sheet) Print(ctx context.Context) (res *Resource, err error) {
	s.action.Lock()
	defer s.action.Unlock()

	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if s.isClosed() {
		return nil, ErrSheetClosed
	}

	data, contentType, err := s.export(ctx, "")
	if err != nil {
		return nil, err
	}

	handle, err := s.store.Put(data, contentType)
	if err != nil {
		if errors.Is(err, blob.ErrEmpty) {
			return nil, fmt.Errorf("%w: %v", ErrEmptyImage, err)
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"id": handle.ID, "contentType": contentType}).Info("sheet ready")

	store := s.store
	return &Resource{
		Handle:  handle,
		release: func() error { return store.Revoke(handle.ID) },
	}, nil
}

// Close stops the rasterizer and revokes every stored sheet.
// Returns an aggregated error if several components fail to close.
func (s *Sheet) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	var errs []error
	if s.rasterizer != nil {
		if err := s.rasterizer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Sheet) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// page builds the layout for the current tags.
func (s *Sheet) page() layout.Page {
	rows := s.Rows()
	cells := make([][]layout.Cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]layout.Cell, len(row))
		for j, tag := range row {
			cells[i][j] = layout.Cell{Name: tag.Name, Image: tag.Image}
		}
	}
	return layout.Page{
		Title:    s.cfg.title,
		Geometry: s.geometry,
		QRSize:   s.cfg.ppi,
		Rows:     cells,
	}
}

func copyTags(tags []Tag) []Tag {
	if tags == nil {
		return nil
	}
	out := make([]Tag, len(tags))
	copy(out, tags)
	return out
}
