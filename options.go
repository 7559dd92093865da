package qrsheet

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Option configures a Sheet.
type Option func(*Sheet)

// sheetConfig holds the settings validated by NewSheet.
type sheetConfig struct {
	title            string
	paper            string
	ppi              int
	columns          int
	blankWidth       float64
	remainder        string
	level            string
	backend          string
	format           string
	concurrency      int
	renderTimeout    time.Duration
	transformTimeout time.Duration
	assetPath        string
}

const (
	defaultRenderTimeout    = 30 * time.Second
	defaultTransformTimeout = 5 * time.Second
)

// WithTitle sets the HTML page title.
func WithTitle(title string) Option {
	return func(s *Sheet) {
		s.cfg.title = title
	}
}

// WithPaper selects a paper size by name (case-insensitive), e.g. "A4".
func WithPaper(name string) Option {
	return func(s *Sheet) {
		s.cfg.paper = name
	}
}

// WithPPI sets the print resolution. It also sets the QR image side in
// pixels.
func WithPPI(ppi int) Option {
	return func(s *Sheet) {
		s.cfg.ppi = ppi
	}
}

// WithColumns sets the number of labels per row.
func WithColumns(n int) Option {
	return func(s *Sheet) {
		s.cfg.columns = n
	}
}

// WithBlankWidth sets the unprintable border in pixels.
func WithBlankWidth(px float64) Option {
	return func(s *Sheet) {
		s.cfg.blankWidth = px
	}
}

// WithRemainder sets what happens to entities past the last full row:
// RemainderDrop or RemainderKeep.
func WithRemainder(policy string) Option {
	return func(s *Sheet) {
		s.cfg.remainder = policy
	}
}

// WithLevel sets the QR recovery level: low, medium, high or highest.
func WithLevel(level string) Option {
	return func(s *Sheet) {
		s.cfg.level = level
	}
}

// WithConcurrency caps the number of QR codes encoded at once.
// Zero means no cap.
func WithConcurrency(n int) Option {
	return func(s *Sheet) {
		s.cfg.concurrency = n
	}
}

// WithBackend selects the rasterizer: BackendNative or BackendChrome.
func WithBackend(name string) Option {
	return func(s *Sheet) {
		s.cfg.backend = name
	}
}

// WithFormat selects the Print output: FormatPNG or FormatPDF.
func WithFormat(format string) Option {
	return func(s *Sheet) {
		s.cfg.format = format
	}
}

// WithRenderTimeout bounds a Chrome capture.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithRenderTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("qrsheet: WithRenderTimeout duration must be positive")
	}
	return func(s *Sheet) {
		s.cfg.renderTimeout = d
	}
}

// WithTransformTimeout bounds one script run.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTransformTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("qrsheet: WithTransformTimeout duration must be positive")
	}
	return func(s *Sheet) {
		s.cfg.transformTimeout = d
	}
}

// WithAssetPath overrides embedded styles and templates with files under
// path. Missing files fall back to the embedded ones.
func WithAssetPath(path string) Option {
	return func(s *Sheet) {
		s.cfg.assetPath = path
	}
}

// WithBlobStore sets where printed sheets are stored. The Sheet closes
// the store on Close.
func WithBlobStore(store BlobStore) Option {
	return func(s *Sheet) {
		s.store = store
	}
}

// WithStateStore sets where the transform script is persisted.
func WithStateStore(kv StateStore) Option {
	return func(s *Sheet) {
		s.state = kv
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Sheet) {
		s.log = log
	}
}
