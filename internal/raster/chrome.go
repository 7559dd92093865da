package raster

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-qrsheet/internal/fileutil"
	"github.com/alnah/go-qrsheet/internal/layout"
	"github.com/alnah/go-qrsheet/internal/process"
)

// PaperSelector locates the page container in the rendered HTML.
const PaperSelector = "#paper"

// DefaultTimeout bounds one page load and capture.
const DefaultTimeout = 30 * time.Second

// capturer screenshots an element of a local HTML file. It isolates the
// browser so Chrome can be tested without one.
type capturer interface {
	Capture(ctx context.Context, filePath string, width, height int) ([]byte, error)
	Close() error
}

// Chrome rasterizes pages with headless Chromium through go-rod.
type Chrome struct {
	renderer *layout.Renderer
	capturer capturer
}

// NewChrome creates a Chrome rasterizer. The browser starts on first use.
func NewChrome(renderer *layout.Renderer, timeout time.Duration) *Chrome {
	if renderer == nil {
		renderer = layout.NewRenderer(nil)
	}
	return &Chrome{renderer: renderer, capturer: newRodCapturer(timeout)}
}

// Rasterize renders page to HTML, loads it with a viewport of the paper's
// border box and screenshots the paper element.
func (c *Chrome) Rasterize(ctx context.Context, page layout.Page) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g := page.Geometry
	if !g.Valid() {
		return nil, fmt.Errorf("%w: negative page size %.1fx%.1f", ErrPageUnavailable, g.Width, g.Height)
	}

	var buf bytes.Buffer
	if err := c.renderer.Render(&buf, page); err != nil {
		return nil, err
	}

	path, cleanup, err := fileutil.WriteTempFile(buf.Bytes(), "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	width := int(math.Ceil(g.OuterWidth()))
	height := int(math.Ceil(g.OuterHeight()))
	png, err := c.capturer.Capture(ctx, path, width, height)
	if err != nil {
		return nil, err
	}
	if len(png) == 0 {
		return nil, ErrEmptyImage
	}
	return png, nil
}

// Close stops the browser.
func (c *Chrome) Close() error {
	if c.capturer != nil {
		return c.capturer.Close()
	}
	return nil
}

// Compile-time interface check.
var _ Rasterizer = (*Chrome)(nil)

// rodCapturer drives a lazily launched Chromium.
type rodCapturer struct {
	timeout time.Duration

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func newRodCapturer(timeout time.Duration) *rodCapturer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &rodCapturer{timeout: timeout}
}

// NewLauncher configures a launcher from the environment: ROD_BROWSER_BIN
// selects a preinstalled browser; CI, ROD_NO_SANDBOX or a custom binary
// disable the sandbox, as containers require.
func NewLauncher() *launcher.Launcher {
	l := launcher.New()

	bin := os.Getenv("ROD_BROWSER_BIN")
	if bin != "" {
		l = l.Bin(bin)
	}
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") != "" || bin != "" {
		l = l.NoSandbox(true)
	}
	return l
}

// ensureBrowser connects on first use. Callers hold mu.
func (r *rodCapturer) ensureBrowser() (*rod.Browser, error) {
	if r.browser != nil {
		return r.browser, nil
	}

	l := NewLauncher()
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.launcher = l
	r.browser = browser
	return browser, nil
}

// Capture opens filePath and screenshots the paper element.
func (r *rodCapturer) Capture(ctx context.Context, filePath string, width, height int) ([]byte, error) {
	r.mu.Lock()
	browser, err := r.ensureBrowser()
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()
	page = page.Timeout(timeout)

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("%w: viewport: %v", ErrPageLoad, err)
	}

	if err := page.Navigate(fileURL(filePath)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	has, el, err := page.Has(PaperSelector)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if !has {
		return nil, ErrPageUnavailable
	}

	png, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScreenshot, err)
	}
	return png, nil
}

// Close kills the browser and its helper processes.
func (r *rodCapturer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		return nil
	}

	err := r.browser.Close()
	if pid := r.launcher.PID(); pid > 0 {
		process.KillProcessGroup(pid)
	}
	r.launcher.Kill()
	r.launcher.Cleanup()

	r.browser = nil
	r.launcher = nil
	return err
}

func fileURL(path string) string {
	return "file://" + path
}
