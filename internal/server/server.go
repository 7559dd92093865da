// Package server serves the local web editor: a page with the data source
// and transform script, a live preview of the sheet and a Print action that
// opens the rasterized sheet in a new window.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/alnah/go-qrsheet"
	"github.com/alnah/go-qrsheet/internal/assets"
	"github.com/alnah/go-qrsheet/internal/blob"
	"github.com/alnah/go-qrsheet/internal/docs"
)

// BlobPrefix is the route prefix for stored sheets. Memory stores given to
// the server must use it as their URL prefix.
const BlobPrefix = "/blob/"

// Shutdown and header timeouts.
const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Sheet is the part of qrsheet.Sheet the editor drives.
type Sheet interface {
	Preview(ctx context.Context, source, script string) ([]qrsheet.Tag, error)
	Print(ctx context.Context) (*qrsheet.Resource, error)
	RenderHTML(ctx context.Context, w io.Writer) error
	SavedScript() (string, bool, error)
	Dropped() int
}

var _ Sheet = (*qrsheet.Sheet)(nil)

// Server is the web editor.
type Server struct {
	sheet  Sheet
	store  qrsheet.BlobStore
	log    logrus.FieldLogger
	loader assets.AssetLoader
	title  string
	script string

	editor *template.Template
	help   template.HTML
	engine *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithAssets sets where the editor template and help are loaded from.
func WithAssets(loader assets.AssetLoader) Option {
	return func(s *Server) {
		s.loader = loader
	}
}

// WithTitle sets the editor page title.
func WithTitle(title string) Option {
	return func(s *Server) {
		s.title = title
	}
}

// WithDefaultScript pre-fills the script editor when nothing was saved.
func WithDefaultScript(script string) Option {
	return func(s *Server) {
		s.script = script
	}
}

// previewRequest is the POST /api/preview body.
type previewRequest struct {
	Source string `json:"source"`
	Script string `json:"script"`
}

// previewResponse reports what the preview rendered.
type previewResponse struct {
	Entities int `json:"entities"`
	Dropped  int `json:"dropped"`
}

// errorResponse carries a message the editor shows with alert().
type errorResponse struct {
	Error string `json:"error"`
}

// New builds the editor for sheet. Printed sheets are served from store,
// which must be the store the sheet writes to.
func New(ctx context.Context, sheet Sheet, store qrsheet.BlobStore, opts ...Option) (*Server, error) {
	s := &Server{
		sheet: sheet,
		store: store,
		title: "QR sheet editor",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		s.log = discard
	}
	if s.loader == nil {
		s.loader = assets.NewEmbeddedLoader()
	}

	source, err := s.loader.LoadTemplate(assets.EditorTemplateName)
	if err != nil {
		return nil, fmt.Errorf("loading editor template: %w", err)
	}
	s.editor, err = template.New(assets.EditorTemplateName).Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parsing editor template: %w", err)
	}

	helpSource, err := s.loader.LoadDocument(assets.EditorHelpDocument)
	if err != nil {
		return nil, fmt.Errorf("loading editor help: %w", err)
	}
	help, err := docs.NewRenderer().Render(ctx, helpSource)
	if err != nil {
		return nil, err
	}
	s.help = template.HTML(help) // #nosec G203 -- goldmark output, raw HTML omitted

	s.engine = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())

	r.GET("/", s.handleEditor)
	r.GET("/page", s.handlePage)
	r.GET("/healthz", s.handleHealth)
	r.POST("/api/preview", s.handlePreview)
	r.POST("/api/print", s.handlePrint)
	r.GET(BlobPrefix+":id", s.handleBlobGet)
	r.DELETE(BlobPrefix+":id", s.handleBlobDelete)

	return r
}

// logRequests logs one line per request.
func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := s.log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"route":    c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).Round(time.Microsecond),
		})
		if len(c.Errors) > 0 {
			entry.WithError(c.Errors.Last()).Warn("request failed")
			return
		}
		entry.Debug("request")
	}
}

func (s *Server) handleEditor(c *gin.Context) {
	script := s.script
	saved, ok, err := s.sheet.SavedScript()
	switch {
	case err != nil:
		s.log.WithError(err).Warn("reading saved script")
	case ok:
		script = saved
	}

	var buf bytes.Buffer
	err = s.editor.Execute(&buf, struct {
		Title  string
		Script string
		Help   template.HTML
	}{Title: s.title, Script: script, Help: s.help})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) handlePage(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.sheet.RenderHTML(c.Request.Context(), &buf); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handlePreview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	tags, err := s.sheet.Preview(c.Request.Context(), req.Source, req.Script)
	if err != nil {
		_ = c.Error(err)
		status := http.StatusInternalServerError
		if errors.Is(err, qrsheet.ErrTransform) || errors.Is(err, qrsheet.ErrEncoding) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, errorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, previewResponse{Entities: len(tags), Dropped: s.sheet.Dropped()})
}

// handlePrint answers 204 when there is nothing to capture; the editor
// then does nothing.
func (s *Server) handlePrint(c *gin.Context) {
	res, err := s.sheet.Print(c.Request.Context())
	if err != nil {
		if errors.Is(err, qrsheet.ErrRasterUnavailable) {
			s.log.WithError(err).Info("print skipped")
			c.Status(http.StatusNoContent)
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, res.Handle)
}

func (s *Server) handleBlobGet(c *gin.Context) {
	data, contentType, err := s.store.Get(c.Param("id"))
	if err != nil {
		s.blobError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, contentType, data)
}

func (s *Server) handleBlobDelete(c *gin.Context) {
	if err := s.store.Revoke(c.Param("id")); err != nil {
		s.blobError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) blobError(c *gin.Context, err error) {
	if errors.Is(err, blob.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("editor listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
