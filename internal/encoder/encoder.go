// Package encoder renders payload strings as QR code images.
package encoder

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/sync/errgroup"
)

// DataURIPrefix prefixes every image URI produced by the encoder.
const DataURIPrefix = "data:image/png;base64,"

// Sentinel errors for encoding.
var (
	ErrEncoding       = errors.New("QR encoding failed")
	ErrInvalidSize    = errors.New("invalid QR image size")
	ErrInvalidLevel   = errors.New("invalid recovery level")
	ErrInvalidDataURI = errors.New("invalid image data URI")
)

// Recovery level names accepted by ParseLevel.
const (
	LevelLow     = "low"
	LevelMedium  = "medium"
	LevelHigh    = "high"
	LevelHighest = "highest"
)

// ParseLevel maps a level name to a go-qrcode recovery level.
// An empty name selects medium.
func ParseLevel(name string) (qrcode.RecoveryLevel, error) {
	switch strings.ToLower(name) {
	case LevelLow:
		return qrcode.Low, nil
	case "", LevelMedium:
		return qrcode.Medium, nil
	case LevelHigh:
		return qrcode.High, nil
	case LevelHighest:
		return qrcode.Highest, nil
	}
	return qrcode.Medium, fmt.Errorf("%w: %q (must be low, medium, high, or highest)", ErrInvalidLevel, name)
}

// encodeFunc renders one payload as PNG bytes of exactly size x size pixels.
type encodeFunc func(payload string, size int) ([]byte, error)

// Encoder encodes payload batches concurrently.
type Encoder struct {
	level       qrcode.RecoveryLevel
	concurrency int
	encode      encodeFunc
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithLevel sets the error recovery level.
func WithLevel(level qrcode.RecoveryLevel) Option {
	return func(e *Encoder) {
		e.level = level
	}
}

// WithConcurrency caps simultaneous encodings. Zero means no cap.
func WithConcurrency(n int) Option {
	return func(e *Encoder) {
		e.concurrency = n
	}
}

// New creates an Encoder using medium recovery and no concurrency cap.
func New(opts ...Option) *Encoder {
	e := &Encoder{level: qrcode.Medium}
	for _, opt := range opts {
		opt(e)
	}
	if e.encode == nil {
		e.encode = e.encodePNG
	}
	return e
}

// encodePNG draws the symbol without a quiet zone.
func (e *Encoder) encodePNG(payload string, size int) ([]byte, error) {
	q, err := qrcode.New(payload, e.level)
	if err != nil {
		return nil, err
	}
	q.DisableBorder = true
	return q.PNG(size)
}

// Encode renders a single payload as a data URI.
func (e *Encoder) Encode(payload string, size int) (string, error) {
	if size < 1 {
		return "", fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	b, err := e.encode(payload, size)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return DataURIPrefix + base64.StdEncoding.EncodeToString(b), nil
}

// EncodeAll renders every payload concurrently. The i-th URI always belongs
// to the i-th payload. The first failure cancels the rest and no partial
// result is returned.
func (e *Encoder) EncodeAll(ctx context.Context, payloads []string, size int) ([]string, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	uris := make([]string, len(payloads))
	g, gctx := errgroup.WithContext(ctx)
	if e.concurrency > 0 {
		g.SetLimit(e.concurrency)
	}

	for i, payload := range payloads {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			uri, err := e.Encode(payload, size)
			if err != nil {
				return fmt.Errorf("entity %d: %w", i, err)
			}
			uris[i] = uri
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return uris, nil
}

// DecodeDataURI decodes an image URI produced by Encode.
func DecodeDataURI(uri string) (image.Image, error) {
	raw, ok := strings.CutPrefix(uri, DataURIPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: expected %q prefix", ErrInvalidDataURI, DataURIPrefix)
	}
	b, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return img, nil
}
