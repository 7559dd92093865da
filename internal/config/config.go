// Package config loads and validates the qrsheet YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-qrsheet/internal/encoder"
	"github.com/alnah/go-qrsheet/internal/fileutil"
	"github.com/alnah/go-qrsheet/internal/layout"
	"github.com/alnah/go-qrsheet/internal/paper"
	"github.com/alnah/go-qrsheet/internal/raster"
	"github.com/alnah/go-qrsheet/internal/yamlutil"
)

// AppDir is the directory name used under the user config directory.
const AppDir = "go-qrsheet"

// Sentinel errors for config operations.
var (
	ErrConfigNotFound    = errors.New("config file not found")
	ErrEmptyConfigName   = errors.New("config name cannot be empty")
	ErrConfigParse       = errors.New("failed to parse config")
	ErrFieldTooLong      = errors.New("field exceeds maximum length")
	ErrInvalidPPI        = paper.ErrInvalidPPI
	ErrInvalidBlankWidth = paper.ErrInvalidBlankWidth
	ErrInvalidFormat     = errors.New("invalid output format")
	ErrInvalidTimeout    = errors.New("invalid timeout")
)

// Output formats.
const (
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// Defaults.
const (
	DefaultPPI              = 200
	DefaultColumns          = 2
	DefaultRenderTimeout    = 30 * time.Second
	DefaultTransformTimeout = 5 * time.Second
	DefaultAddr             = "127.0.0.1:8080"
)

// Field length limits.
const (
	MaxTitleLength = 200
	MaxPaperLength = 20
	MaxAddrLength  = 255
	MaxPathLength  = 4096
)

// MaxPPI is the highest accepted sheet.ppi.
const MaxPPI = paper.MaxPPI

// Config holds all configuration for sheet generation and serving.
type Config struct {
	Sheet     SheetConfig     `yaml:"sheet"`
	QR        QRConfig        `yaml:"qr"`
	Render    RenderConfig    `yaml:"render"`
	Transform TransformConfig `yaml:"transform"`
	State     StateConfig     `yaml:"state"`
	Server    ServerConfig    `yaml:"server"`
	Assets    AssetsConfig    `yaml:"assets"`
}

// SheetConfig defines the paper and grid.
type SheetConfig struct {
	Title      string  `yaml:"title"`
	Paper      string  `yaml:"paper"`      // registry name, e.g. "A4"
	PPI        int     `yaml:"ppi"`        // pixels per inch
	Columns    int     `yaml:"columns"`    // labels per row
	BlankWidth float64 `yaml:"blankWidth"` // unprintable border, pixels
	Remainder  string  `yaml:"remainder"`  // "drop" or "keep"
}

// QRConfig defines symbol options.
type QRConfig struct {
	Level string `yaml:"level"` // low, medium, high, highest
}

// RenderConfig defines rasterization options.
type RenderConfig struct {
	Backend string        `yaml:"backend"` // native or chrome
	Format  string        `yaml:"format"`  // png or pdf
	Timeout time.Duration `yaml:"timeout"`
}

// TransformConfig defines script execution options.
type TransformConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	ScriptFile string        `yaml:"scriptFile"` // default script when none is saved
}

// StateConfig defines where the last script is persisted.
type StateConfig struct {
	Path string `yaml:"path"` // empty = user config directory
}

// ServerConfig defines the local web editor.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // empty = embedded assets
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Sheet: SheetConfig{
			Paper:     paper.Default().Name,
			PPI:       DefaultPPI,
			Columns:   DefaultColumns,
			Remainder: string(layout.RemainderDrop),
		},
		QR:        QRConfig{Level: encoder.LevelMedium},
		Render:    RenderConfig{Backend: raster.BackendNative, Format: FormatPNG, Timeout: DefaultRenderTimeout},
		Transform: TransformConfig{Timeout: DefaultTransformTimeout},
		Server:    ServerConfig{Addr: DefaultAddr},
	}
}

// Validate checks every field and returns the first problem found.
func (c *Config) Validate() error {
	if err := validateFieldLength("sheet.title", c.Sheet.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := validateFieldLength("sheet.paper", c.Sheet.Paper, MaxPaperLength); err != nil {
		return err
	}
	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	for field, value := range map[string]string{
		"transform.scriptFile": c.Transform.ScriptFile,
		"state.path":           c.State.Path,
		"assets.basePath":      c.Assets.BasePath,
	} {
		if err := validateFieldLength(field, value, MaxPathLength); err != nil {
			return err
		}
	}

	if _, _, err := paper.Resolve(c.Sheet.Paper, c.Sheet.PPI, c.Sheet.BlankWidth); err != nil {
		return fmt.Errorf("sheet: %w", err)
	}
	if err := layout.ValidateColumns(c.Sheet.Columns); err != nil {
		return fmt.Errorf("sheet.columns: %w", err)
	}
	if _, err := layout.ParseRemainder(c.Sheet.Remainder); err != nil {
		return fmt.Errorf("sheet.remainder: %w", err)
	}

	if _, err := encoder.ParseLevel(c.QR.Level); err != nil {
		return fmt.Errorf("qr.level: %w", err)
	}

	if _, err := raster.ParseBackend(c.Render.Backend); err != nil {
		return fmt.Errorf("render.backend: %w", err)
	}
	if _, err := ParseFormat(c.Render.Format); err != nil {
		return fmt.Errorf("render.format: %w", err)
	}
	if c.Render.Timeout < 0 {
		return fmt.Errorf("render.timeout: %w: %v", ErrInvalidTimeout, c.Render.Timeout)
	}
	if c.Transform.Timeout < 0 {
		return fmt.Errorf("transform.timeout: %w: %v", ErrInvalidTimeout, c.Transform.Timeout)
	}

	return nil
}

// ParseFormat validates an output format. Empty selects PNG.
func ParseFormat(name string) (string, error) {
	switch strings.ToLower(name) {
	case "", FormatPNG:
		return FormatPNG, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q (must be png or pdf)", ErrInvalidFormat, name)
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name on top of
// the defaults. A value containing a path separator is a file path;
// anything else is a name searched in standard locations. A missing file
// is an error, never a silent fallback.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := yamlutil.ReadFile(configPath, cfg, true); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// SearchPaths lists the candidate files for a config name, in lookup order:
// the working directory, then the user config directory, each with .yaml
// before .yml.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, AppDir, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing search path for name.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
