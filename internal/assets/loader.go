package assets

import (
	"fmt"
	"strings"
)

// AssetLoader defines the contract for loading sheet assets.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads an HTML template by name (without .html extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	LoadTemplate(name string) (string, error)

	// LoadDocument loads a Markdown document by name (without .md extension).
	// Returns ErrDocumentNotFound if the document doesn't exist.
	LoadDocument(name string) (string, error)
}

// kind describes one asset family: its directory, extension and the
// error returned when a name is missing.
type kind struct {
	dir      string
	ext      string
	notFound error
}

var (
	styleKind    = kind{dir: "styles", ext: ".css", notFound: ErrStyleNotFound}
	templateKind = kind{dir: "templates", ext: ".html", notFound: ErrTemplateNotFound}
	documentKind = kind{dir: "docs", ext: ".md", notFound: ErrDocumentNotFound}
)

// ValidateAssetName rejects names that are empty or that contain path
// separators or dots, so a name always maps to one file inside its kind
// directory.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, `/\.`) {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
