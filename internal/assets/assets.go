// Package assets provides the CSS, HTML templates and help documents used
// to render label sheets and the web editor.
package assets

// Built-in asset names.
const (
	DefaultStyleName   = "default"
	PageTemplateName   = "page"
	EditorTemplateName = "editor"
	EditorHelpDocument = "editor-help"
)

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a CSS file by name using the embedded loader.
// The name should not include the .css extension or path components.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplate loads an HTML template by name using the embedded loader.
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}

// LoadDocument loads a Markdown document by name using the embedded loader.
func LoadDocument(name string) (string, error) {
	return defaultLoader.LoadDocument(name)
}
