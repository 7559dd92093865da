// Package assets provides the CSS, HTML templates and help documents used
// to render label sheets and the web editor.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the loader used by the sheet and the web server. It tries
// the custom FilesystemLoader first and falls back to EmbeddedLoader when
// the asset is not found, so a user can override the page template alone.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css      # sheet styles (default.css)
//	├── templates/
//	│   └── {name}.html     # page.html, editor.html
//	└── docs/
//	    └── {name}.md       # editor-help.md
//
// # Security
//
// Asset names are validated to prevent path traversal.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
