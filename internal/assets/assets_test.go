package assets

// Notes:
// - ValidateAssetName: tests rejection of empty names, separators and dots
// - EmbeddedLoader: tests the built-in style, templates and help document
// - FilesystemLoader: tests loading from disk and path containment
// - AssetResolver: tests custom-first loading with embedded fallback

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeAsset creates {dir}/{sub}/{file} with content.
func writeAsset(t *testing.T, dir, sub, file, content string) {
	t.Helper()

	target := filepath.Join(dir, sub)
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", target, err)
	}
	if err := os.WriteFile(filepath.Join(target, file), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", file, err)
	}
}

// ---------------------------------------------------------------------------
// TestValidateAssetName - Name Validation
// ---------------------------------------------------------------------------

func TestValidateAssetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		wantErr error
	}{
		{input: "default"},
		{input: "editor-help"},
		{input: "page_2"},
		{input: "", wantErr: ErrInvalidAssetName},
		{input: "../secret", wantErr: ErrInvalidAssetName},
		{input: `..\secret`, wantErr: ErrInvalidAssetName},
		{input: "styles/default", wantErr: ErrInvalidAssetName},
		{input: "page.html", wantErr: ErrInvalidAssetName},
		{input: ".hidden", wantErr: ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			err := ValidateAssetName(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAssetName(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestEmbeddedLoader - Built-in Assets
// ---------------------------------------------------------------------------

func TestEmbeddedLoader(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	tests := []struct {
		name        string
		load        func(string) (string, error)
		asset       string
		wantContain string
		wantErr     error
	}{
		{name: "default style", load: loader.LoadStyle, asset: DefaultStyleName, wantContain: "#paper"},
		{name: "page template", load: loader.LoadTemplate, asset: PageTemplateName, wantContain: `id="paper"`},
		{name: "editor template", load: loader.LoadTemplate, asset: EditorTemplateName, wantContain: "preventDefault"},
		{name: "help document", load: loader.LoadDocument, asset: EditorHelpDocument, wantContain: "dataSourceString"},
		{name: "missing style", load: loader.LoadStyle, asset: "nonexistent-xyz", wantErr: ErrStyleNotFound},
		{name: "missing template", load: loader.LoadTemplate, asset: "nonexistent-xyz", wantErr: ErrTemplateNotFound},
		{name: "missing document", load: loader.LoadDocument, asset: "nonexistent-xyz", wantErr: ErrDocumentNotFound},
		{name: "traversal", load: loader.LoadTemplate, asset: "../page", wantErr: ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.load(tt.asset)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("load(%q) error = %v, want %v", tt.asset, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("load(%q) unexpected error: %v", tt.asset, err)
			}
			if !strings.Contains(got, tt.wantContain) {
				t.Errorf("load(%q) content should contain %q", tt.asset, tt.wantContain)
			}
		})
	}
}

func TestPackageLevelLoaders(t *testing.T) {
	t.Parallel()

	if _, err := LoadStyle(DefaultStyleName); err != nil {
		t.Errorf("LoadStyle() error = %v", err)
	}
	if _, err := LoadTemplate(PageTemplateName); err != nil {
		t.Errorf("LoadTemplate() error = %v", err)
	}
	if _, err := LoadDocument(EditorHelpDocument); err != nil {
		t.Errorf("LoadDocument() error = %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestFilesystemLoader - Custom Directory
// ---------------------------------------------------------------------------

func TestNewFilesystemLoader(t *testing.T) {
	t.Parallel()

	t.Run("valid directory", func(t *testing.T) {
		t.Parallel()

		if _, err := NewFilesystemLoader(t.TempDir()); err != nil {
			t.Fatalf("NewFilesystemLoader() error = %v", err)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		_, err := NewFilesystemLoader("")
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("error = %v, want ErrInvalidBasePath", err)
		}
	})

	t.Run("nonexistent directory", func(t *testing.T) {
		t.Parallel()

		_, err := NewFilesystemLoader(filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("error = %v, want ErrInvalidBasePath", err)
		}
	})

	t.Run("file instead of directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeAsset(t, dir, ".", "file.txt", "x")

		_, err := NewFilesystemLoader(filepath.Join(dir, "file.txt"))
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("error = %v, want ErrInvalidBasePath", err)
		}
	})
}

func TestFilesystemLoader_Load(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeAsset(t, dir, "styles", "labels.css", "td.tag { color: red; }")
	writeAsset(t, dir, "templates", "page.html", "<div id=\"paper\"></div>")
	writeAsset(t, dir, "docs", "notes.md", "# Notes")

	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}

	if got, err := loader.LoadStyle("labels"); err != nil || got != "td.tag { color: red; }" {
		t.Errorf("LoadStyle() = %q, %v", got, err)
	}
	if got, err := loader.LoadTemplate("page"); err != nil || got != "<div id=\"paper\"></div>" {
		t.Errorf("LoadTemplate() = %q, %v", got, err)
	}
	if got, err := loader.LoadDocument("notes"); err != nil || got != "# Notes" {
		t.Errorf("LoadDocument() = %q, %v", got, err)
	}
	if _, err := loader.LoadTemplate("editor"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("LoadTemplate(missing) error = %v, want ErrTemplateNotFound", err)
	}
}

func TestFilesystemLoader_SymlinkEscape(t *testing.T) {
	t.Parallel()

	outside := t.TempDir()
	writeAsset(t, outside, ".", "secret.css", "secret")

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "styles"), 0o755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "styles", "evil.css")
	if err := os.Symlink(filepath.Join(outside, "secret.css"), link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}

	_, err = loader.LoadStyle("evil")
	if !errors.Is(err, ErrPathTraversal) {
		t.Errorf("LoadStyle() error = %v, want ErrPathTraversal", err)
	}
}

// ---------------------------------------------------------------------------
// TestAssetResolver - Custom First, Embedded Fallback
// ---------------------------------------------------------------------------

func TestAssetResolver(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	override := "<!-- custom page --><div id=\"paper\"></div>"
	writeAsset(t, dir, "templates", "page.html", override)

	resolver, err := NewAssetResolver(dir)
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}
	if !resolver.HasCustomLoader() {
		t.Error("HasCustomLoader() = false, want true")
	}

	t.Run("custom overrides embedded", func(t *testing.T) {
		t.Parallel()

		got, err := resolver.LoadTemplate(PageTemplateName)
		if err != nil {
			t.Fatalf("LoadTemplate() error = %v", err)
		}
		if got != override {
			t.Errorf("LoadTemplate() = %q, want custom override", got)
		}
	})

	t.Run("falls back to embedded", func(t *testing.T) {
		t.Parallel()

		got, err := resolver.LoadStyle(DefaultStyleName)
		if err != nil {
			t.Fatalf("LoadStyle() error = %v", err)
		}
		if !strings.Contains(got, "#paper") {
			t.Error("LoadStyle() should return the embedded default style")
		}

		if _, err := resolver.LoadDocument(EditorHelpDocument); err != nil {
			t.Errorf("LoadDocument() error = %v", err)
		}
	})

	t.Run("validation errors are not fallen back", func(t *testing.T) {
		t.Parallel()

		_, err := resolver.LoadStyle("../secret")
		if !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("LoadStyle() error = %v, want ErrInvalidAssetName", err)
		}
	})
}

func TestNewAssetResolver_EmbeddedOnly(t *testing.T) {
	t.Parallel()

	resolver, err := NewAssetResolver("")
	if err != nil {
		t.Fatalf("NewAssetResolver(\"\") error = %v", err)
	}
	if resolver.HasCustomLoader() {
		t.Error("HasCustomLoader() = true, want false")
	}

	_, err = NewAssetResolver(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrInvalidBasePath) {
		t.Errorf("NewAssetResolver(missing) error = %v, want ErrInvalidBasePath", err)
	}
}
