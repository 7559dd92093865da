package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-qrsheet"
	"github.com/alnah/go-qrsheet/internal/assets"
	"github.com/alnah/go-qrsheet/internal/config"
)

// itemsScript turns a JSON {data: [{id}]} source into item-<id> tags.
const itemsScript = `return JSON.parse(dataSourceString).data.map(i => ({name: "item-" + i.id, qrCode: "id:" + i.id}));`

// itemsSource returns a JSON source with n entities.
func itemsSource(n int) string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = `{"id":` + strconv.Itoa(i+1) + `}`
	}
	return `{"data":[` + strings.Join(ids, ",") + `]}`
}

// testEnv is an Environment writing to buffers with a recorded Open.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer

	mu     sync.Mutex
	opened []string
}

func newTestEnv(stdin string) *testEnv {
	te := &testEnv{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	te.Environment = &Environment{
		Now:         func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		Stdin:       strings.NewReader(stdin),
		Stdout:      te.stdout,
		Stderr:      te.stderr,
		AssetLoader: assets.NewEmbeddedLoader(),
		Config:      config.DefaultConfig(),
		Open: func(url string) {
			te.mu.Lock()
			defer te.mu.Unlock()
			te.opened = append(te.opened, url)
		},
	}
	return te
}

// writeFile creates dir/name with content and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// readAll reads a file or fails the test.
func readAll(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path) // #nosec G304 -- test path
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return data
}

// newTestSheetPool returns a low-resolution native pool closed at cleanup.
func newTestSheetPool(t *testing.T) *qrsheet.SheetPool {
	t.Helper()
	pool := qrsheet.NewSheetPool(2, qrsheet.WithPPI(50), qrsheet.WithStateStore(qrsheet.NewMemoryState()))
	t.Cleanup(func() { _ = pool.Close() })
	return pool
}
