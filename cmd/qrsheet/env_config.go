package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-qrsheet/internal/config"
)

// envPrefix marks the environment variables read by qrsheet.
const envPrefix = "QRSHEET_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // QRSHEET_CONFIG: config file name or path
	Paper      string        // QRSHEET_PAPER: paper size name
	PPI        int           // QRSHEET_PPI: pixels per inch
	Columns    int           // QRSHEET_COLUMNS: labels per row
	Backend    string        // QRSHEET_BACKEND: native or chrome
	Timeout    time.Duration // QRSHEET_TIMEOUT: render timeout
	StatePath  string        // QRSHEET_STATE: saved script file
	Addr       string        // QRSHEET_ADDR: web editor listen address
}

// knownEnvVars lists valid QRSHEET_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"QRSHEET_CONFIG":  true,
	"QRSHEET_PAPER":   true,
	"QRSHEET_PPI":     true,
	"QRSHEET_COLUMNS": true,
	"QRSHEET_BACKEND": true,
	"QRSHEET_TIMEOUT": true,
	"QRSHEET_STATE":   true,
	"QRSHEET_ADDR":    true,

	// Doctor override for container detection
	"QRSHEET_CONTAINER": true,
}

// loadEnvConfig reads configuration from environment variables.
// Unparsable numbers and durations are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("QRSHEET_CONFIG"),
		Paper:      os.Getenv("QRSHEET_PAPER"),
		Backend:    os.Getenv("QRSHEET_BACKEND"),
		StatePath:  os.Getenv("QRSHEET_STATE"),
		Addr:       os.Getenv("QRSHEET_ADDR"),
	}

	if timeout := os.Getenv("QRSHEET_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if ppi := os.Getenv("QRSHEET_PPI"); ppi != "" {
		if n, err := strconv.Atoi(ppi); err == nil && n > 0 {
			cfg.PPI = n
		}
	}
	if columns := os.Getenv("QRSHEET_COLUMNS"); columns != "" {
		if n, err := strconv.Atoi(columns); err == nil && n > 0 {
			cfg.Columns = n
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized QRSHEET_* variables.
// Helps catch typos like QRSHEET_COLUMN instead of QRSHEET_COLUMNS.
func warnUnknownEnvVars(w io.Writer) {
	var unknown []string
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				unknown = append(unknown, name)
			}
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
	}
}

// applyEnvConfig applies environment variable values over the config file.
// CLI flags are applied afterwards by mergeSheetFlags, giving:
// CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Paper != "" {
		cfg.Sheet.Paper = env.Paper
	}
	if env.PPI > 0 {
		cfg.Sheet.PPI = env.PPI
	}
	if env.Columns > 0 {
		cfg.Sheet.Columns = env.Columns
	}
	if env.Backend != "" {
		cfg.Render.Backend = env.Backend
	}
	if env.Timeout > 0 {
		cfg.Render.Timeout = env.Timeout
	}
	if env.StatePath != "" {
		cfg.State.Path = env.StatePath
	}
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
}
