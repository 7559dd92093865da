package main

// Notes:
// - Tests use black-box approach: testing through runDoctorCmd() observable outputs.
// - Chrome detection depends on system state; a missing browser is a warning,
//   so the exit code only depends on temp and state checks.
// - Container and state tests modify environment variables, cannot use t.Parallel().

import (
	"encoding/json"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunDoctorCmd_JSONOutput - JSON output format and structure
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_JSONOutput(t *testing.T) {
	t.Setenv("QRSHEET_STATE", filepath.Join(t.TempDir(), "nested", "state.yaml"))

	env := newTestEnv("")
	exitCode := runDoctorCmd([]string{"--json"}, env.Environment)

	var result doctorResult
	if err := json.Unmarshal(env.stdout.Bytes(), &result); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput was: %s", err, env.stdout.String())
	}

	if result.Env.OS != runtime.GOOS || result.Env.Arch != runtime.GOARCH {
		t.Errorf("platform = %s/%s, want %s/%s", result.Env.OS, result.Env.Arch, runtime.GOOS, runtime.GOARCH)
	}

	validStatuses := map[string]bool{statusReady: true, statusWarnings: true, statusErrors: true}
	if !validStatuses[result.Status] {
		t.Errorf("Invalid status %q, expected ready/warnings/errors", result.Status)
	}
	if result.Status == statusErrors && exitCode != ExitGeneral {
		t.Errorf("Expected exit code %d for errors status, got %d", ExitGeneral, exitCode)
	}
	if result.Status != statusErrors && exitCode != ExitSuccess {
		t.Errorf("Expected exit code %d for non-error status, got %d", ExitSuccess, exitCode)
	}

	if !result.System.TempWritable {
		t.Error("temp directory should be writable in tests")
	}
	if !result.System.StateWritable {
		t.Errorf("state directory should be writable (path %s), warnings: %v", result.System.StatePath, result.Warnings)
	}
	if !strings.HasSuffix(result.System.StatePath, "state.yaml") {
		t.Errorf("StatePath = %q, want the QRSHEET_STATE file", result.System.StatePath)
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd_HumanOutput - Text report sections
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_HumanOutput(t *testing.T) {
	t.Setenv("QRSHEET_STATE", filepath.Join(t.TempDir(), "state.yaml"))

	env := newTestEnv("")
	runDoctorCmd(nil, env.Environment)
	output := env.stdout.String()

	for _, s := range []string{"qrsheet doctor", "Chrome/Chromium", "Environment", "System", "Temp directory", "Saved script", "Status:"} {
		if !strings.Contains(output, s) {
			t.Errorf("output should contain %q\n%s", s, output)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd_Container - Container detection
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_Container(t *testing.T) {
	t.Setenv("QRSHEET_CONTAINER", "1")
	t.Setenv("QRSHEET_STATE", filepath.Join(t.TempDir(), "state.yaml"))

	env := newTestEnv("")
	runDoctorCmd([]string{"--json"}, env.Environment)

	var result doctorResult
	if err := json.Unmarshal(env.stdout.Bytes(), &result); err != nil {
		t.Fatalf("Invalid JSON output: %v", err)
	}
	if !result.Env.Container || result.Env.ContainerHint != "QRSHEET_CONTAINER=1" {
		t.Errorf("container = %v (%q), want detected via QRSHEET_CONTAINER", result.Env.Container, result.Env.ContainerHint)
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd_Help - Help flag
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_Help(t *testing.T) {
	t.Parallel()

	env := newTestEnv("")
	if code := runDoctorCmd([]string{"--help"}, env.Environment); code != ExitSuccess {
		t.Errorf("exit code = %d, want %d", code, ExitSuccess)
	}
	if !strings.Contains(env.stdout.String(), "Usage: qrsheet doctor") {
		t.Errorf("stdout = %q, want usage", env.stdout.String())
	}
}

// ---------------------------------------------------------------------------
// TestExistingAncestor - Nearest existing directory
// ---------------------------------------------------------------------------

func TestExistingAncestor(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if got := existingAncestor(filepath.Join(dir, "a", "b", "c")); got != dir {
		t.Errorf("existingAncestor() = %q, want %q", got, dir)
	}
	if got := existingAncestor(dir); got != dir {
		t.Errorf("existingAncestor(existing) = %q, want %q", got, dir)
	}
}
