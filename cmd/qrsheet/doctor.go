package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/alnah/go-qrsheet/internal/fileutil"
	"github.com/alnah/go-qrsheet/internal/state"
)

// Doctor status values.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// Finding levels, printed as [OK], [WARN] and [ERROR].
const (
	levelOK    = "OK"
	levelWarn  = "WARN"
	levelError = "ERROR"
)

// ciEnvVars mark a CI runner when any of them is set.
var ciEnvVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

// doctorResult is the doctor report. The JSON form is stable.
type doctorResult struct {
	Status   string     `json:"status"`
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`

	sections []section
}

type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

type systemInfo struct {
	TempWritable  bool   `json:"temp_writable"`
	StatePath     string `json:"state_path,omitempty"`
	StateWritable bool   `json:"state_writable"`
}

// section groups the lines of one part of the text report.
type section struct {
	title    string
	findings []finding
}

type finding struct {
	level string
	text  string
}

func (s *section) add(level, format string, args ...any) {
	s.findings = append(s.findings, finding{level: level, text: fmt.Sprintf(format, args...)})
}

// warn records a problem that leaves the tool usable.
func (r *doctorResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// fail records a problem that prevents printing.
func (r *doctorResult) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// runDoctorCmd runs the checks and reports them. It returns ExitGeneral
// only when an error was found; warnings still exit 0.
func runDoctorCmd(args []string, env *Environment) int {
	asJSON := false
	for _, arg := range args {
		switch arg {
		case "--json":
			asJSON = true
		case "-h", "--help":
			printDoctorUsage(env.Stdout)
			return ExitSuccess
		}
	}

	result := diagnose()
	if asJSON {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// diagnose runs every check in report order.
func diagnose() *doctorResult {
	r := &doctorResult{
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}
	r.sections = []section{
		diagnoseChrome(r),
		diagnoseEnvironment(r),
		diagnoseSystem(r),
	}

	switch {
	case len(r.Errors) > 0:
		r.Status = statusErrors
	case len(r.Warnings) > 0:
		r.Status = statusWarnings
	default:
		r.Status = statusReady
	}
	return r
}

// diagnoseChrome looks for a browser for --backend chrome. Its absence is
// a warning since the native backend needs none.
func diagnoseChrome(r *doctorResult) section {
	s := section{title: "Chrome/Chromium (optional, --backend chrome)"}

	path := r.Env.BrowserBin
	if path == "" {
		var ok bool
		if path, ok = launcher.LookPath(); !ok {
			s.add(levelWarn, "Not found")
			r.warn("Chrome/Chromium not found; only --backend native is available. Install Chrome or set ROD_BROWSER_BIN")
			return s
		}
	}
	if !fileutil.FileExists(path) {
		s.add(levelWarn, "Not found at %s", path)
		r.warn("Chrome not found at %s", path)
		return s
	}

	r.Chrome.Found = true
	r.Chrome.Path = path
	s.add(levelOK, "Found at %s", path)

	out, err := exec.Command(path, "--version").Output() // #nosec G204 -- browser path from rod or ROD_BROWSER_BIN
	if err != nil {
		r.warn("Could not get Chrome version: %v", err)
	} else {
		r.Chrome.Version = strings.TrimSpace(string(out))
		s.add(levelOK, "Version: %s", r.Chrome.Version)
	}

	r.Chrome.Sandbox = r.Env.NoSandbox != "1"
	if r.Chrome.Sandbox {
		s.add(levelOK, "Sandbox: enabled")
	} else {
		s.add(levelOK, "Sandbox: disabled (ROD_NO_SANDBOX=1)")
	}
	return s
}

// diagnoseEnvironment reports the platform and detects containers and CI,
// where Chrome usually needs its sandbox disabled.
func diagnoseEnvironment(r *doctorResult) section {
	s := section{title: "Environment"}
	s.add(levelOK, "Platform: %s/%s", r.Env.OS, r.Env.Arch)

	r.Env.Container, r.Env.ContainerHint = detectContainer()
	if r.Env.Container {
		s.add(levelOK, "Container: detected (%s)", r.Env.ContainerHint)
	}
	for _, name := range ciEnvVars {
		if os.Getenv(name) != "" {
			r.Env.CI = true
			s.add(levelOK, "CI: detected (%s)", name)
			break
		}
	}

	if r.Chrome.Found && (r.Env.Container || r.Env.CI) && r.Env.NoSandbox != "1" {
		r.warn("Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
	return s
}

// detectContainer returns whether we run in a container and the signal
// that said so.
func detectContainer() (bool, string) {
	switch {
	case os.Getenv("QRSHEET_CONTAINER") == "1":
		return true, "QRSHEET_CONTAINER=1"
	case fileutil.FileExists("/.dockerenv"):
		return true, "/.dockerenv"
	case os.Getenv("container") != "":
		return true, "container=" + os.Getenv("container")
	case os.Getenv("KUBERNETES_SERVICE_HOST") != "":
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// diagnoseSystem checks the temp directory used by the chrome backend and
// the directory holding the saved script.
func diagnoseSystem(r *doctorResult) section {
	s := section{title: "System"}

	tmp := os.TempDir()
	if err := fileutil.DirWritable(tmp); err != nil {
		s.add(levelError, "Temp directory: not writable")
		r.fail("Temp directory not writable: %s", tmp)
	} else {
		r.System.TempWritable = true
		s.add(levelOK, "Temp directory: writable")
	}

	path := os.Getenv("QRSHEET_STATE")
	if path == "" {
		var err error
		if path, err = state.DefaultPath(); err != nil {
			s.add(levelWarn, "Saved script: no location")
			r.warn("No user config directory; scripts will not be saved: %v", err)
			return s
		}
	}
	r.System.StatePath = path

	dir := existingAncestor(filepath.Dir(path))
	if err := fileutil.DirWritable(dir); err != nil {
		s.add(levelWarn, "Saved script: not writable")
		r.warn("State directory not writable: %s", dir)
		return s
	}
	r.System.StateWritable = true
	s.add(levelOK, "Saved script: %s", path)
	return s
}

// existingAncestor returns dir or its closest existing parent. The state
// directory is created on first save, so its parent is what must be writable.
func existingAncestor(dir string) string {
	for {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "qrsheet doctor")
	fmt.Fprintln(w)

	for _, s := range r.sections {
		fmt.Fprintln(w, s.title)
		for _, f := range s.findings {
			fmt.Fprintf(w, "  [%s] %s\n", f.level, f.text)
		}
		fmt.Fprintln(w)
	}

	printFindings(w, "Warnings:", levelWarn, r.Warnings)
	printFindings(w, "Errors:", levelError, r.Errors)

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to print")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

func printFindings(w io.Writer, heading, level string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(w, heading)
	for _, line := range lines {
		fmt.Fprintf(w, "  [%s] %s\n", level, line)
	}
	fmt.Fprintln(w)
}
