package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-qrsheet"
	"github.com/alnah/go-qrsheet/internal/config"
	"github.com/alnah/go-qrsheet/internal/fileutil"
	"github.com/alnah/go-qrsheet/internal/hints"
	"github.com/alnah/go-qrsheet/internal/state"
)

// stdinArg selects standard input as a data source or script.
const stdinArg = "-"

// filePermissions is rw-r--r--: sheets are meant to be readable.
const filePermissions = 0o644

// newLogger returns a logger writing to w at warn level, debug with
// --verbose and error with --quiet.
func newLogger(w io.Writer, f commonFlags) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: !f.verbose})
	switch {
	case f.quiet:
		log.SetLevel(logrus.ErrorLevel)
	case f.verbose:
		log.SetLevel(logrus.DebugLevel)
	default:
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}

// resolveConfig builds the effective config: defaults, then the config
// file, then QRSHEET_* variables, then flags. The result is validated and
// stored in env.Config.
func resolveConfig(common commonFlags, sheet *sheetFlags, env *Environment) (*config.Config, error) {
	envCfg := loadEnvConfig()

	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		var err error
		cfg, err = config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
			}
			return nil, err
		}
	}

	applyEnvConfig(envCfg, cfg)
	mergeSheetFlags(sheet, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	env.Config = cfg
	return cfg, nil
}

// sheetOptions maps a validated config onto Sheet options.
func sheetOptions(cfg *config.Config, log logrus.FieldLogger) []qrsheet.Option {
	opts := []qrsheet.Option{
		qrsheet.WithTitle(cfg.Sheet.Title),
		qrsheet.WithPaper(cfg.Sheet.Paper),
		qrsheet.WithPPI(cfg.Sheet.PPI),
		qrsheet.WithColumns(cfg.Sheet.Columns),
		qrsheet.WithBlankWidth(cfg.Sheet.BlankWidth),
		qrsheet.WithRemainder(cfg.Sheet.Remainder),
		qrsheet.WithLevel(cfg.QR.Level),
		qrsheet.WithBackend(cfg.Render.Backend),
		qrsheet.WithFormat(cfg.Render.Format),
		qrsheet.WithAssetPath(cfg.Assets.BasePath),
		qrsheet.WithLogger(log),
	}
	if cfg.Render.Timeout > 0 {
		opts = append(opts, qrsheet.WithRenderTimeout(cfg.Render.Timeout))
	}
	if cfg.Transform.Timeout > 0 {
		opts = append(opts, qrsheet.WithTransformTimeout(cfg.Transform.Timeout))
	}
	return opts
}

// openState returns the saved script store named by cfg, or the one under
// the user config directory.
func openState(cfg *config.Config) (*state.File, error) {
	path := cfg.State.Path
	if path == "" {
		var err error
		if path, err = state.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return qrsheet.NewFileState(path), nil
}

// readInput reads a file, or stdin for "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == stdinArg && stdin != nil {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path) // #nosec G304 -- user-provided path
}

// readSource reads the data source named by the first positional argument.
func readSource(args []string, stdin io.Reader) (path, source string, err error) {
	if len(args) == 0 {
		return "", "", ErrNoInput
	}
	data, err := readInput(args[0], stdin)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrReadSource, err)
	}
	return args[0], string(data), nil
}

// resolveScript picks the transform script: --script, then --script-file,
// then the saved script, then transform.scriptFile. No script at all is an
// empty script.
func resolveScript(f scriptFlags, cfg *config.Config, kv qrsheet.StateStore, stdin io.Reader) (string, error) {
	if f.script != "" {
		return f.script, nil
	}
	if f.scriptFile != "" {
		return readScriptFile(f.scriptFile, stdin)
	}
	saved, ok, err := kv.Get(qrsheet.ScriptKey)
	if err != nil {
		return "", err
	}
	if ok {
		return saved, nil
	}
	if cfg.Transform.ScriptFile != "" {
		return readScriptFile(cfg.Transform.ScriptFile, stdin)
	}
	return "", nil
}

// defaultScript returns transform.scriptFile's content, or "".
func defaultScript(cfg *config.Config) (string, error) {
	if cfg.Transform.ScriptFile == "" {
		return "", nil
	}
	return readScriptFile(cfg.Transform.ScriptFile, nil)
}

func readScriptFile(path string, stdin io.Reader) (string, error) {
	data, err := readInput(path, stdin)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadScript, err)
	}
	return string(data), nil
}

// outputPathFor derives "<dir>/<base>.<format>" for a data source. dir
// empty keeps the source directory; stdin sources are named "sheet".
func outputPathFor(source, dir, format string) string {
	base := "sheet"
	srcDir := "."
	if source != stdinArg {
		srcDir = filepath.Dir(source)
		base = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	if dir == "" {
		dir = srcDir
	}
	return filepath.Join(dir, base+"."+format)
}

// writeOutput atomically writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if err := fileutil.WriteFileAtomic(path, data, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}
