package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-qrsheet/internal/config"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// sheetFlags holds paper, grid and rendering flags. changed reports whether
// a flag was set on the command line.
type sheetFlags struct {
	title     string
	paper     string
	ppi       int
	columns   int
	blank     float64
	remainder string
	level     string
	backend   string
	format    string
	timeout   time.Duration
	state     string
	assetPath string

	changed func(name string) bool
}

// scriptFlags selects the transform script.
type scriptFlags struct {
	script     string
	scriptFile string
}

// previewFlags holds all flags for the preview command.
type previewFlags struct {
	common commonFlags
	sheet  sheetFlags
	script scriptFlags
	html   string
}

// printFlags holds all flags for the print command.
type printFlags struct {
	common commonFlags
	sheet  sheetFlags
	script scriptFlags
	output string
	open   bool
}

// batchFlags holds all flags for the batch command.
type batchFlags struct {
	common  commonFlags
	sheet   sheetFlags
	script  scriptFlags
	output  string
	workers int
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common commonFlags
	sheet  sheetFlags
	addr   string
}

// scriptCmdFlags holds flags for the script subcommands.
type scriptCmdFlags struct {
	common  commonFlags
	state   string
	noColor bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addSheetFlags adds paper, grid and rendering flags to a FlagSet.
func addSheetFlags(fs *flag.FlagSet, f *sheetFlags) {
	fs.StringVar(&f.title, "title", "", "page title")
	fs.StringVarP(&f.paper, "paper", "p", "", "paper size: A4, A3, A5, A6, Letter, Legal")
	fs.IntVar(&f.ppi, "ppi", 0, "pixels per inch, also the QR side in pixels")
	fs.IntVarP(&f.columns, "columns", "n", 0, "labels per row")
	fs.Float64Var(&f.blank, "blank", 0, "unprintable border in pixels")
	fs.StringVar(&f.remainder, "remainder", "", "last partial row: drop or keep")
	fs.StringVar(&f.level, "level", "", "QR recovery level: low, medium, high, highest")
	fs.StringVarP(&f.backend, "backend", "b", "", "render backend: native or chrome")
	fs.StringVarP(&f.format, "format", "f", "", "output format: png or pdf")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "render timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.state, "state", "", "saved script file")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory overriding embedded styles and templates")
	f.changed = fs.Changed
}

// addScriptFlags adds transform script flags to a FlagSet.
func addScriptFlags(fs *flag.FlagSet, f *scriptFlags) {
	fs.StringVarP(&f.script, "script", "s", "", "transform script source")
	fs.StringVar(&f.scriptFile, "script-file", "", "transform script file")
}

// mergeSheetFlags applies explicitly set flags over cfg.
func mergeSheetFlags(f *sheetFlags, cfg *config.Config) {
	if f == nil || f.changed == nil {
		return
	}
	if f.changed("title") {
		cfg.Sheet.Title = f.title
	}
	if f.changed("paper") {
		cfg.Sheet.Paper = f.paper
	}
	if f.changed("ppi") {
		cfg.Sheet.PPI = f.ppi
	}
	if f.changed("columns") {
		cfg.Sheet.Columns = f.columns
	}
	if f.changed("blank") {
		cfg.Sheet.BlankWidth = f.blank
	}
	if f.changed("remainder") {
		cfg.Sheet.Remainder = f.remainder
	}
	if f.changed("level") {
		cfg.QR.Level = f.level
	}
	if f.changed("backend") {
		cfg.Render.Backend = f.backend
	}
	if f.changed("format") {
		cfg.Render.Format = f.format
	}
	if f.changed("timeout") {
		cfg.Render.Timeout = f.timeout
	}
	if f.changed("state") {
		cfg.State.Path = f.state
	}
	if f.changed("asset-path") {
		cfg.Assets.BasePath = f.assetPath
	}
}

// newFlagSet returns a FlagSet that reports errors instead of exiting and
// prints usage to w on --help.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parse runs fs.Parse and wraps errors other than --help as usage errors.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// parsePreviewFlags parses preview command flags and returns positional args.
func parsePreviewFlags(args []string, w io.Writer) (*previewFlags, []string, error) {
	f := &previewFlags{}
	fs := newFlagSet("preview", w, printPreviewUsage)

	fs.StringVar(&f.html, "html", "", "write the sheet page as HTML to this file")
	addCommonFlags(fs, &f.common)
	addSheetFlags(fs, &f.sheet)
	addScriptFlags(fs, &f.script)

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parsePrintFlags parses print command flags and returns positional args.
func parsePrintFlags(args []string, w io.Writer) (*printFlags, []string, error) {
	f := &printFlags{}
	fs := newFlagSet("print", w, printPrintUsage)

	fs.StringVarP(&f.output, "output", "o", "", "output file")
	fs.BoolVar(&f.open, "open", false, "open the written file in the browser")
	addCommonFlags(fs, &f.common)
	addSheetFlags(fs, &f.sheet)
	addScriptFlags(fs, &f.script)

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseBatchFlags parses batch command flags and returns positional args.
func parseBatchFlags(args []string, w io.Writer) (*batchFlags, []string, error) {
	f := &batchFlags{}
	fs := newFlagSet("batch", w, printBatchUsage)

	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel sheets (0 = auto)")
	addCommonFlags(fs, &f.common)
	addSheetFlags(fs, &f.sheet)
	addScriptFlags(fs, &f.script)

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, w io.Writer) (*serveFlags, []string, error) {
	f := &serveFlags{}
	fs := newFlagSet("serve", w, printServeUsage)

	fs.StringVarP(&f.addr, "addr", "a", "", "listen address")
	addCommonFlags(fs, &f.common)
	addSheetFlags(fs, &f.sheet)

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseScriptFlags parses flags for a script subcommand.
func parseScriptFlags(args []string, w io.Writer) (*scriptCmdFlags, []string, error) {
	f := &scriptCmdFlags{}
	fs := newFlagSet("script", w, printScriptUsage)

	fs.StringVar(&f.state, "state", "", "saved script file")
	fs.BoolVar(&f.noColor, "no-color", false, "print without syntax highlighting")
	addCommonFlags(fs, &f.common)

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
