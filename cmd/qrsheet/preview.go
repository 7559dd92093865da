package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-qrsheet"
)

// runPreview runs the transform script over a data source and prints the
// grid rows the sheet would render.
func runPreview(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parsePreviewFlags(args, env.Stdout)
	if err != nil {
		return err
	}

	sheet, source, script, err := openSheet(ctx, f.common, &f.sheet, f.script, positional, env)
	if err != nil {
		return err
	}
	defer sheet.Close()

	if _, err := sheet.Preview(ctx, source, script); err != nil {
		return err
	}

	if f.html != "" {
		var buf bytes.Buffer
		if err := sheet.RenderHTML(ctx, &buf); err != nil {
			return err
		}
		if err := writeOutput(f.html, buf.Bytes()); err != nil {
			return err
		}
	}

	if !f.common.quiet {
		printRows(env.Stdout, sheet.Rows(), f.common.verbose)
		fmt.Fprintf(env.Stdout, "%d entities, %d dropped (%s, %d columns)\n",
			len(sheet.Tags()), sheet.Dropped(), sheet.Paper(), env.Config.Sheet.Columns)
		if f.html != "" {
			fmt.Fprintf(env.Stdout, "Created %s\n", f.html)
		}
	}
	return nil
}

// openSheet resolves config, reads the data source and script and builds
// a Sheet that saves the script to the state file.
func openSheet(ctx context.Context, common commonFlags, sf *sheetFlags, scf scriptFlags, positional []string, env *Environment) (*qrsheet.Sheet, string, string, error) {
	cfg, err := resolveConfig(common, sf, env)
	if err != nil {
		return nil, "", "", err
	}
	kv, err := openState(cfg)
	if err != nil {
		return nil, "", "", err
	}
	_, source, err := readSource(positional, env.Stdin)
	if err != nil {
		return nil, "", "", err
	}
	script, err := resolveScript(scf, cfg, kv, env.Stdin)
	if err != nil {
		return nil, "", "", err
	}
	if err := ctx.Err(); err != nil {
		return nil, "", "", err
	}

	log := newLogger(env.Stderr, common)
	opts := append(sheetOptions(cfg, log), qrsheet.WithStateStore(kv))
	sheet, err := qrsheet.NewSheet(opts...)
	if err != nil {
		return nil, "", "", err
	}
	return sheet, source, script, nil
}

// printRows writes one line per grid row. Verbose adds each payload.
func printRows(w io.Writer, rows [][]qrsheet.Tag, verbose bool) {
	for i, row := range rows {
		names := make([]string, len(row))
		for j, tag := range row {
			names[j] = tag.Name
		}
		fmt.Fprintf(w, "row %d: %s\n", i+1, strings.Join(names, " | "))
		if verbose {
			for _, tag := range row {
				fmt.Fprintf(w, "  %s = %s\n", tag.Name, tag.Payload)
			}
		}
	}
}
