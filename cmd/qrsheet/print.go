package main

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// runPrint previews a data source and writes the rasterized sheet.
func runPrint(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parsePrintFlags(args, env.Stdout)
	if err != nil {
		return err
	}

	sheet, source, script, err := openSheet(ctx, f.common, &f.sheet, f.script, positional, env)
	if err != nil {
		return err
	}
	defer sheet.Close()

	start := env.Now()
	if _, err := sheet.Preview(ctx, source, script); err != nil {
		return err
	}

	data, _, err := sheet.Export(ctx, "")
	if err != nil {
		return err
	}

	output := f.output
	if output == "" {
		output = outputPathFor(positional[0], "", strings.ToLower(env.Config.Render.Format))
	}
	if err := writeOutput(output, data); err != nil {
		return err
	}

	if !f.common.quiet {
		if f.common.verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", positional[0], output, env.Now().Sub(start).Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", output)
		}
	}

	if f.open && env.Open != nil {
		abs, err := filepath.Abs(output)
		if err != nil {
			return err
		}
		env.Open((&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String())
	}
	return nil
}
