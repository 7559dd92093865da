package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/alnah/go-qrsheet"
)

// Pool abstracts sheet pool operations for testability.
type Pool interface {
	Acquire() (*qrsheet.Sheet, error)
	Release(*qrsheet.Sheet)
	Size() int
}

// Compile-time interface implementation check.
var _ Pool = (*qrsheet.SheetPool)(nil)

// SheetJob is one data source and where its sheet goes.
type SheetJob struct {
	SourcePath string
	OutputPath string
}

// SheetResult holds the outcome of a single sheet.
type SheetResult struct {
	SourcePath string
	OutputPath string
	Entities   int
	Dropped    int
	Err        error
	Duration   time.Duration
}

// runBatch renders one sheet per data source with a shared script.
func runBatch(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseBatchFlags(args, env.Stdout)
	if err != nil {
		return err
	}
	if len(positional) == 0 {
		return ErrNoInput
	}

	cfg, err := resolveConfig(f.common, &f.sheet, env)
	if err != nil {
		return err
	}
	kv, err := openState(cfg)
	if err != nil {
		return err
	}
	script, err := resolveScript(f.script, cfg, kv, nil)
	if err != nil {
		return err
	}

	format := strings.ToLower(cfg.Render.Format)
	jobs := make([]SheetJob, len(positional))
	for i, src := range positional {
		if src == stdinArg {
			return fmt.Errorf("%w: batch reads files, not stdin", ErrUsage)
		}
		jobs[i] = SheetJob{SourcePath: src, OutputPath: outputPathFor(src, f.output, format)}
	}

	log := newLogger(env.Stderr, f.common)
	size := qrsheet.ResolvePoolSize(f.workers)
	log.WithField("size", size).Debug("sheet pool")

	// Sheets share an in-memory state so batch runs leave the saved
	// script alone.
	opts := append(sheetOptions(cfg, log), qrsheet.WithStateStore(qrsheet.NewMemoryState()))
	pool := qrsheet.NewSheetPool(size, opts...)
	defer pool.Close()

	results := renderBatch(ctx, pool, jobs, script, env)
	failed, firstErr := printResults(results, f.common.quiet, f.common.verbose, env)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d sheets: %w", ErrBatchFailed, failed, len(results), firstErr)
	}
	return nil
}

// renderBatch processes jobs concurrently using the sheet pool.
func renderBatch(ctx context.Context, pool Pool, jobs []SheetJob, script string, env *Environment) []SheetResult {
	if len(jobs) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(jobs))

	results := make([]SheetResult, len(jobs))
	var wg sync.WaitGroup
	queue := make(chan int, len(jobs))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			sheet, err := pool.Acquire()
			if err != nil {
				// Sheet creation failed, mark remaining jobs as failed
				for idx := range queue {
					results[idx] = SheetResult{SourcePath: jobs[idx].SourcePath, Err: err}
				}
				return
			}
			defer pool.Release(sheet)

			for idx := range queue {
				if ctx.Err() != nil {
					results[idx] = SheetResult{SourcePath: jobs[idx].SourcePath, Err: ctx.Err()}
					continue
				}
				results[idx] = renderJob(ctx, sheet, jobs[idx], script, env)
			}
		}()
	}

	for i := range jobs {
		queue <- i
	}
	close(queue)

	wg.Wait()
	return results
}

// renderJob previews and exports a single data source.
func renderJob(ctx context.Context, sheet *qrsheet.Sheet, job SheetJob, script string, env *Environment) SheetResult {
	start := env.Now()
	result := SheetResult{SourcePath: job.SourcePath, OutputPath: job.OutputPath}
	finish := func(err error) SheetResult {
		result.Err = err
		result.Duration = env.Now().Sub(start)
		return result
	}

	content, err := os.ReadFile(job.SourcePath) // #nosec G304 -- user-provided path
	if err != nil {
		return finish(fmt.Errorf("%w: %v", ErrReadSource, err))
	}

	tags, err := sheet.Preview(ctx, string(content), script)
	if err != nil {
		return finish(err)
	}
	result.Entities = len(tags)
	result.Dropped = sheet.Dropped()

	data, _, err := sheet.Export(ctx, "")
	if err != nil {
		return finish(err)
	}
	return finish(writeOutput(job.OutputPath, data))
}

// printResults outputs batch results and returns the failure count and
// the first failure.
func printResults(results []SheetResult, quiet, verbose bool, env *Environment) (int, error) {
	var succeeded, failed int
	var firstErr error

	for _, r := range results {
		if r.Err != nil {
			failed++
			if firstErr == nil {
				firstErr = r.Err
			}
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.SourcePath, r.Err)
			continue
		}
		succeeded++

		if quiet {
			continue
		}
		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%d entities, %d dropped, %v)\n",
				r.SourcePath, r.OutputPath, r.Entities, r.Dropped, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", succeeded, failed)
	}

	return failed, firstErr
}
