// Package qrsheet turns a data source into a printable sheet of labeled QR
// codes.
//
// # Quick Start
//
// Create a sheet, preview the data, print, and close when done:
//
//	sheet, err := qrsheet.NewSheet(qrsheet.WithColumns(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sheet.Close()
//
//	tags, err := sheet.Preview(ctx, source, `
//	    return JSON.parse(dataSourceString).map(x => ({name: x.n, qrCode: x.q}));
//	`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := sheet.Print(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer res.Release()
//	fmt.Println(res.URL)
//
// # Pipeline
//
//  1. The transform script runs in an embedded JavaScript interpreter as the
//     body of a function taking dataSourceString. It returns an array of
//     {name, qrCode} objects. Only ECMAScript built-ins are reachable.
//  2. Every qrCode payload is encoded concurrently into a square PNG of
//     ppi pixels with no quiet zone. Output order equals input order.
//  3. Tags are packed row-major into a grid with a fixed column count on a
//     page sized from the paper, the resolution and the blank border.
//  4. Print rasterizes the page (pure Go or headless Chrome) and stores
//     the PNG, or a one-page PDF wrapping it, in a BlobStore.
//
// # Configuration
//
//	sheet, err := qrsheet.NewSheet(
//	    qrsheet.WithPaper("Letter"),
//	    qrsheet.WithPPI(300),
//	    qrsheet.WithBlankWidth(20),
//	    qrsheet.WithRemainder(qrsheet.RemainderKeep),
//	    qrsheet.WithBackend(qrsheet.BackendChrome),
//	    qrsheet.WithFormat(qrsheet.FormatPDF),
//	)
//
// With RemainderDrop, the default, entities beyond the last full row are
// not rendered. Sheet.Dropped reports how many.
//
// # Errors
//
// Failures wrap sentinel errors matched with errors.Is: ErrTransform for
// script problems, ErrEncoding for QR problems and ErrRasterUnavailable
// when there is nothing to capture. Preview never changes the current tags
// on failure.
//
// # Parallel Processing
//
// For batch runs, SheetPool manages several sheets:
//
//	pool := qrsheet.NewSheetPool(qrsheet.ResolvePoolSize(0))
//	defer pool.Close()
//
//	sheet, err := pool.Acquire()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Release(sheet)
package qrsheet
