package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: qrsheet <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  preview    Run the transform script and show the grid")
	fmt.Fprintln(w, "  print      Render the sheet to PNG or PDF")
	fmt.Fprintln(w, "  batch      Render one sheet per data source")
	fmt.Fprintln(w, "  serve      Start the local web editor")
	fmt.Fprintln(w, "  script     Show, set or clear the saved transform script")
	fmt.Fprintln(w, "  doctor     Check the environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'qrsheet help <command>' for details on a specific command.")
}

// printSheetFlags prints the flags shared by sheet commands.
func printSheetFlags(w io.Writer) {
	fmt.Fprintln(w, "Sheet:")
	fmt.Fprintln(w, "  -p, --paper <s>           Paper size: A4, A3, A5, A6, Letter, Legal")
	fmt.Fprintln(w, "      --ppi <n>             Pixels per inch (1-600), also the QR side in pixels")
	fmt.Fprintln(w, "  -n, --columns <n>         Labels per row")
	fmt.Fprintln(w, "      --blank <px>          Unprintable border in pixels")
	fmt.Fprintln(w, "      --remainder <s>       Last partial row: drop or keep")
	fmt.Fprintln(w, "      --level <s>           QR recovery: low, medium, high, highest")
	fmt.Fprintln(w, "      --title <s>           Page title")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "  -b, --backend <s>         native or chrome")
	fmt.Fprintln(w, "  -f, --format <s>          png or pdf")
	fmt.Fprintln(w, "  -t, --timeout <d>         Render timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --asset-path <dir>    Override embedded styles and templates")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --state <path>        Saved script file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timing")
}

// printScriptFlags prints the transform script flags.
func printScriptFlags(w io.Writer) {
	fmt.Fprintln(w, "Script:")
	fmt.Fprintln(w, "  -s, --script <js>         Transform script source")
	fmt.Fprintln(w, "      --script-file <path>  Transform script file")
	fmt.Fprintln(w, "                            Default: saved script, then transform.scriptFile")
	fmt.Fprintln(w)
}

// printPreviewUsage prints usage for the preview command.
func printPreviewUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: qrsheet preview <source> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the transform script over the data source, encode every")
	fmt.Fprintln(w, "qrCode and print the grid rows. The script is saved for next time.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  source    Data source file, or - for stdin")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "      --html <path>         Write the sheet page as HTML")
	fmt.Fprintln(w)
	printScriptFlags(w)
	printSheetFlags(w)
}

// printPrintUsage prints usage for the print command.
func printPrintUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: qrsheet print <source> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Preview the data source, then rasterize the sheet to a file.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  source    Data source file, or - for stdin")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: <source>.<format>)")
	fmt.Fprintln(w, "      --open                Open the file in the browser")
	fmt.Fprintln(w)
	printScriptFlags(w)
	printSheetFlags(w)
}

// printBatchUsage prints usage for the batch command.
func printBatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: qrsheet batch <source>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render one sheet per data source with the same script, in parallel.")
	fmt.Fprintln(w, "The saved script is read but not overwritten.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: next to each source)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel sheets (0 = auto)")
	fmt.Fprintln(w)
	printScriptFlags(w)
	printSheetFlags(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: qrsheet serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Start the web editor. Ctrl+P (Cmd+P on macOS) prints the sheet.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <host:port>    Listen address (default 127.0.0.1:8080)")
	fmt.Fprintln(w)
	printSheetFlags(w)
}

// printScriptUsage prints usage for the script command.
func printScriptUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: qrsheet script <show|set|clear> [flags] [file]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Manage the saved transform script.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Subcommands:")
	fmt.Fprintln(w, "  show          Print the saved script with syntax highlighting")
	fmt.Fprintln(w, "  set <file>    Save the script from a file, or - for stdin")
	fmt.Fprintln(w, "  clear         Forget the saved script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --state <path>        Saved script file")
	fmt.Fprintln(w, "      --no-color            Print without highlighting")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: qrsheet doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome availability, sandbox settings and writable directories.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "preview":
		printPreviewUsage(env.Stdout)
	case "print":
		printPrintUsage(env.Stdout)
	case "batch":
		printBatchUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "script":
		printScriptUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: qrsheet version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: qrsheet help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
