package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"

	"github.com/alnah/go-qrsheet"
)

// Terminal highlighting settings for script show.
const (
	scriptLexer     = "javascript"
	scriptFormatter = "terminal256"
	scriptStyle     = "monokai"
)

// runScript shows, sets or clears the saved transform script.
func runScript(args []string, env *Environment) error {
	if len(args) == 0 {
		printScriptUsage(env.Stderr)
		return fmt.Errorf("%w: script needs show, set or clear", ErrUsage)
	}
	sub := args[0]
	if sub == "-h" || sub == "--help" {
		printScriptUsage(env.Stdout)
		return nil
	}

	f, positional, err := parseScriptFlags(args[1:], env.Stdout)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(f.common, nil, env)
	if err != nil {
		return err
	}
	if f.state != "" {
		cfg.State.Path = f.state
	}
	kv, err := openState(cfg)
	if err != nil {
		return err
	}

	switch sub {
	case "show":
		script, ok, err := kv.Get(qrsheet.ScriptKey)
		if err != nil {
			return err
		}
		if !ok {
			if !f.common.quiet {
				fmt.Fprintf(env.Stderr, "no saved script in %s\n", kv.Path())
			}
			return nil
		}
		return showScript(env.Stdout, script, f.noColor || os.Getenv("NO_COLOR") != "")

	case "set":
		if len(positional) == 0 {
			return fmt.Errorf("%w: script set needs a file or -", ErrUsage)
		}
		script, err := readScriptFile(positional[0], env.Stdin)
		if err != nil {
			return err
		}
		if err := kv.Set(qrsheet.ScriptKey, script); err != nil {
			return err
		}
		if !f.common.quiet {
			fmt.Fprintf(env.Stdout, "Saved script to %s\n", kv.Path())
		}
		return nil

	case "clear":
		if err := kv.Delete(qrsheet.ScriptKey); err != nil {
			return err
		}
		if !f.common.quiet {
			fmt.Fprintf(env.Stdout, "Cleared saved script in %s\n", kv.Path())
		}
		return nil
	}

	printScriptUsage(env.Stderr)
	return fmt.Errorf("%w: unknown script subcommand %q", ErrUsage, sub)
}

// showScript writes script, highlighted unless plain is set.
func showScript(w io.Writer, script string, plain bool) error {
	if !strings.HasSuffix(script, "\n") {
		script += "\n"
	}
	if plain {
		_, err := io.WriteString(w, script)
		return err
	}
	return quick.Highlight(w, script, scriptLexer, scriptFormatter, scriptStyle)
}
