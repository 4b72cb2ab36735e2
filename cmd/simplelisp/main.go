// Command simplelisp runs simplelisp programs.
//
// Usage:
//
//	simplelisp [flags] <file>               Run a source file
//	simplelisp [flags] run    <file>        Run a source file
//	simplelisp [flags] tokens <file> [-json] Print tokens
//	simplelisp [flags] parse  <file>        Print AST as JSON
//	simplelisp [flags] repl                 Start interactive REPL
//
// Flags:
//
//	-config <path>    settings file (default $SIMPLELISP_CONFIG or ./simplelisp.yaml)
//	-loglevel <level> override log_level from the settings file
package main

import (
	"flag"
	"fmt"
	"os"

	"fortio.org/log"

	"simplelisp/internal/config"
	"simplelisp/internal/lexer"
	"simplelisp/internal/parser"
	"simplelisp/internal/runtime"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("simplelisp", flag.ContinueOnError)
	fs.Usage = func() { usage(fs) }
	configPath := fs.String("config", "", "settings file")
	logLevel := fs.String("loglevel", "", "log level (debug, verbose, info, warning, error)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(config.Resolve(*configPath))
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := log.SetLogLevelStr(cfg.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 2
	}

	rest := fs.Args()
	if len(rest) == 0 {
		usage(fs)
		return 1
	}

	switch rest[0] {
	case "tokens":
		file, ok := fileArg(rest)
		if !ok {
			return 1
		}
		return cmdTokens(readFile(file), file, hasFlag(rest[2:], "-json", "--json"))
	case "parse":
		file, ok := fileArg(rest)
		if !ok {
			return 1
		}
		return cmdParse(readFile(file), file)
	case "run":
		file, ok := fileArg(rest)
		if !ok {
			return 1
		}
		return cmdRun(readFile(file), file, cfg)
	case "repl":
		return cmdRepl(cfg)
	default:
		if len(rest) > 1 {
			fmt.Fprintf(os.Stderr, "error: unknown command '%s'\n", rest[0])
			usage(fs)
			return 1
		}
		return cmdRun(readFile(rest[0]), rest[0], cfg)
	}
}

func usage(fs *flag.FlagSet) {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  simplelisp [flags] <file>               Run a source file")
	fmt.Fprintln(os.Stderr, "  simplelisp [flags] run    <file>        Run a source file")
	fmt.Fprintln(os.Stderr, "  simplelisp [flags] tokens <file> [-json] Tokenize and print tokens")
	fmt.Fprintln(os.Stderr, "  simplelisp [flags] parse  <file>        Parse and print AST (JSON)")
	fmt.Fprintln(os.Stderr, "  simplelisp [flags] repl                 Start interactive REPL")
	fmt.Fprintln(os.Stderr, "Flags:")
	fs.PrintDefaults()
}

func fileArg(args []string) (string, bool) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "error: missing file argument")
		return "", false
	}
	return args[1], true
}

func readFile(filename string) string {
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot read file %s: %v\n", filename, err)
		os.Exit(1)
	}
	return string(source)
}

func hasFlag(args []string, names ...string) bool {
	for _, arg := range args {
		for _, name := range names {
			if arg == name {
				return true
			}
		}
	}
	return false
}

// ---- tokens command ----

func cmdTokens(source, filename string, jsonMode bool) int {
	l := lexer.New(source, filename)
	tokens, diags := l.Tokenize()

	if jsonMode {
		printTokensJSON(tokens, diags)
	} else {
		printTokensText(tokens, diags)
	}
	if diags.HasErrors() {
		return 1
	}
	return 0
}

// ---- parse command ----

func cmdParse(source, filename string) int {
	l := lexer.New(source, filename)
	tokens, lexDiags := l.Tokenize()

	p := parser.New(tokens)
	file, parseDiags := p.ParseFile()

	allDiags := append(lexDiags, parseDiags...)
	printJSON(map[string]interface{}{
		"ast":         astToMap(file),
		"diagnostics": diagsToSlice(allDiags),
	})
	if allDiags.HasErrors() {
		return 1
	}
	return 0
}

// ---- run command ----

func cmdRun(source, filename string, cfg *config.Config) int {
	l := lexer.New(source, filename)
	tokens, lexDiags := l.Tokenize()
	if lexDiags.HasErrors() {
		printDiagsText(lexDiags)
		return 1
	}

	p := parser.New(tokens)
	file, parseDiags := p.ParseFile()
	printDiagsText(parseDiags)
	if parseDiags.HasErrors() {
		return 1
	}

	out, flush := programOutput(cfg)
	defer flush()

	interp := runtime.NewInterpreter(out, runtime.WithMaxCallDepth(cfg.MaxCallDepth))
	result, err := interp.Run(file)
	if err != nil {
		flush()
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	log.LogVf("%s: main returned %s", filename, runtime.Debug(result))
	return 0
}
