package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"fortio.org/log"
	"github.com/chzyer/readline"

	"simplelisp/internal/config"
	"simplelisp/internal/diag"
	"simplelisp/internal/lexer"
	"simplelisp/internal/parser"
	"simplelisp/internal/runtime"
)

// ---- ANSI colors ----

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// ---- repl command ----

func cmdRepl(cfg *config.Config) int {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            colorGreen + cfg.Repl.Prompt + colorReset,
		HistoryFile:       cfg.Repl.HistoryFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		log.Errf("readline init failed: %v", err)
		return 1
	}
	defer rl.Close()

	fmt.Fprintf(rl.Stdout(), "%s%ssimplelisp REPL%s %s(type 'exit' or Ctrl+D to quit, :funcs and :vars to inspect)%s\n\n",
		colorBold, colorCyan, colorReset, colorGray, colorReset)

	session := runtime.NewSession(runtime.WriterOutput(rl.Stdout()), runtime.WithMaxCallDepth(cfg.MaxCallDepth))
	var accumulated strings.Builder
	braceDepth := 0

	for {
		if braceDepth > 0 {
			rl.SetPrompt(colorGray + "...   " + colorReset)
		} else {
			rl.SetPrompt(colorGreen + cfg.Repl.Prompt + colorReset)
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if braceDepth > 0 {
					// cancel multi-line input
					accumulated.Reset()
					braceDepth = 0
					continue
				}
				fmt.Fprintf(rl.Stdout(), "%s(use 'exit' or Ctrl+D to quit)%s\n", colorGray, colorReset)
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(rl.Stdout())
			}
			break
		}

		if braceDepth == 0 {
			switch strings.TrimSpace(line) {
			case "exit":
				return 0
			case ":funcs":
				fmt.Fprintln(rl.Stdout(), strings.Join(session.Funcs(), " "))
				continue
			case ":vars":
				fmt.Fprintln(rl.Stdout(), strings.Join(session.Vars(), " "))
				continue
			}
		}

		braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
		accumulated.WriteString(line)
		accumulated.WriteString("\n")
		if braceDepth > 0 {
			continue
		}
		braceDepth = 0

		source := accumulated.String()
		accumulated.Reset()
		if strings.TrimSpace(source) == "" {
			continue
		}

		evalLine(rl, session, source)
	}
	return 0
}

func evalLine(rl *readline.Instance, session *runtime.Session, source string) {
	l := lexer.New(source, "<repl>")
	tokens, lexDiags := l.Tokenize()
	if lexDiags.HasErrors() {
		printDiagsColored(rl.Stderr(), lexDiags)
		return
	}

	p := parser.New(tokens)
	snip, parseDiags := p.ParseSnippet()
	if parseDiags.HasErrors() {
		printDiagsColored(rl.Stderr(), parseDiags)
		return
	}

	result, err := session.Eval(snip)
	if err != nil {
		fmt.Fprintf(rl.Stderr(), "%serror: %s%s\n", colorRed, err, colorReset)
		return
	}
	if _, isVoid := result.(runtime.VoidVal); !isVoid {
		fmt.Fprintln(rl.Stdout(), runtime.Debug(result))
	}
}

// printDiagsColored prints diagnostics in red for REPL display.
func printDiagsColored(w io.Writer, diags diag.List) {
	for _, d := range diags {
		fmt.Fprintf(w, "%s%s%s\n", colorRed, d.String(), colorReset)
	}
}
