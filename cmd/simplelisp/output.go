package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"fortio.org/log"

	"simplelisp/internal/ast"
	"simplelisp/internal/config"
	"simplelisp/internal/diag"
	"simplelisp/internal/runtime"
	"simplelisp/internal/token"
)

// programOutput returns the channel print/println write to and a flush
// function that must run before the process exits.
func programOutput(cfg *config.Config) (runtime.Output, func()) {
	if cfg.Output == config.OutputLog {
		lo := &runtime.LineOutput{Emit: func(line string) { log.Infof("%s", line) }}
		return lo, lo.Flush
	}
	w := bufio.NewWriter(os.Stdout)
	return runtime.WriterOutput(w), func() {
		if err := w.Flush(); err != nil {
			log.Errf("flushing output: %v", err)
		}
	}
}

// ---- JSON helpers ----

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "error: JSON encoding failed: %v\n", err)
		os.Exit(1)
	}
}

func astToMap(file *ast.File) map[string]interface{} {
	if file == nil {
		return nil
	}
	return ast.NodeToMap(file)
}

// ---- diagnostics ----

func printDiagsText(diags diag.List) {
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.String())
	}
}

func diagsToSlice(diags diag.List) []map[string]interface{} {
	result := make([]map[string]interface{}, len(diags))
	for i, d := range diags {
		result[i] = map[string]interface{}{
			"code":     d.Code,
			"severity": d.Severity.String(),
			"message":  d.Message,
			"line":     d.Span.Start.Line,
			"column":   d.Span.Start.Column,
			"offset":   d.Span.Start.Offset,
		}
		if d.Hint != "" {
			result[i]["hint"] = d.Hint
		}
	}
	return result
}

// ---- tokens ----

func printTokensText(tokens []token.Token, diags diag.List) {
	for _, tok := range tokens {
		fmt.Printf("%-12s %-20s %d:%d\n", tok.Kind, tok.Lexeme, tok.Span.Start.Line, tok.Span.Start.Column)
	}
	printDiagsText(diags)
}

func printTokensJSON(tokens []token.Token, diags diag.List) {
	type tokenJSON struct {
		Kind   string `json:"kind"`
		Lexeme string `json:"lexeme"`
		Line   int    `json:"line"`
		Column int    `json:"column"`
		Offset int    `json:"offset"`
	}

	toks := make([]tokenJSON, 0, len(tokens))
	for _, tok := range tokens {
		toks = append(toks, tokenJSON{
			Kind:   tok.Kind.String(),
			Lexeme: tok.Lexeme,
			Line:   tok.Span.Start.Line,
			Column: tok.Span.Start.Column,
			Offset: tok.Span.Start.Offset,
		})
	}

	printJSON(map[string]interface{}{
		"tokens":      toks,
		"diagnostics": diagsToSlice(diags),
	})
}
