package main

import (
	"os"
	"path/filepath"
	"testing"

	"simplelisp/internal/config"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunExitCodes(t *testing.T) {
	t.Setenv(config.EnvVar, "")

	ok := writeTemp(t, "ok.sl", "fn main() { return 1 + 2 }\n")
	syntax := writeTemp(t, "syntax.sl", "let x = 1\n")
	fault := writeTemp(t, "fault.sl", "fn main() { return [1][3] }\n")
	noMain := writeTemp(t, "nomain.sl", "fn helper() { }\n")
	redefined := writeTemp(t, "redefined.sl", "fn main() { return 1 }\nfn main() { return 2 }\n")

	tests := []struct {
		name     string
		args     []string
		expected int
	}{
		{"no args", nil, 1},
		{"bad flag", []string{"-nope"}, 2},
		{"run", []string{"run", ok}, 0},
		{"bare file", []string{ok}, 0},
		{"run missing arg", []string{"run"}, 1},
		{"unknown command", []string{"frobnicate", ok}, 1},
		{"parse error", []string{"run", syntax}, 1},
		{"runtime fault", []string{"run", fault}, 1},
		{"missing main", []string{"run", noMain}, 1},
		{"redefinition only warns", []string{"run", redefined}, 0},
		{"tokens", []string{"tokens", ok}, 0},
		{"tokens json", []string{"tokens", ok, "-json"}, 0},
		{"parse", []string{"parse", ok}, 0},
		{"parse reports errors", []string{"parse", syntax}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(tt.args); got != tt.expected {
				t.Errorf("run(%v) = %d, want %d", tt.args, got, tt.expected)
			}
		})
	}
}

func TestRunUsesConfiguredDepth(t *testing.T) {
	t.Setenv(config.EnvVar, "")

	prog := writeTemp(t, "deep.sl", `
fn down(n) {
    if n == 0 { return 0 }
    return down(n - 1)
}
fn main() { return down(100) }
`)
	shallow := writeTemp(t, "shallow.yaml", "max_call_depth: 20\n")
	roomy := writeTemp(t, "roomy.yaml", "max_call_depth: 500\noutput: log\n")

	if got := run([]string{"-config", shallow, "run", prog}); got != 1 {
		t.Errorf("expected stack overflow exit 1 with depth 20, got %d", got)
	}
	if got := run([]string{"-config", roomy, "run", prog}); got != 0 {
		t.Errorf("expected success with depth 500, got %d", got)
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	bad := writeTemp(t, "bad.yaml", "max_call_depth: -1\n")
	prog := writeTemp(t, "ok.sl", "fn main() { }\n")
	if got := run([]string{"-config", bad, prog}); got != 1 {
		t.Errorf("expected exit 1 for invalid config, got %d", got)
	}
}
