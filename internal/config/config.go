// Package config loads simplelisp.yaml, the optional settings file for the
// command line tool.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/log"
	"gopkg.in/yaml.v3"

	"simplelisp/internal/runtime"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "simplelisp.yaml"

// EnvVar names the environment variable that may point at a config file.
const EnvVar = "SIMPLELISP_CONFIG"

// Output modes for program output.
const (
	OutputStdout = "stdout"
	OutputLog    = "log"
)

// MaxCallDepthLimit is the largest accepted max_call_depth. Deeper nesting
// would exhaust the goroutine stack before the evaluator can report it.
const MaxCallDepthLimit = runtime.MaxCallDepthLimit

// Config holds the tool settings.
type Config struct {
	Path string `yaml:"-"`

	MaxCallDepth int    `yaml:"max_call_depth"`
	LogLevel     string `yaml:"log_level"`
	Output       string `yaml:"output"`
	Repl         Repl   `yaml:"repl"`
}

// Repl holds interactive-mode settings.
type Repl struct {
	Prompt      string `yaml:"prompt"`
	HistoryFile string `yaml:"history_file"`
}

// Default returns the settings used when no file is found.
func Default() *Config {
	return &Config{
		MaxCallDepth: runtime.DefaultMaxCallDepth,
		LogLevel:     "info",
		Output:       OutputStdout,
		Repl: Repl{
			Prompt:      "sl> ",
			HistoryFile: "~/.simplelisp_history",
		},
	}
}

// ValidationError aggregates every invalid setting found in a file.
type ValidationError struct {
	Path   string
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "config %s is invalid:", e.Path)
	for _, issue := range e.Issues {
		b.WriteString("\n  - ")
		b.WriteString(issue)
	}
	return b.String()
}

// Resolve picks the config file to use: explicit wins, then $SIMPLELISP_CONFIG,
// then ./simplelisp.yaml if it exists. An empty result means defaults only.
func Resolve(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvVar); env != "" {
		return env
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile
	}
	return ""
}

// Load reads path and returns the settings with defaults filled in. An
// empty path returns Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		log.LogVf("no config file, using defaults")
		cfg.Repl.HistoryFile = expandHome(cfg.Repl.HistoryFile)
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	cfg, err = Parse(f)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			verr.Path = path
		}
		return nil, err
	}
	cfg.Path = path
	log.Infof("loaded config %s", path)
	return cfg, nil
}

// Parse decodes YAML from r on top of Default() and validates the result.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Repl.HistoryFile = expandHome(cfg.Repl.HistoryFile)
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var issues []string
	if c.MaxCallDepth <= 0 {
		issues = append(issues, fmt.Sprintf("max_call_depth must be positive, got %d", c.MaxCallDepth))
	} else if c.MaxCallDepth > MaxCallDepthLimit {
		issues = append(issues, fmt.Sprintf("max_call_depth must be at most %d, got %d", MaxCallDepthLimit, c.MaxCallDepth))
	}
	if _, err := log.ValidateLevel(c.LogLevel); err != nil {
		issues = append(issues, fmt.Sprintf("log_level %q is not a known level", c.LogLevel))
	}
	switch c.Output {
	case OutputStdout, OutputLog:
	default:
		issues = append(issues, fmt.Sprintf("output must be %q or %q, got %q", OutputStdout, OutputLog, c.Output))
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("cannot expand %s: %v", path, err)
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
