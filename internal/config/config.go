// Package config turns command-line flags, MANDELPART_* environment
// variables and an optional YAML file into an AppConfig.
//
// Priority, highest first: flags, environment, YAML file, defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/mandelpart/internal/errors"
	"github.com/agbru/mandelpart/internal/render"
)

// EnvPrefix prefixes every environment variable the configuration reads.
const EnvPrefix = "MANDELPART_"

const (
	// DefaultProcs is the number of ranks when none is configured.
	DefaultProcs = 4
	// DefaultStrategy runs every strategy and compares them.
	DefaultStrategy = "all"
	// DefaultGranularity is the number of rows per dynamic task.
	DefaultGranularity = 1
	// DefaultTimeout bounds a whole run.
	DefaultTimeout = 5 * time.Minute
	// DefaultLogLevel keeps rank chatter out of the terminal.
	DefaultLogLevel = "warn"
	// DefaultPalette colours images with a gradient.
	DefaultPalette = "color"
	// MaxProcs caps the rank count. Every rank is a goroutine with its own
	// inbox, and beyond this the grid rows run out long before the ranks do.
	MaxProcs = 4096
)

// AppConfig is the complete configuration of one invocation.
type AppConfig struct {
	Height int
	Width  int

	// Procs is the number of ranks, coordinator included. 0 picks one per
	// logical CPU.
	Procs       int
	Strategy    string
	Granularity int

	OutputDir   string
	Palette     string
	NoRender    bool
	Print       bool
	MetricsFile string

	Timeout  time.Duration
	Quiet    bool
	Verbose  bool
	NoColor  bool
	LogLevel string

	ConfigFile  string
	Completion  string
	ShowVersion bool
}

// Validate checks the semantic validity of the configuration.
func (c AppConfig) Validate(availableStrategies []string) error {
	if c.Completion != "" || c.ShowVersion {
		return nil
	}
	if c.Height <= 0 {
		return apperrors.NewConfigError("height must be a positive integer, got %d", c.Height)
	}
	if c.Width <= 0 {
		return apperrors.NewConfigError("width must be a positive integer, got %d", c.Width)
	}
	if c.Procs < 0 {
		return apperrors.NewConfigError("process count must not be negative, got %d", c.Procs)
	}
	if c.Procs > MaxProcs {
		return apperrors.NewConfigError("process count must be at most %d, got %d", MaxProcs, c.Procs)
	}
	if c.Granularity < 1 {
		return apperrors.NewConfigError("granularity must be at least 1, got %d", c.Granularity)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout must be positive, got %s", c.Timeout)
	}
	if c.Quiet && c.Verbose {
		return apperrors.NewConfigError("--quiet and --verbose are mutually exclusive")
	}
	if !slices.Contains(render.PaletteNames(), c.Palette) {
		return apperrors.NewConfigError("unknown palette %q (available: %s)",
			c.Palette, strings.Join(render.PaletteNames(), ", "))
	}
	if c.Strategy != DefaultStrategy && !slices.Contains(availableStrategies, c.Strategy) {
		return apperrors.NewConfigError("unknown strategy %q (available: %s, %s)",
			c.Strategy, strings.Join(availableStrategies, ", "), DefaultStrategy)
	}
	return nil
}

// Strategies resolves the Strategy field into the names to run.
func (c AppConfig) Strategies(available []string) []string {
	if c.Strategy == DefaultStrategy {
		return append([]string(nil), available...)
	}
	return []string{c.Strategy}
}

// ParseConfig parses args (without the program name) into an AppConfig.
// Flags may appear before, between or after the two positional dimensions.
// Usage problems are reported on errorWriter and returned as
// apperrors.ConfigError; -h returns flag.ErrHelp.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableStrategies []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	fs.Usage = func() {
		fmt.Fprintf(errorWriter, "Usage: %s [flags] <height> <width>\n\n", programName)
		fmt.Fprintf(errorWriter, "Computes a <height> x <width> Mandelbrot grid across message-passing ranks.\n\nFlags:\n")
		fs.PrintDefaults()
	}

	config := AppConfig{}
	fs.IntVar(&config.Procs, "np", DefaultProcs, "Number of ranks including the coordinator (0 = one per CPU).")
	fs.IntVar(&config.Procs, "procs", DefaultProcs, "Number of ranks (alias for -np).")
	fs.StringVar(&config.Strategy, "strategy", DefaultStrategy,
		fmt.Sprintf("Strategy to run: %s or %s.", strings.Join(availableStrategies, ", "), DefaultStrategy))
	fs.IntVar(&config.Granularity, "granularity", DefaultGranularity, "Rows per task for the master/worker strategy.")
	fs.StringVar(&config.OutputDir, "output-dir", ".", "Directory for the rendered PNG files.")
	fs.StringVar(&config.Palette, "palette", DefaultPalette,
		fmt.Sprintf("Image palette: %s.", strings.Join(render.PaletteNames(), ", ")))
	fs.BoolVar(&config.NoRender, "no-render", false, "Skip writing PNG files.")
	fs.BoolVar(&config.Print, "print", false, "Print the iteration matrix to standard output.")
	fs.StringVar(&config.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit.")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum duration of the whole run.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Quiet mode: one summary line per strategy.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&config.Verbose, "verbose", false, "Show per-rank load, latency and memory details.")
	fs.BoolVar(&config.Verbose, "v", false, "Verbose output (shorthand).")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level: debug, info, warn, error.")
	fs.StringVar(&config.ConfigFile, "config", "", "YAML configuration file.")
	fs.StringVar(&config.Completion, "completion", "", "Print a completion script for bash, zsh, fish or powershell.")
	fs.BoolVar(&config.ShowVersion, "version", false, "Show version information.")
	fs.BoolVar(&config.ShowVersion, "V", false, "Show version information (shorthand).")

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return config, err
		}
		return config, apperrors.NewConfigError("%v", err)
	}

	if config.ConfigFile == "" && !isFlagSet(fs, "config") {
		config.ConfigFile = os.Getenv(EnvPrefix + "CONFIG")
	}
	if config.ConfigFile != "" {
		file, err := LoadFile(config.ConfigFile)
		if err != nil {
			return config, err
		}
		file.applyTo(&config, fs)
	}
	applyEnvOverrides(&config, fs)

	if config.Completion == "" && !config.ShowVersion {
		if err := parseDimensions(&config, positional); err != nil {
			fmt.Fprintf(errorWriter, "Error: %v\n", err)
			fs.Usage()
			return config, err
		}
	}

	if err := config.Validate(availableStrategies); err != nil {
		fmt.Fprintf(errorWriter, "Error: %v\n", err)
		return config, err
	}
	return ApplyAdaptiveProcs(config), nil
}

// parseInterspersed parses flags wherever they appear and returns the
// remaining positional arguments in order. A lone "--" ends flag parsing.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		// flag stops at "--" and drops it, so everything after a
		// terminator is positional.
		if len(args) > len(rest) && args[len(args)-len(rest)-1] == "--" {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

func parseDimensions(config *AppConfig, positional []string) error {
	if len(positional) != 2 {
		return apperrors.NewConfigError("expected <height> <width>, got %d argument(s)", len(positional))
	}
	dims := [2]*int{&config.Height, &config.Width}
	for i, name := range []string{"height", "width"} {
		v, err := strconv.Atoi(positional[i])
		if err != nil || v <= 0 {
			return apperrors.NewConfigError("%s must be a positive integer, got %q", name, positional[i])
		}
		*dims[i] = v
	}
	return nil
}
