package config

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/mandelpart/internal/errors"
)

// FileConfig is the YAML form of the configuration. Pointer fields tell an
// omitted key apart from an explicit zero.
type FileConfig struct {
	Procs       *int    `yaml:"procs"`
	Strategy    *string `yaml:"strategy"`
	Granularity *int    `yaml:"granularity"`
	OutputDir   *string `yaml:"output_dir"`
	Palette     *string `yaml:"palette"`
	NoRender    *bool   `yaml:"no_render"`
	Print       *bool   `yaml:"print"`
	MetricsFile *string `yaml:"metrics_file"`
	Timeout     *string `yaml:"timeout"`
	Quiet       *bool   `yaml:"quiet"`
	Verbose     *bool   `yaml:"verbose"`
	NoColor     *bool   `yaml:"no_color"`
	LogLevel    *string `yaml:"log_level"`

	timeout time.Duration
}

// LoadFile reads and strictly decodes a YAML configuration file. Unknown
// keys are rejected.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigError("reading config file: %v", err)
	}
	return ParseFile(data)
}

// ParseFile decodes YAML configuration bytes.
func ParseFile(data []byte) (*FileConfig, error) {
	var fc FileConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, apperrors.NewConfigError("parsing config file: %v", err)
	}
	if fc.Timeout != nil {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return nil, apperrors.NewConfigError("parsing config file: invalid timeout %q", *fc.Timeout)
		}
		fc.timeout = d
	}
	return &fc, nil
}

// applyTo copies every key present in the file onto cfg, unless the
// matching flag was set on the command line.
func (fc *FileConfig) applyTo(cfg *AppConfig, fs *flag.FlagSet) {
	set := func(flags ...string) bool { return !isFlagSetAny(fs, flags...) }

	if fc.Procs != nil && set("np", "procs") {
		cfg.Procs = *fc.Procs
	}
	if fc.Strategy != nil && set("strategy") {
		cfg.Strategy = *fc.Strategy
	}
	if fc.Granularity != nil && set("granularity") {
		cfg.Granularity = *fc.Granularity
	}
	if fc.OutputDir != nil && set("output-dir") {
		cfg.OutputDir = *fc.OutputDir
	}
	if fc.NoRender != nil && set("no-render") {
		cfg.NoRender = *fc.NoRender
	}
	if fc.Print != nil && set("print") {
		cfg.Print = *fc.Print
	}
	if fc.MetricsFile != nil && set("metrics-file") {
		cfg.MetricsFile = *fc.MetricsFile
	}
	if fc.Timeout != nil && set("timeout") {
		cfg.Timeout = fc.timeout
	}
	if fc.Quiet != nil && set("quiet", "q") {
		cfg.Quiet = *fc.Quiet
	}
	if fc.Verbose != nil && set("verbose", "v") {
		cfg.Verbose = *fc.Verbose
	}
	if fc.NoColor != nil && set("no-color") {
		cfg.NoColor = *fc.NoColor
	}
	if fc.LogLevel != nil && set("log-level") {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.Palette != nil && set("palette") {
		cfg.Palette = *fc.Palette
	}
}
