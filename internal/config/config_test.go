package config

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
	"time"

	apperrors "github.com/agbru/mandelpart/internal/errors"
)

var strategies = []string{"block", "cyclic", "mw"}

func parse(t *testing.T, args ...string) (AppConfig, error) {
	t.Helper()
	var stderr bytes.Buffer
	return ParseConfig("mandelpart", args, &stderr, strategies)
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := parse(t, "600", "800")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Height != 600 || cfg.Width != 800 {
		t.Errorf("dimensions = %dx%d, want 600x800", cfg.Height, cfg.Width)
	}
	if cfg.Procs != DefaultProcs {
		t.Errorf("Procs = %d, want %d", cfg.Procs, DefaultProcs)
	}
	if cfg.Strategy != DefaultStrategy || cfg.Granularity != DefaultGranularity {
		t.Errorf("Strategy/Granularity = %q/%d", cfg.Strategy, cfg.Granularity)
	}
	if cfg.Timeout != DefaultTimeout || cfg.OutputDir != "." {
		t.Errorf("Timeout/OutputDir = %s/%q", cfg.Timeout, cfg.OutputDir)
	}
}

func TestParseConfigInterspersedFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"flags first", []string{"-np", "3", "--strategy", "cyclic", "10", "20"}},
		{"flags between", []string{"10", "-np", "3", "20", "--strategy=cyclic"}},
		{"flags last", []string{"10", "20", "--procs=3", "-strategy", "cyclic"}},
		{"terminator", []string{"-np", "3", "-strategy", "cyclic", "--", "10", "20"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parse(t, tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Height != 10 || cfg.Width != 20 || cfg.Procs != 3 || cfg.Strategy != "cyclic" {
				t.Errorf("got %+v", cfg)
			}
		})
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing width", []string{"10"}},
		{"too many", []string{"10", "20", "30"}},
		{"zero height", []string{"0", "20"}},
		{"non numeric", []string{"ten", "20"}},
		{"negative procs", []string{"-np", "-1", "10", "20"}},
		{"too many procs", []string{"-np", "4097", "10", "20"}},
		{"unknown palette", []string{"--palette", "sepia", "10", "20"}},
		{"zero granularity", []string{"--granularity", "0", "10", "20"}},
		{"unknown strategy", []string{"--strategy", "spiral", "10", "20"}},
		{"quiet and verbose", []string{"-q", "-v", "10", "20"}},
		{"unknown flag", []string{"--fast", "10", "20"}},
		{"bad timeout", []string{"--timeout", "0s", "10", "20"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.args...)
			var cfgErr apperrors.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error = %v, want ConfigError", err)
			}
			if apperrors.ExitCode(err) != apperrors.ExitErrorConfig {
				t.Errorf("exit code = %d, want %d", apperrors.ExitCode(err), apperrors.ExitErrorConfig)
			}
		})
	}
}

func TestParseConfigHelp(t *testing.T) {
	var stderr bytes.Buffer
	_, err := ParseConfig("mandelpart", []string{"-h"}, &stderr, strategies)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("error = %v, want flag.ErrHelp", err)
	}
	if !bytes.Contains(stderr.Bytes(), []byte("Usage: mandelpart [flags] <height> <width>")) {
		t.Errorf("usage not printed: %q", stderr.String())
	}
}

func TestParseConfigVersionAndCompletionSkipDimensions(t *testing.T) {
	for _, args := range [][]string{{"--version"}, {"-V"}, {"--completion", "bash"}} {
		if _, err := parse(t, args...); err != nil {
			t.Errorf("%v: unexpected error: %v", args, err)
		}
	}
}

func TestParseConfigAutoProcs(t *testing.T) {
	cfg, err := parse(t, "-np", "0", "4", "4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := EstimateProcs(runtime.NumCPU()); cfg.Procs != want {
		t.Errorf("Procs = %d, want %d", cfg.Procs, want)
	}
}

func TestEstimateProcs(t *testing.T) {
	tests := []struct{ cpus, want int }{{0, 2}, {1, 2}, {2, 2}, {8, 8}, {MaxProcs + 1, MaxProcs}}
	for _, tt := range tests {
		if got := EstimateProcs(tt.cpus); got != tt.want {
			t.Errorf("EstimateProcs(%d) = %d, want %d", tt.cpus, got, tt.want)
		}
	}
}

func TestParseConfigProcsCeiling(t *testing.T) {
	cfg, err := parse(t, "-np", strconv.Itoa(MaxProcs), "4", "4")
	if err != nil || cfg.Procs != MaxProcs {
		t.Fatalf("-np %d: cfg.Procs = %d, err = %v", MaxProcs, cfg.Procs, err)
	}

	t.Setenv(EnvPrefix+"PROCS", strconv.Itoa(MaxProcs+1))
	if _, err := parse(t, "4", "4"); apperrors.ExitCode(err) != apperrors.ExitErrorConfig {
		t.Errorf("env rank count above the ceiling: err = %v", err)
	}
}

func TestPalette(t *testing.T) {
	cfg, err := parse(t, "4", "4")
	if err != nil || cfg.Palette != DefaultPalette {
		t.Fatalf("default palette = %q, err = %v", cfg.Palette, err)
	}

	t.Setenv(EnvPrefix+"PALETTE", "gray")
	cfg, err = parse(t, "4", "4")
	if err != nil || cfg.Palette != "gray" {
		t.Errorf("env palette = %q, err = %v", cfg.Palette, err)
	}

	cfg, err = parse(t, "--palette", "color", "4", "4")
	if err != nil || cfg.Palette != "color" {
		t.Errorf("flag must win over env, palette = %q, err = %v", cfg.Palette, err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvPrefix+"PROCS", "7")
	t.Setenv(EnvPrefix+"STRATEGY", "mw")
	t.Setenv(EnvPrefix+"GRANULARITY", "5")
	t.Setenv(EnvPrefix+"TIMEOUT", "30s")
	t.Setenv(EnvPrefix+"NO_RENDER", "yes")
	t.Setenv(EnvPrefix+"VERBOSE", "garbage")

	cfg, err := parse(t, "--granularity", "2", "10", "10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Procs != 7 || cfg.Strategy != "mw" || cfg.Timeout != 30*time.Second || !cfg.NoRender {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.Granularity != 2 {
		t.Errorf("Granularity = %d, flag must win over env", cfg.Granularity)
	}
	if cfg.Verbose {
		t.Error("unrecognized boolean must keep the default")
	}
}

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		in   string
		def  bool
		want bool
	}{
		{"TRUE", false, true}, {"1", false, true}, {"yes", false, true},
		{"False", true, false}, {"0", true, false}, {"no", true, false},
		{"maybe", true, true}, {"", false, false},
	}
	for _, tt := range tests {
		if got := parseBoolEnv(tt.in, tt.def); got != tt.want {
			t.Errorf("parseBoolEnv(%q, %v) = %v, want %v", tt.in, tt.def, got, tt.want)
		}
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mandelpart.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigFilePriority(t *testing.T) {
	path := writeConfig(t, "procs: 6\nstrategy: cyclic\ngranularity: 3\ntimeout: 1m\nno_color: true\n")
	t.Setenv(EnvPrefix+"STRATEGY", "block")

	cfg, err := parse(t, "--config", path, "--granularity", "9", "10", "10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Procs != 6 || !cfg.NoColor || cfg.Timeout != time.Minute {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Strategy != "block" {
		t.Errorf("Strategy = %q, env must win over file", cfg.Strategy)
	}
	if cfg.Granularity != 9 {
		t.Errorf("Granularity = %d, flag must win over file", cfg.Granularity)
	}
}

func TestConfigFileFromEnv(t *testing.T) {
	t.Setenv(EnvPrefix+"CONFIG", writeConfig(t, "print: true\n"))
	cfg, err := parse(t, "10", "10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Print {
		t.Error("config file named by the environment was not loaded")
	}
}

func TestParseFile(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		fc, err := ParseFile(nil)
		if err != nil || fc.Procs != nil {
			t.Errorf("ParseFile(nil) = %+v, %v", fc, err)
		}
	})
	t.Run("unknown key", func(t *testing.T) {
		_, err := ParseFile([]byte("threads: 4\n"))
		var cfgErr apperrors.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("error = %v, want ConfigError", err)
		}
	})
	t.Run("bad timeout", func(t *testing.T) {
		if _, err := ParseFile([]byte("timeout: soon\n")); err == nil {
			t.Error("expected an error")
		}
	})
	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestStrategies(t *testing.T) {
	all := AppConfig{Strategy: DefaultStrategy}.Strategies(strategies)
	if len(all) != 3 {
		t.Errorf("Strategies(all) = %v", all)
	}
	one := AppConfig{Strategy: "cyclic"}.Strategies(strategies)
	if len(one) != 1 || one[0] != "cyclic" {
		t.Errorf("Strategies(cyclic) = %v", one)
	}
}
