// This file holds the MANDELPART_* environment variable overrides.

package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// isFlagSet reports whether the named flag was set on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny reports whether any of the aliases was set.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride maps an environment key (without EnvPrefix) to the flag
// aliases it shadows and the function applying its value.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string)
}

// envOverrides lists every supported variable. Unparseable values are
// ignored and the lower-priority value is kept.
var envOverrides = []envOverride{
	{"PROCS", []string{"np", "procs"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.Procs = parsed
		}
	}},
	{"GRANULARITY", []string{"granularity"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.Granularity = parsed
		}
	}},

	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.Timeout = parsed
		}
	}},

	{"STRATEGY", []string{"strategy"}, func(c *AppConfig, v string) { c.Strategy = v }},
	{"OUTPUT_DIR", []string{"output-dir"}, func(c *AppConfig, v string) { c.OutputDir = v }},
	{"METRICS_FILE", []string{"metrics-file"}, func(c *AppConfig, v string) { c.MetricsFile = v }},
	{"LOG_LEVEL", []string{"log-level"}, func(c *AppConfig, v string) { c.LogLevel = v }},
	{"PALETTE", []string{"palette"}, func(c *AppConfig, v string) { c.Palette = v }},

	{"NO_RENDER", []string{"no-render"}, func(c *AppConfig, v string) {
		c.NoRender = parseBoolEnv(v, c.NoRender)
	}},
	{"PRINT", []string{"print"}, func(c *AppConfig, v string) {
		c.Print = parseBoolEnv(v, c.Print)
	}},
	{"QUIET", []string{"quiet", "q"}, func(c *AppConfig, v string) {
		c.Quiet = parseBoolEnv(v, c.Quiet)
	}},
	{"VERBOSE", []string{"verbose", "v"}, func(c *AppConfig, v string) {
		c.Verbose = parseBoolEnv(v, c.Verbose)
	}},
	{"NO_COLOR", []string{"no-color"}, func(c *AppConfig, v string) {
		c.NoColor = parseBoolEnv(v, c.NoColor)
	}},
}

// parseBoolEnv accepts "true", "1", "yes" and "false", "0", "no" in any
// case, returning defaultVal for anything else.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyEnvOverrides applies MANDELPART_* values for every flag that was not
// set explicitly on the command line.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			o.apply(config, val)
		}
	}
}
