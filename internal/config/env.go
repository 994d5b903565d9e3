// This file contains environment variable utilities for configuration override.

package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	apperrors "github.com/agbru/abcompare/internal/errors"
	"github.com/agbru/abcompare/internal/options"
)

// ─────────────────────────────────────────────────────────────────────────────
// Environment Variable Utilities
// ─────────────────────────────────────────────────────────────────────────────

// EnvKey returns the environment variable name for an option or flag name,
// e.g. control-sha becomes ABCOMPARE_CONTROL_SHA.
func EnvKey(name string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
// This is useful for aliased flags where either the short or long form may be used.
func isFlagSetAny(fs *pflag.FlagSet, names ...string) bool {
	for _, name := range names {
		if fs.Changed(name) {
			return true
		}
	}
	return false
}

// envOverride declares a single environment variable override.
// Each entry maps an env key (without the ABCOMPARE_ prefix) to the CLI flag
// name(s) it corresponds to and a function that applies the env value.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string)
}

// envOverrides is the declarative table of ambient environment overrides.
// Option overrides are derived from options.Specs in optionsFromEnv.
var envOverrides = []envOverride{
	// String overrides
	{"PRESET", []string{"preset"}, func(c *AppConfig, v string) {
		c.Preset = v
	}},
	{"CONFIG", []string{"config"}, func(c *AppConfig, v string) {
		c.ConfigFile = v
	}},
	{"LOG_LEVEL", []string{"log-level"}, func(c *AppConfig, v string) {
		c.LogLevel = strings.ToLower(v)
	}},
	{"LOG_FORMAT", []string{"log-format"}, func(c *AppConfig, v string) {
		c.LogFormat = strings.ToLower(v)
	}},
	{"METRICS_FILE", []string{"metrics-file"}, func(c *AppConfig, v string) {
		c.MetricsFile = v
	}},
	{"WORKDIR", []string{"workdir"}, func(c *AppConfig, v string) {
		c.WorkDir = v
	}},
	{"TOOL_PACKAGE", []string{"tool-package"}, func(c *AppConfig, v string) {
		c.ToolPackage = v
	}},

	// Duration overrides
	{"GRACE_PERIOD", []string{"grace-period"}, func(c *AppConfig, v string) {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.GracePeriod = parsed
		}
	}},

	// Boolean overrides
	{"NO_COLOR", []string{"no-color"}, func(c *AppConfig, v string) {
		c.NoColor = parseBoolEnv(v, c.NoColor)
	}},
	{"VERBOSE", []string{"verbose"}, func(c *AppConfig, v string) {
		c.Verbose = parseBoolEnv(v, c.Verbose)
	}},
}

// parseBoolEnv parses a boolean environment variable value.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
// Returns defaultVal if the value is not recognized.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyEnvOverrides applies environment variable values to the ambient
// configuration for any flags that were not explicitly set on the command
// line. This implements the priority: CLI flags > Environment variables > Defaults.
//
// Supported environment variables (all prefixed with ABCOMPARE_):
//   - PRESET, CONFIG, LOG_LEVEL, LOG_FORMAT, METRICS_FILE, WORKDIR,
//     TOOL_PACKAGE, GRACE_PERIOD, NO_COLOR, VERBOSE
func applyEnvOverrides(config *AppConfig, fs *pflag.FlagSet) {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			o.apply(config, val)
		}
	}
}

// optionsFromEnv reads ABCOMPARE_<KEY> for every option whose flag was not
// set. Unlike ambient overrides, a value that does not parse is an error.
func optionsFromEnv(fs *pflag.FlagSet) (options.Config, error) {
	out := options.Config{}
	for _, s := range options.Specs() {
		if isFlagSetAny(fs, string(s.Key)) {
			continue
		}
		name := EnvKey(string(s.Key))
		raw, ok := os.LookupEnv(name)
		if !ok || raw == "" {
			continue
		}
		v, err := options.ParseValue(s.Kind, raw)
		if err != nil {
			return nil, apperrors.NewConfigError("%s: %v", name, err)
		}
		out[s.Key] = v
	}
	return out, nil
}
