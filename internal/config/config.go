// Package config assembles the settings of a run from command-line flags,
// ABCOMPARE_* environment variables and an optional YAML file.
package config

import (
	"time"

	"github.com/spf13/pflag"

	apperrors "github.com/agbru/abcompare/internal/errors"
	"github.com/agbru/abcompare/internal/logging"
	"github.com/agbru/abcompare/internal/options"
	"github.com/agbru/abcompare/internal/orchestration"
	"github.com/agbru/abcompare/internal/runner"
)

// EnvPrefix prefixes every environment variable read by the application.
const EnvPrefix = "ABCOMPARE_"

// AppConfig aggregates the ambient settings of the application together
// with the partial comparison options supplied by the user.
type AppConfig struct {
	// Preset names the default set used for absent options.
	Preset string
	// ConfigFile is an optional YAML file of options.
	ConfigFile string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// LogFormat is console or json.
	LogFormat string
	// NoColor disables styled output.
	NoColor bool
	// Verbose streams server output to the console.
	Verbose bool
	// MetricsFile, when set, receives the run metrics in text format.
	MetricsFile string
	// WorkDir is the repository the commands run in.
	WorkDir string
	// ToolPackage is the benchmarking tool package to install.
	ToolPackage string
	// GracePeriod separates SIGTERM from SIGKILL when stopping processes.
	GracePeriod time.Duration

	// Options holds the options that were explicitly supplied. Absent keys
	// are filled in by normalization.
	Options options.Config
}

// Defaults returns the ambient defaults.
func Defaults() AppConfig {
	return AppConfig{
		Preset:      options.CIPreset.Name,
		LogLevel:    "info",
		LogFormat:   string(logging.FormatConsole),
		ToolPackage: orchestration.DefaultToolPackage,
		GracePeriod: runner.DefaultGracePeriod,
		Options:     options.Config{},
	}
}

// RegisterFlags declares the ambient flags bound to cfg and one flag per
// comparison option. Option flags only count when set explicitly.
func RegisterFlags(fs *pflag.FlagSet, cfg *AppConfig) {
	fs.StringVar(&cfg.Preset, "preset", cfg.Preset, "default set for absent options (ci, interactive)")
	fs.StringVarP(&cfg.ConfigFile, "config", "c", cfg.ConfigFile, "YAML file of options")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (console, json)")
	fs.BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "disable colored output")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "stream server output to the console")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "write run metrics to this file in Prometheus text format")
	fs.StringVarP(&cfg.WorkDir, "workdir", "C", cfg.WorkDir, "repository to run in (default: current directory)")
	fs.StringVar(&cfg.ToolPackage, "tool-package", cfg.ToolPackage, "benchmarking tool package to install")
	fs.DurationVar(&cfg.GracePeriod, "grace-period", cfg.GracePeriod, "time between SIGTERM and SIGKILL when stopping processes")

	for _, s := range options.Specs() {
		name := string(s.Key)
		switch s.Kind {
		case options.KindBool:
			fs.Bool(name, false, s.Usage)
		case options.KindInt:
			fs.Int(name, 0, s.Usage)
		default:
			fs.String(name, "", s.Usage)
		}
	}
}

// Resolve completes cfg after fs has been parsed. Options are layered with
// flags first, then environment variables, then the config file.
func Resolve(fs *pflag.FlagSet, cfg *AppConfig) error {
	applyEnvOverrides(cfg, fs)
	if err := cfg.validate(); err != nil {
		return err
	}

	partial := options.Config{}
	if cfg.ConfigFile != "" {
		fromFile, err := LoadFile(cfg.ConfigFile)
		if err != nil {
			return err
		}
		for k, v := range fromFile {
			partial[k] = v
		}
	}

	fromEnv, err := optionsFromEnv(fs)
	if err != nil {
		return err
	}
	for k, v := range fromEnv {
		partial[k] = v
	}

	fromFlags, err := optionsFromFlags(fs)
	if err != nil {
		return err
	}
	for k, v := range fromFlags {
		partial[k] = v
	}

	cfg.Options = partial
	return nil
}

// PresetDefaults returns the preset selected by c.
func (c AppConfig) PresetDefaults() (options.Preset, error) {
	return options.PresetByName(c.Preset)
}

func (c AppConfig) validate() error {
	if _, err := options.PresetByName(c.Preset); err != nil {
		return err
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return apperrors.NewConfigError("invalid log level %q (debug, info, warn, error)", c.LogLevel)
	}
	switch logging.Format(c.LogFormat) {
	case logging.FormatConsole, logging.FormatJSON:
	default:
		return apperrors.NewConfigError("invalid log format %q (console, json)", c.LogFormat)
	}
	if c.GracePeriod <= 0 {
		return apperrors.NewConfigError("grace period must be positive, got %s", c.GracePeriod)
	}
	return nil
}

// optionsFromFlags collects the option flags that were set explicitly.
func optionsFromFlags(fs *pflag.FlagSet) (options.Config, error) {
	out := options.Config{}
	for _, s := range options.Specs() {
		name := string(s.Key)
		if !fs.Changed(name) {
			continue
		}
		var (
			v   options.Value
			err error
		)
		switch s.Kind {
		case options.KindBool:
			var b bool
			b, err = fs.GetBool(name)
			v = options.BoolValue(b)
		case options.KindInt:
			var n int
			n, err = fs.GetInt(name)
			v = options.IntValue(n)
		default:
			var str string
			str, err = fs.GetString(name)
			v = options.StringValue(str)
		}
		if err != nil {
			return nil, apperrors.NewConfigError("--%s: %v", name, err)
		}
		out[s.Key] = v
	}
	return out, nil
}
