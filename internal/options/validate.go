package options

import (
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/agbru/abcompare/internal/errors"
)

var fidelityNames = map[string]bool{"test": true, "low": true, "medium": true, "high": true}

// Validate checks a normalized Config before anything is built. It reports
// the first problem as a ConfigError.
func Validate(c Config) error {
	if missing := c.Missing(); len(missing) > 0 {
		return apperrors.NewConfigError("options not set: %v", missing)
	}
	for _, v := range Variants {
		if c.Bool(v.BuildFlagKey()) {
			if strings.TrimSpace(c.String(v.SHAKey())) == "" {
				return apperrors.NewConfigError("%s is empty but %s is true", v.SHAKey(), v.BuildFlagKey())
			}
			if strings.TrimSpace(c.String(v.BuildCommandKey())) == "" {
				return apperrors.NewConfigError("%s is empty", v.BuildCommandKey())
			}
		}
		if strings.TrimSpace(c.String(v.ServeCommandKey())) == "" {
			return apperrors.NewConfigError("%s is empty", v.ServeCommandKey())
		}
		if err := validateURL(v.URLKey(), c.String(v.URLKey())); err != nil {
			return err
		}
	}
	if c.String(ControlURL) == c.String(ExperimentURL) {
		return apperrors.NewConfigError("control-url and experiment-url must differ, both are %q", c.String(ControlURL))
	}
	if f := c.String(Fidelity); !fidelityNames[f] {
		if n, err := strconv.Atoi(f); err != nil || n <= 0 {
			return apperrors.NewConfigError("fidelity %q must be test, low, medium, high or a positive sample count", f)
		}
	}
	if n := c.Int(RegressionThreshold); n < 0 {
		return apperrors.NewConfigError("regression-threshold must not be negative, got %d", n)
	}
	return nil
}

func validateURL(key Key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return apperrors.NewConfigError("%s: %v", key, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperrors.NewConfigError("%s must be an absolute http(s) URL, got %q", key, raw)
	}
	return nil
}
