package options

import (
	"sort"
	"time"

	apperrors "github.com/agbru/abcompare/internal/errors"
)

// Preset is a named set of literal defaults. The reachability budget rides
// along because it differs between presets but is not a user option.
type Preset struct {
	Name string

	// ControlRef and ExperimentRef are resolved to short SHAs when the
	// corresponding -sha option is absent.
	ControlRef    string
	ExperimentRef string

	ControlPort    int
	ExperimentPort int
	// Instrument appends ?tracerbench=true to the default URLs.
	Instrument bool

	Fidelity            string
	Markers             string
	RuntimeStats        bool
	Report              bool
	Headless            bool
	RegressionThreshold int

	WaitAttempts int
	WaitInterval time.Duration
}

// Port returns the serve port of v.
func (p Preset) Port(v Variant) int {
	if v == Experiment {
		return p.ExperimentPort
	}
	return p.ControlPort
}

// WaitBudget is the total sleep time the reachability loop may spend.
func (p Preset) WaitBudget() time.Duration {
	if p.WaitAttempts <= 1 {
		return 0
	}
	return time.Duration(p.WaitAttempts-1) * p.WaitInterval
}

// CIPreset is the canonical default set, used by unattended runs.
var CIPreset = Preset{
	Name:                "ci",
	ControlRef:          "origin/master",
	ExperimentRef:       "HEAD",
	ControlPort:         4200,
	ExperimentPort:      4201,
	Instrument:          true,
	Fidelity:            "low",
	Markers:             "domComplete",
	RuntimeStats:        false,
	Report:              true,
	Headless:            true,
	RegressionThreshold: 50,
	WaitAttempts:        600,
	WaitInterval:        200 * time.Millisecond,
}

// InteractivePreset targets a developer watching the browser: higher
// fidelity, a visible browser and a longer startup budget.
var InteractivePreset = Preset{
	Name:                "interactive",
	ControlRef:          "origin/master",
	ExperimentRef:       "HEAD",
	ControlPort:         4200,
	ExperimentPort:      4201,
	Instrument:          true,
	Fidelity:            "high",
	Markers:             "domComplete",
	RuntimeStats:        false,
	Report:              true,
	Headless:            false,
	RegressionThreshold: 50,
	WaitAttempts:        300,
	WaitInterval:        time.Second,
}

var presets = map[string]Preset{
	CIPreset.Name:          CIPreset,
	InteractivePreset.Name: InteractivePreset,
}

// PresetByName returns the named preset. An empty name selects CIPreset.
func PresetByName(name string) (Preset, error) {
	if name == "" {
		return CIPreset, nil
	}
	p, ok := presets[name]
	if !ok {
		return Preset{}, apperrors.NewConfigError("unknown preset %q (available: %v)", name, PresetNames())
	}
	return p, nil
}

// PresetNames lists the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
