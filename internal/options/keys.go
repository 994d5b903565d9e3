package options

// Key names one of the recognized options. The key text doubles as the
// command-line flag name and the config file key.
type Key string

const (
	UseYarn                Key = "use-yarn"
	ControlSHA             Key = "control-sha"
	ExperimentSHA          Key = "experiment-sha"
	BuildControl           Key = "build-control"
	BuildExperiment        Key = "build-experiment"
	ControlDist            Key = "control-dist"
	ExperimentDist         Key = "experiment-dist"
	ControlBuildCommand    Key = "control-build-command"
	ExperimentBuildCommand Key = "experiment-build-command"
	ControlServeCommand    Key = "control-serve-command"
	ExperimentServeCommand Key = "experiment-serve-command"
	ControlURL             Key = "control-url"
	ExperimentURL          Key = "experiment-url"
	Fidelity               Key = "fidelity"
	Markers                Key = "markers"
	RuntimeStats           Key = "runtime-stats"
	Report                 Key = "report"
	Headless               Key = "headless"
	RegressionThreshold    Key = "regression-threshold"
)

// Spec describes a recognized option.
type Spec struct {
	Key   Key
	Kind  Kind
	Usage string
}

// specs lists every option in normalization order.
var specs = []Spec{
	{UseYarn, KindBool, "install dependencies and the tool with yarn instead of npm"},
	{ControlSHA, KindString, "revision to build as control (default: origin/master)"},
	{ExperimentSHA, KindString, "revision to build as experiment (default: HEAD)"},
	{BuildControl, KindBool, "build the control variant (false reuses an existing dist)"},
	{BuildExperiment, KindBool, "build the experiment variant (false reuses an existing dist)"},
	{ControlDist, KindString, "output directory of the control build"},
	{ExperimentDist, KindString, "output directory of the experiment build"},
	{ControlBuildCommand, KindString, "shell command that builds control"},
	{ExperimentBuildCommand, KindString, "shell command that builds experiment"},
	{ControlServeCommand, KindString, "shell command that serves control"},
	{ExperimentServeCommand, KindString, "shell command that serves experiment"},
	{ControlURL, KindString, "URL of the control server"},
	{ExperimentURL, KindString, "URL of the experiment server"},
	{Fidelity, KindString, "tracerbench sampling fidelity (test, low, medium, high or a count)"},
	{Markers, KindString, "tracerbench performance markers"},
	{RuntimeStats, KindBool, "collect runtime stats during the comparison"},
	{Report, KindBool, "generate the tracerbench report"},
	{Headless, KindBool, "run the browser headless"},
	{RegressionThreshold, KindInt, "regression threshold in percent"},
}

var specByKey = func() map[Key]Spec {
	m := make(map[Key]Spec, len(specs))
	for _, s := range specs {
		m[s.Key] = s
	}
	return m
}()

// Specs returns every recognized option in normalization order.
func Specs() []Spec {
	out := make([]Spec, len(specs))
	copy(out, specs)
	return out
}

// Lookup returns the spec of a recognized key.
func Lookup(key Key) (Spec, bool) {
	s, ok := specByKey[key]
	return s, ok
}
