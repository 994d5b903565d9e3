package options

// Variant is one of the two builds under comparison.
type Variant string

const (
	// Control is the baseline build.
	Control Variant = "control"
	// Experiment is the candidate build.
	Experiment Variant = "experiment"
)

// Variants lists both variants in build and start order.
var Variants = []Variant{Control, Experiment}

func (v Variant) String() string { return string(v) }

func (v Variant) SHAKey() Key          { return Key(string(v) + "-sha") }
func (v Variant) DistKey() Key         { return Key(string(v) + "-dist") }
func (v Variant) BuildCommandKey() Key { return Key(string(v) + "-build-command") }
func (v Variant) ServeCommandKey() Key { return Key(string(v) + "-serve-command") }
func (v Variant) URLKey() Key          { return Key(string(v) + "-url") }
func (v Variant) BuildFlagKey() Key    { return Key("build-" + string(v)) }
