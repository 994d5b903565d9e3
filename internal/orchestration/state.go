package orchestration

// State is a step of a comparison run. States are visited strictly in
// declaration order; a failure ends the run.
type State int

const (
	StateNormalizing State = iota
	StateInstallingTool
	StateBuildingControl
	StateBuildingExperiment
	StateStartingControlServer
	StateStartingExperimentServer
	StateComparing
	StateTerminatingServers
	StateDone
)

var stateNames = [...]string{
	StateNormalizing:              "Normalizing",
	StateInstallingTool:           "InstallingTool",
	StateBuildingControl:          "BuildingControl",
	StateBuildingExperiment:       "BuildingExperiment",
	StateStartingControlServer:    "StartingControlServer",
	StateStartingExperimentServer: "StartingExperimentServer",
	StateComparing:                "Comparing",
	StateTerminatingServers:       "TerminatingServers",
	StateDone:                     "Done",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}
