package domain

import "fmt"

// SystemState identifies one phase of the IG process lifecycle.
type SystemState int

const (
	// StateNone means no state has been entered yet, or Quit has been left.
	StateNone SystemState = iota
	StateInit
	StateBlackboardPost
	StateBlackboardRetrieve
	StateConfigurationLoad
	StateConfigurationProcess
	StateDatabaseLoad
	StateReset
	StateStandby
	StateOperate
	StateDebug
	StateShutdown
	StateQuit
)

var stateNames = map[SystemState]string{
	StateNone:                 "none",
	StateInit:                 "init",
	StateBlackboardPost:       "blackboard_post",
	StateBlackboardRetrieve:   "blackboard_retrieve",
	StateConfigurationLoad:    "configuration_load",
	StateConfigurationProcess: "configuration_process",
	StateDatabaseLoad:         "database_load",
	StateReset:                "reset",
	StateStandby:              "standby",
	StateOperate:              "operate",
	StateDebug:                "debug",
	StateShutdown:             "shutdown",
	StateQuit:                 "quit",
}

// String returns the stable name used in logs and metric labels.
func (s SystemState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// AllStates lists every real state in traversal order (StateNone excluded).
func AllStates() []SystemState {
	return []SystemState{
		StateInit,
		StateBlackboardPost,
		StateBlackboardRetrieve,
		StateConfigurationLoad,
		StateConfigurationProcess,
		StateDatabaseLoad,
		StateReset,
		StateStandby,
		StateOperate,
		StateDebug,
		StateShutdown,
		StateQuit,
	}
}

// IGMode is the CIGI IG mode, as commanded by the Host in IG Control and
// reported back in Start-Of-Frame.
type IGMode uint8

const (
	IGModeReset              IGMode = 0 // CIGI "Reset/Standby"
	IGModeOperate            IGMode = 1
	IGModeDebug              IGMode = 2
	IGModeOfflineMaintenance IGMode = 3 // SOF only

	// IGModeStandby shares the wire value of IGModeReset.
	IGModeStandby = IGModeReset
)

func (m IGMode) String() string {
	switch m {
	case IGModeReset:
		return "reset_standby"
	case IGModeOperate:
		return "operate"
	case IGModeDebug:
		return "debug"
	case IGModeOfflineMaintenance:
		return "offline_maintenance"
	default:
		return fmt.Sprintf("igmode(%d)", uint8(m))
	}
}

// StateContext holds the variables that drive state transitions.
//
// DatabaseLoadRequested and DatabaseLoadComplete are edge-triggered: they are
// set by their producers and cleared only by the state machine when it takes
// the transition they cause.
type StateContext struct {
	// CommandedIGMode is the mode last commanded by the Host.
	CommandedIGMode IGMode

	// DatabaseLoadRequested is set when the Host commands a new database.
	DatabaseLoadRequested bool

	// DatabaseLoadComplete is set by the database loader when loading finishes.
	DatabaseLoadComplete bool

	UserRequestedQuit  bool
	UserRequestedDebug bool
}

// NewStateContext returns a context with the Host mode at Reset/Standby.
func NewStateContext() *StateContext {
	return &StateContext{CommandedIGMode: IGModeReset}
}

// Status is a point-in-time snapshot of the kernel, published for monitoring.
type Status struct {
	State                   string `json:"state"`
	IGMode                  string `json:"ig_mode"`
	Frame                   uint32 `json:"frame"`
	CommandedIGMode         string `json:"commanded_ig_mode"`
	LoadedDatabaseNumber    int8   `json:"loaded_database_number"`
	ReportedDatabaseNumber  int8   `json:"reported_database_number"`
	CommandedDatabaseNumber int8   `json:"commanded_database_number"`
}
