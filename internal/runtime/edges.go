package runtime

import "github.com/aretw0/igkernel/pkg/domain"

// Edge documents one transition of the state machine for diagrams.
type Edge struct {
	From      domain.SystemState
	To        domain.SystemState
	Condition string
	// When is a context under which Next takes this edge.
	When domain.StateContext
}

var (
	quit     = domain.StateContext{UserRequestedQuit: true}
	operate  = domain.StateContext{CommandedIGMode: domain.IGModeOperate}
	debug    = domain.StateContext{CommandedIGMode: domain.IGModeDebug}
	reset    = domain.StateContext{CommandedIGMode: domain.IGModeReset}
	userDbg  = domain.StateContext{UserRequestedDebug: true}
	loadReq  = domain.StateContext{CommandedIGMode: domain.IGModeOperate, DatabaseLoadRequested: true}
	loadDone = domain.StateContext{CommandedIGMode: domain.IGModeOperate, DatabaseLoadComplete: true}
)

var edges = []Edge{
	{domain.StateNone, domain.StateInit, "", domain.StateContext{}},
	{domain.StateInit, domain.StateBlackboardPost, "", domain.StateContext{}},
	{domain.StateBlackboardPost, domain.StateBlackboardRetrieve, "", domain.StateContext{}},
	{domain.StateBlackboardRetrieve, domain.StateConfigurationLoad, "", domain.StateContext{}},
	{domain.StateConfigurationLoad, domain.StateConfigurationProcess, "", domain.StateContext{}},
	{domain.StateConfigurationProcess, domain.StateReset, "", domain.StateContext{}},
	{domain.StateReset, domain.StateStandby, "", domain.StateContext{}},

	{domain.StateStandby, domain.StateShutdown, "quit", quit},
	{domain.StateStandby, domain.StateOperate, "mode operate", operate},
	{domain.StateStandby, domain.StateDebug, "mode debug", debug},
	{domain.StateStandby, domain.StateDebug, "user debug", userDbg},

	{domain.StateOperate, domain.StateShutdown, "quit", quit},
	{domain.StateOperate, domain.StateReset, "mode reset", reset},
	{domain.StateOperate, domain.StateDatabaseLoad, "load requested", loadReq},
	{domain.StateOperate, domain.StateDebug, "mode debug", debug},

	{domain.StateDebug, domain.StateShutdown, "quit", quit},
	{domain.StateDebug, domain.StateReset, "mode reset", reset},
	{domain.StateDebug, domain.StateDatabaseLoad, "load requested", loadReq},
	{domain.StateDebug, domain.StateOperate, "mode operate", operate},

	{domain.StateDatabaseLoad, domain.StateShutdown, "quit", quit},
	{domain.StateDatabaseLoad, domain.StateOperate, "load complete", loadDone},
	{domain.StateDatabaseLoad, domain.StateDebug, "load complete in debug",
		domain.StateContext{CommandedIGMode: domain.IGModeDebug, DatabaseLoadComplete: true}},

	{domain.StateShutdown, domain.StateQuit, "", domain.StateContext{}},
}

// Edges lists every transition Next can take, in priority order per state.
// The returned slice is a copy.
func Edges() []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}
