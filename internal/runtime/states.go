package runtime

import "github.com/aretw0/igkernel/pkg/domain"

// Info is the static behavior of one SystemState.
type Info struct {
	ID domain.SystemState
	// IGMode is the mode reported in Start-Of-Frame while in this state.
	IGMode domain.IGMode
	// ShouldSendSOF is false while the IG is not yet (or no longer) talking CIGI.
	ShouldSendSOF bool
	// ShouldIgnoreNonIGCtrl restricts decoding to IG Control packets.
	ShouldIgnoreNonIGCtrl bool
}

var stateTable = map[domain.SystemState]Info{
	domain.StateNone:                 {domain.StateNone, domain.IGModeReset, false, true},
	domain.StateInit:                 {domain.StateInit, domain.IGModeReset, false, true},
	domain.StateBlackboardPost:       {domain.StateBlackboardPost, domain.IGModeReset, false, true},
	domain.StateBlackboardRetrieve:   {domain.StateBlackboardRetrieve, domain.IGModeReset, false, true},
	domain.StateConfigurationLoad:    {domain.StateConfigurationLoad, domain.IGModeReset, false, true},
	domain.StateConfigurationProcess: {domain.StateConfigurationProcess, domain.IGModeReset, false, true},
	domain.StateDatabaseLoad:         {domain.StateDatabaseLoad, domain.IGModeOperate, true, true},
	domain.StateReset:                {domain.StateReset, domain.IGModeReset, true, true},
	domain.StateStandby:              {domain.StateStandby, domain.IGModeStandby, true, true},
	domain.StateOperate:              {domain.StateOperate, domain.IGModeOperate, true, false},
	domain.StateDebug:                {domain.StateDebug, domain.IGModeDebug, true, false},
	domain.StateShutdown:             {domain.StateShutdown, domain.IGModeOfflineMaintenance, false, true},
	domain.StateQuit:                 {domain.StateQuit, domain.IGModeOfflineMaintenance, false, true},
}

// Lookup returns the static behavior of s. Unknown values behave like StateNone.
func Lookup(s domain.SystemState) Info {
	if info, ok := stateTable[s]; ok {
		return info
	}
	return stateTable[domain.StateNone]
}
