package runtime

import "github.com/aretw0/igkernel/pkg/domain"

// Next evaluates the transition table for current against sc.
//
// It works on a copy of the context and returns the copy with any consumed
// request flags cleared, so the table can be tested without an Engine.
// Conditions are checked in priority order (quit, then mode change, then
// load request); the first match wins. A state with no matching condition
// returns itself. Quit returns StateNone.
func Next(current domain.SystemState, sc domain.StateContext) (domain.SystemState, domain.StateContext) {
	switch current {
	case domain.StateNone:
		return domain.StateInit, sc
	case domain.StateInit:
		return domain.StateBlackboardPost, sc
	case domain.StateBlackboardPost:
		return domain.StateBlackboardRetrieve, sc
	case domain.StateBlackboardRetrieve:
		return domain.StateConfigurationLoad, sc
	case domain.StateConfigurationLoad:
		return domain.StateConfigurationProcess, sc
	case domain.StateConfigurationProcess:
		return domain.StateReset, sc
	case domain.StateReset:
		return domain.StateStandby, sc
	case domain.StateShutdown:
		return domain.StateQuit, sc
	case domain.StateQuit:
		return domain.StateNone, sc

	case domain.StateDatabaseLoad:
		switch {
		case sc.UserRequestedQuit:
			return domain.StateShutdown, sc
		case sc.DatabaseLoadComplete:
			sc.DatabaseLoadComplete = false
			if sc.CommandedIGMode == domain.IGModeDebug {
				return domain.StateDebug, sc
			}
			return domain.StateOperate, sc
		}

	case domain.StateStandby:
		switch {
		case sc.UserRequestedQuit:
			return domain.StateShutdown, sc
		case sc.CommandedIGMode == domain.IGModeOperate:
			return domain.StateOperate, sc
		case sc.CommandedIGMode == domain.IGModeDebug:
			return domain.StateDebug, sc
		case sc.UserRequestedDebug:
			sc.CommandedIGMode = domain.IGModeDebug
			return domain.StateDebug, sc
		}

	case domain.StateOperate, domain.StateDebug:
		switch {
		case sc.UserRequestedQuit:
			return domain.StateShutdown, sc
		case sc.CommandedIGMode == domain.IGModeReset:
			return domain.StateReset, sc
		case sc.DatabaseLoadRequested:
			sc.DatabaseLoadRequested = false
			return domain.StateDatabaseLoad, sc
		case current == domain.StateOperate && sc.CommandedIGMode == domain.IGModeDebug:
			return domain.StateDebug, sc
		case current == domain.StateDebug && sc.CommandedIGMode == domain.IGModeOperate:
			return domain.StateOperate, sc
		}
	}
	return current, sc
}
