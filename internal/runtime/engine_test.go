package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/igkernel/internal/runtime"
	"github.com/aretw0/igkernel/pkg/blackboard"
	"github.com/aretw0/igkernel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlugins struct {
	acted  []domain.SystemState
	closed int
	actErr error
	onAct  func(domain.SystemState, *domain.StateContext)
}

func (f *fakePlugins) Act(_ context.Context, state domain.SystemState, sc *domain.StateContext) error {
	f.acted = append(f.acted, state)
	if f.onAct != nil {
		f.onAct(state, sc)
	}
	return f.actErr
}

func (f *fakePlugins) Close(context.Context) error {
	f.closed++
	return nil
}

func actN(t *testing.T, e *runtime.Engine, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, e.Act(context.Background()))
	}
}

func TestEngine_StartupOrder(t *testing.T) {
	plugins := &fakePlugins{}
	e := runtime.NewEngine(domain.NewStateContext(), plugins)

	assert.Equal(t, domain.StateNone, e.State())
	assert.True(t, e.ShouldIgnoreNonIGCtrl())
	assert.False(t, e.ShouldSendSOF())

	actN(t, e, 10)

	assert.Equal(t, []domain.SystemState{
		domain.StateInit,
		domain.StateBlackboardPost,
		domain.StateBlackboardRetrieve,
		domain.StateConfigurationLoad,
		domain.StateConfigurationProcess,
		domain.StateReset,
		domain.StateStandby,
		domain.StateStandby,
		domain.StateStandby,
		domain.StateStandby,
	}, plugins.acted)
	assert.Equal(t, domain.StateStandby, e.State())
	assert.False(t, e.ShouldExit())
}

func TestEngine_DatabaseLoadRequestConsumedOnce(t *testing.T) {
	sc := domain.NewStateContext()
	plugins := &fakePlugins{}
	e := runtime.NewEngine(sc, plugins)
	actN(t, e, 7) // Standby

	sc.CommandedIGMode = domain.IGModeOperate
	actN(t, e, 1)
	require.Equal(t, domain.StateOperate, e.State())

	var seenDuringAction []bool
	plugins.onAct = func(_ domain.SystemState, sc *domain.StateContext) {
		seenDuringAction = append(seenDuringAction, sc.DatabaseLoadRequested)
	}

	sc.DatabaseLoadRequested = true
	actN(t, e, 1)
	assert.Equal(t, domain.StateDatabaseLoad, e.State())
	assert.False(t, sc.DatabaseLoadRequested, "request is cleared when the transition is taken")
	assert.Equal(t, []bool{false}, seenDuringAction)

	// No load completion yet: stays in DatabaseLoad.
	actN(t, e, 2)
	assert.Equal(t, domain.StateDatabaseLoad, e.State())

	sc.DatabaseLoadComplete = true
	actN(t, e, 1)
	assert.Equal(t, domain.StateOperate, e.State())
	assert.False(t, sc.DatabaseLoadComplete)

	// Exactly one DatabaseLoad entry was caused by the single request.
	actN(t, e, 3)
	assert.Equal(t, domain.StateOperate, e.State())
}

func TestEngine_QuitBeatsReset(t *testing.T) {
	sc := domain.NewStateContext()
	e := runtime.NewEngine(sc, &fakePlugins{})
	actN(t, e, 7)
	sc.CommandedIGMode = domain.IGModeOperate
	actN(t, e, 1)
	require.Equal(t, domain.StateOperate, e.State())

	sc.UserRequestedQuit = true
	sc.CommandedIGMode = domain.IGModeReset
	actN(t, e, 1)
	assert.Equal(t, domain.StateShutdown, e.State())
}

func TestEngine_TerminalState(t *testing.T) {
	sc := domain.NewStateContext()
	plugins := &fakePlugins{}
	e := runtime.NewEngine(sc, plugins)
	actN(t, e, 7)

	sc.UserRequestedQuit = true
	actN(t, e, 1)
	require.Equal(t, domain.StateShutdown, e.State())
	assert.False(t, e.ShouldExit())

	actN(t, e, 1)
	assert.Equal(t, domain.StateQuit, e.State())
	assert.True(t, e.ShouldExit())
	assert.Equal(t, 1, plugins.closed, "Quit tears plugins down explicitly")
	assert.NotContains(t, plugins.acted, domain.StateQuit, "Quit does not invoke plugin Act")

	err := e.Act(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, domain.StateNone, e.State())

	err = e.Act(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, 1, plugins.closed)
}

func TestEngine_BlackboardLockedAfterPost(t *testing.T) {
	bb := blackboard.New()
	plugins := &fakePlugins{}
	plugins.onAct = func(state domain.SystemState, _ *domain.StateContext) {
		if state == domain.StateBlackboardPost {
			assert.NoError(t, bb.Put("plugin.handle", 1))
		}
	}
	e := runtime.NewEngine(nil, plugins, runtime.WithBlackboard(bb))

	actN(t, e, 1) // Init
	assert.False(t, bb.Locked())
	actN(t, e, 1) // BlackboardPost
	assert.True(t, bb.Locked())

	assert.ErrorIs(t, bb.Put("late", 2), blackboard.ErrLocked)
	_, found := bb.Lookup("plugin.handle")
	assert.True(t, found)
}

func TestEngine_PluginErrorPropagates(t *testing.T) {
	boom := errors.New("mandatory key missing")
	plugins := &fakePlugins{actErr: boom}
	e := runtime.NewEngine(nil, plugins)

	err := e.Act(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "init")
}

func TestEngine_LifecycleHooks(t *testing.T) {
	var entered, left []domain.SystemState
	hooks := domain.LifecycleHooks{
		OnStateEnter: func(_ context.Context, ev *domain.StateEvent) {
			assert.Equal(t, domain.EventStateEnter, ev.Type)
			entered = append(entered, ev.State)
		},
		OnStateLeave: func(_ context.Context, ev *domain.StateEvent) {
			assert.Equal(t, domain.EventStateLeave, ev.Type)
			left = append(left, ev.State)
		},
	}
	e := runtime.NewEngine(nil, &fakePlugins{}, runtime.WithLifecycleHooks(hooks))
	actN(t, e, 8)

	assert.Equal(t, []domain.SystemState{
		domain.StateInit,
		domain.StateBlackboardPost,
		domain.StateBlackboardRetrieve,
		domain.StateConfigurationLoad,
		domain.StateConfigurationProcess,
		domain.StateReset,
		domain.StateStandby,
	}, entered, "holding in Standby does not re-enter it")
	assert.Equal(t, entered[:6], left)
}

func TestEngine_StandbyToOperateScenario(t *testing.T) {
	sc := domain.NewStateContext()
	plugins := &fakePlugins{}
	e := runtime.NewEngine(sc, plugins)
	actN(t, e, 7)
	require.Equal(t, domain.StateStandby, e.State())
	assert.True(t, e.ShouldIgnoreNonIGCtrl())

	sc.CommandedIGMode = domain.IGModeOperate
	actN(t, e, 1)

	assert.Equal(t, domain.StateOperate, e.State())
	assert.True(t, e.ShouldSendSOF())
	assert.False(t, e.ShouldIgnoreNonIGCtrl())
	assert.Equal(t, domain.IGModeOperate, e.IGMode())
	assert.Equal(t, domain.StateOperate, plugins.acted[len(plugins.acted)-1])
	assert.Same(t, sc, e.Context())
}
