package statusmirror_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/igkernel/pkg/adapters/memory"
	"github.com/aretw0/igkernel/pkg/blackboard"
	"github.com/aretw0/igkernel/pkg/domain"
	"github.com/aretw0/igkernel/pkg/plugins/statusmirror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore records how often Save is called.
type countingStore struct {
	*memory.Store
	saves   int
	saveErr error
}

func (s *countingStore) Save(ctx context.Context, id string, st *domain.Status) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.Store.Save(ctx, id, st)
}

func TestStatusMirror_PublishesOnChange(t *testing.T) {
	store := &countingStore{Store: memory.NewStore()}
	p := statusmirror.New(store, statusmirror.Settings{InstanceID: "ig-1"})

	var loaded, commanded, reported int8 = 0, 3, -3
	bb := blackboard.New()
	require.NoError(t, blackboard.Put(bb, blackboard.KeyLoadedDatabaseNumber, &loaded))
	require.NoError(t, blackboard.Put(bb, blackboard.KeyCommandedDatabaseNumber, &commanded))
	require.NoError(t, blackboard.Put(bb, blackboard.KeyReportedDatabaseNumber, &reported))
	p.UseBlackboard(bb)

	ctx := context.Background()
	sc := domain.NewStateContext()

	require.NoError(t, p.Act(ctx, domain.StateBlackboardRetrieve, sc))
	require.NoError(t, p.Act(ctx, domain.StateStandby, sc))
	require.NoError(t, p.Act(ctx, domain.StateStandby, sc))
	require.NoError(t, p.Act(ctx, domain.StateStandby, sc))
	assert.Equal(t, 2, store.saves, "repeated identical frames are not republished")

	got, err := store.Load(ctx, "ig-1")
	require.NoError(t, err)
	assert.Equal(t, "standby", got.State)
	assert.Equal(t, int8(-3), got.ReportedDatabaseNumber)
	assert.Equal(t, int8(3), got.CommandedDatabaseNumber)

	sc.CommandedIGMode = domain.IGModeOperate
	require.NoError(t, p.Act(ctx, domain.StateOperate, sc))
	got, err = store.Load(ctx, "ig-1")
	require.NoError(t, err)
	assert.Equal(t, "operate", got.IGMode)
	assert.Equal(t, uint32(4), got.Frame)
}

func TestStatusMirror_StoreErrorIsNotFatal(t *testing.T) {
	store := &countingStore{Store: memory.NewStore(), saveErr: errors.New("redis down")}
	p := statusmirror.New(store, statusmirror.Settings{InstanceID: "ig-1"})
	ctx := context.Background()

	assert.NoError(t, p.Act(ctx, domain.StateInit, domain.NewStateContext()))
	assert.NoError(t, p.Act(ctx, domain.StateInit, domain.NewStateContext()))
	assert.Equal(t, 2, store.saves, "a failed publish is retried next frame")
}

func TestStatusMirror_Close(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes snapshot", func(t *testing.T) {
		store := memory.NewStore()
		p := statusmirror.New(store, statusmirror.Settings{InstanceID: "ig-1"})
		require.NoError(t, p.Act(ctx, domain.StateInit, domain.NewStateContext()))
		require.NoError(t, p.Close(ctx))

		_, err := store.Load(ctx, "ig-1")
		assert.ErrorIs(t, err, domain.ErrStatusNotFound)
	})

	t.Run("Keeps snapshot", func(t *testing.T) {
		store := memory.NewStore()
		p := statusmirror.New(store, statusmirror.Settings{InstanceID: "ig-1", KeepOnExit: true})
		require.NoError(t, p.Act(ctx, domain.StateInit, domain.NewStateContext()))
		require.NoError(t, p.Close(ctx))

		_, err := store.Load(ctx, "ig-1")
		assert.NoError(t, err)
	})
}

func TestStatusMirror_DefaultInstanceID(t *testing.T) {
	p := statusmirror.New(memory.NewStore(), statusmirror.Settings{})
	assert.NotEmpty(t, p.InstanceID())
}

func TestStatusMirror_Refresh(t *testing.T) {
	store := &countingStore{Store: memory.NewStore()}
	p := statusmirror.New(store, statusmirror.Settings{InstanceID: "ig-1", RefreshFrames: 3})
	ctx := context.Background()
	sc := domain.NewStateContext()

	for i := 0; i < 7; i++ {
		require.NoError(t, p.Act(ctx, domain.StateStandby, sc))
	}
	// Frame 0 (new), then frames 3 and 6 (refresh).
	assert.Equal(t, 3, store.saves)
}
