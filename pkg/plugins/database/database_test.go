package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/igkernel/pkg/blackboard"
	"github.com/aretw0/igkernel/pkg/domain"
	"github.com/aretw0/igkernel/pkg/plugins/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type numbers struct {
	loaded, commanded, reported, def int8
}

func setup(t *testing.T, p *database.Plugin, n *numbers) {
	t.Helper()
	bb := blackboard.New()
	require.NoError(t, blackboard.Put(bb, blackboard.KeyLoadedDatabaseNumber, &n.loaded))
	require.NoError(t, blackboard.Put(bb, blackboard.KeyCommandedDatabaseNumber, &n.commanded))
	require.NoError(t, blackboard.Put(bb, blackboard.KeyReportedDatabaseNumber, &n.reported))
	require.NoError(t, blackboard.Put(bb, blackboard.KeyDefaultDatabaseNumber, &n.def))
	p.UseBlackboard(bb)
	require.NoError(t, p.Act(context.Background(), domain.StateBlackboardRetrieve, domain.NewStateContext()))
}

func TestDatabase_DefaultSelectedAtConfiguration(t *testing.T) {
	n := &numbers{def: 4}
	p := database.New(database.Settings{})
	setup(t, p, n)

	require.NoError(t, p.Act(context.Background(), domain.StateConfigurationProcess, domain.NewStateContext()))
	assert.Equal(t, int8(4), n.loaded)
	assert.Equal(t, int8(4), n.reported)
}

func TestDatabase_LoadReportsNegatedUntilComplete(t *testing.T) {
	n := &numbers{commanded: 12}
	var loadedWith []int8
	p := database.New(database.Settings{LoadFrames: 3}, database.WithLoader(func(_ context.Context, db int8) error {
		loadedWith = append(loadedWith, db)
		return nil
	}))
	setup(t, p, n)
	sc := domain.NewStateContext()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, p.Act(ctx, domain.StateDatabaseLoad, sc))
		assert.Equal(t, int8(-12), n.reported)
		assert.False(t, sc.DatabaseLoadComplete)
	}

	require.NoError(t, p.Act(ctx, domain.StateDatabaseLoad, sc))
	assert.True(t, sc.DatabaseLoadComplete)
	assert.Equal(t, int8(12), n.loaded)
	assert.Equal(t, int8(12), n.reported)
	assert.Equal(t, []int8{12}, loadedWith, "loader runs once per load")

	// A second request starts a fresh load.
	sc.DatabaseLoadComplete = false
	n.commanded = 5
	require.NoError(t, p.Act(ctx, domain.StateDatabaseLoad, sc))
	assert.Equal(t, int8(-5), n.reported)
}

func TestDatabase_SingleFrameLoad(t *testing.T) {
	n := &numbers{commanded: 2}
	p := database.New(database.Settings{LoadFrames: 0})
	setup(t, p, n)
	sc := domain.NewStateContext()

	require.NoError(t, p.Act(context.Background(), domain.StateDatabaseLoad, sc))
	assert.True(t, sc.DatabaseLoadComplete)
	assert.Equal(t, int8(2), n.loaded)
}

func TestDatabase_LoaderError(t *testing.T) {
	boom := errors.New("terrain missing")
	n := &numbers{commanded: 9}
	p := database.New(database.Settings{}, database.WithLoader(func(context.Context, int8) error { return boom }))
	setup(t, p, n)

	err := p.Act(context.Background(), domain.StateDatabaseLoad, domain.NewStateContext())
	assert.ErrorIs(t, err, boom)
}

func TestDatabase_MissingKeyIsFatal(t *testing.T) {
	p := database.New(database.Settings{})
	p.UseBlackboard(blackboard.New())

	err := p.Act(context.Background(), domain.StateBlackboardRetrieve, domain.NewStateContext())
	assert.ErrorIs(t, err, blackboard.ErrKeyNotFound)
}
