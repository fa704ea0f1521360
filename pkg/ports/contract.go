package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/igkernel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStatusStoreContract runs a suite of tests to verify that a StatusStore
// implementation adheres to the defined interface contract.
func RunStatusStoreContract(t *testing.T, store StatusStore) {
	ctx := context.Background()
	instanceID := "contract-test-ig-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		status := &domain.Status{
			State:                  domain.StateOperate.String(),
			IGMode:                 domain.IGModeOperate.String(),
			Frame:                  1234,
			CommandedIGMode:        domain.IGModeOperate.String(),
			LoadedDatabaseNumber:   4,
			ReportedDatabaseNumber: 4,
		}

		err := store.Save(ctx, instanceID, status)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, instanceID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, status, loaded)

		// The store must not alias the caller's value.
		status.Frame = 9999
		loaded, err = store.Load(ctx, instanceID)
		require.NoError(t, err)
		assert.Equal(t, uint32(1234), loaded.Frame)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, instanceID, &domain.Status{State: "standby"}))
		require.NoError(t, store.Save(ctx, instanceID, &domain.Status{State: "debug"}))

		loaded, err := store.Load(ctx, instanceID)
		require.NoError(t, err)
		assert.Equal(t, "debug", loaded.State)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+instanceID)
		assert.ErrorIs(t, err, domain.ErrStatusNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, instanceID, &domain.Status{State: "standby"})
		require.NoError(t, err)

		err = store.Delete(ctx, instanceID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, instanceID)
		assert.ErrorIs(t, err, domain.ErrStatusNotFound, "Load after Delete should return ErrStatusNotFound")
	})
}
