package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/igkernel/pkg/adapters/memory"
	"github.com/aretw0/igkernel/pkg/domain"
	"github.com/aretw0/igkernel/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunStatusStoreContract(t, store)
}

func TestMemoryStore_List(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "ig-b", &domain.Status{}))
	require.NoError(t, store.Save(ctx, "ig-a", &domain.Status{}))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ig-a", "ig-b"}, ids)
}
