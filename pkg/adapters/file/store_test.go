package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/igkernel/pkg/adapters/file"
	"github.com/aretw0/igkernel/pkg/domain"
	"github.com/aretw0/igkernel/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.StatusStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	ports.RunStatusStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_WritesReadableJSON(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "ig-1", &domain.Status{State: "Operate", IGMode: "Operate", Frame: 12}))

	data, err := os.ReadFile(filepath.Join(dir, "ig-1.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"state": "Operate"`)
	assert.Contains(t, string(data), `"frame": 12`)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestFileStore_List(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "missing"))
	ctx := context.Background()

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, store.Save(ctx, "ig-b", &domain.Status{}))
	require.NoError(t, store.Save(ctx, "ig-a", &domain.Status{}))
	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ig-a", "ig-b"}, ids)
}

func TestFileStore_EmptyInstanceID(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	assert.ErrorIs(t, store.Save(ctx, "", &domain.Status{}), file.ErrEmptyInstanceID)
	_, err := store.Load(ctx, "")
	assert.ErrorIs(t, err, file.ErrEmptyInstanceID)
	assert.ErrorIs(t, store.Delete(ctx, ""), file.ErrEmptyInstanceID)
}
