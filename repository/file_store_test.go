package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_LoadMissing(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)

	data, err := store.Load(context.Background(), SettingsDocument)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestFileStore_SaveReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, ReactionRolesDocument, []byte(`{"a":1}`)))
	require.NoError(t, store.Save(ctx, ReactionRolesDocument, []byte(`{"b":2}`)))

	data, err := store.Load(ctx, ReactionRolesDocument)
	require.NoError(t, err)
	assert.JSONEq(t, `{"b":2}`, string(data))
	assert.Equal(t, filepath.Join(dir, "reactionRoles.json"), store.Path(ReactionRolesDocument))

	// No temp files are left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "reactionRoles.json", entries[0].Name())
}
