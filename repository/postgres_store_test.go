package repository

import (
	"context"
	"testing"

	"guildkeeper/models"
	"guildkeeper/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testutil.SetupTestDatabase(t)
	store := NewPostgresStore(testDB.DB)
	ctx := context.Background()

	t.Run("missing document", func(t *testing.T) {
		data, err := store.Load(ctx, SettingsDocument)
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("upsert", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, InviteTrackerDocument, []byte(`{"g1":{"A":{"uses":1,"inviterId":null}}}`)))
		require.NoError(t, store.Save(ctx, InviteTrackerDocument, []byte(`{"g1":{"A":{"uses":2,"inviterId":null}}}`)))

		data, err := store.Load(ctx, InviteTrackerDocument)
		require.NoError(t, err)
		assert.JSONEq(t, `{"g1":{"A":{"uses":2,"inviterId":null}}}`, string(data))
	})

	t.Run("repositories run on postgres", func(t *testing.T) {
		repo, err := NewReactionRoleRepository(ctx, store)
		require.NoError(t, err)
		require.NoError(t, repo.AddBinding(ctx, "g1", "m1", models.ReactionRoleBinding{Emoji: "42", RoleID: "r1"}))

		reloaded, err := NewReactionRoleRepository(ctx, store)
		require.NoError(t, err)
		msg, err := reloaded.Get(ctx, "g1", "m1")
		require.NoError(t, err)
		require.NotNil(t, msg)
		assert.Equal(t, "r1", msg.Bindings[0].RoleID)
	})

	t.Run("import from file store", func(t *testing.T) {
		files := newTestFileStore(t)
		require.NoError(t, files.Save(ctx, SettingsDocument, []byte(`{"g2":{"welcomeEnabled":true}}`)))

		imported, err := ImportDocuments(ctx, files, store)
		require.NoError(t, err)
		assert.Equal(t, 1, imported)

		settingsRepo, err := NewGuildSettingsRepository(ctx, store)
		require.NoError(t, err)
		settings, err := settingsRepo.GetOrCreate(ctx, "g2")
		require.NoError(t, err)
		assert.True(t, settings.WelcomeEnabled)
	})
}
