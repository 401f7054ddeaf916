package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmoji(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Emoji
		wantKey string
		wantAPI string
		wantErr bool
	}{
		{
			name:    "unicode emoji",
			input:   "👍",
			want:    Emoji{Name: "👍"},
			wantKey: "👍",
			wantAPI: "👍",
		},
		{
			name:    "custom emoji",
			input:   "<:party:123456789012345678>",
			want:    Emoji{ID: "123456789012345678", Name: "party"},
			wantKey: "123456789012345678",
			wantAPI: "party:123456789012345678",
		},
		{
			name:    "animated custom emoji",
			input:   "<a:wave:42>",
			want:    Emoji{ID: "42", Name: "wave", Animated: true},
			wantKey: "42",
			wantAPI: "wave:42",
		},
		{
			name:    "surrounding whitespace",
			input:   "  ✅ ",
			want:    Emoji{Name: "✅"},
			wantKey: "✅",
			wantAPI: "✅",
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "malformed tag",
			input:   "<:broken>",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEmoji(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantKey, got.Key())
			assert.Equal(t, tt.wantAPI, got.APIName())
		})
	}
}

func TestEmoji_String(t *testing.T) {
	assert.Equal(t, "<:party:1>", Emoji{ID: "1", Name: "party"}.String())
	assert.Equal(t, "<a:wave:2>", Emoji{ID: "2", Name: "wave", Animated: true}.String())
	assert.Equal(t, "🧡", Emoji{Name: "🧡"}.String())
}

func TestReactionRoleMessage_Matching(t *testing.T) {
	msg := &ReactionRoleMessage{
		GuildID:   "g1",
		MessageID: "m1",
		Bindings: []ReactionRoleBinding{
			{Emoji: "👍", RoleID: "r1"},
			{Emoji: "555", RoleID: "r2"},
		},
	}

	t.Run("unicode matches by name", func(t *testing.T) {
		matches := msg.Matching(Emoji{Name: "👍"})
		require.Len(t, matches, 1)
		assert.Equal(t, "r1", matches[0].RoleID)
	})

	t.Run("custom matches by id not name", func(t *testing.T) {
		matches := msg.Matching(Emoji{ID: "555", Name: "👍"})
		require.Len(t, matches, 1)
		assert.Equal(t, "r2", matches[0].RoleID)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, msg.Matching(Emoji{Name: "🎉"}))
	})

	assert.True(t, msg.HasEmoji("555"))
	assert.False(t, msg.HasEmoji("556"))
}

func TestMember_Names(t *testing.T) {
	m := &Member{UserID: "1", Username: "alice", Discriminator: "0"}
	assert.Equal(t, "alice", m.Tag())
	assert.Equal(t, "<@1>", m.Mention())

	legacy := &Member{UserID: "2", Username: "bob", Discriminator: "1234"}
	assert.Equal(t, "bob#1234", legacy.Tag())

	noUsername := &Member{UserID: "3", GlobalName: "Carol"}
	assert.Equal(t, "Carol", noUsername.DisplayName())
}

func TestSnapshotFromInvites(t *testing.T) {
	snapshot := SnapshotFromInvites([]Invite{
		{Code: "A", Uses: 5, InviterID: "u1"},
		{Code: "B", Uses: 0},
	})

	require.Len(t, snapshot, 2)
	assert.Equal(t, 5, snapshot["A"].Uses)
	require.NotNil(t, snapshot["A"].InviterID)
	assert.Equal(t, "u1", *snapshot["A"].InviterID)
	assert.Nil(t, snapshot["B"].InviterID)

	clone := snapshot.Clone()
	*clone["A"].InviterID = "changed"
	assert.Equal(t, "u1", *snapshot["A"].InviterID)
}
