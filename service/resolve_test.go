package service

import (
	"context"
	"errors"
	"testing"

	"guildkeeper/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTextChannel(t *testing.T) {
	ctx := context.Background()
	text := &models.Channel{ID: testChannelID, GuildID: testGuildID, Name: "roles", IsText: true}
	voice := &models.Channel{ID: "140000000000000001", GuildID: testGuildID, Name: "lounge", IsText: false}
	foreign := &models.Channel{ID: "150000000000000001", GuildID: "other", Name: "roles", IsText: true}

	tests := []struct {
		name        string
		ref         string
		setup       func(d *MockDiscord)
		expectedID  string
		expectedErr error
	}{
		{
			name:       "mention",
			ref:        "<#" + testChannelID + ">",
			setup:      func(d *MockDiscord) { d.On("Channel", ctx, testChannelID).Return(text, nil) },
			expectedID: testChannelID,
		},
		{
			name:       "raw id",
			ref:        testChannelID,
			setup:      func(d *MockDiscord) { d.On("Channel", ctx, testChannelID).Return(text, nil) },
			expectedID: testChannelID,
		},
		{
			name: "name with hash",
			ref:  "#roles",
			setup: func(d *MockDiscord) {
				d.On("GuildChannels", ctx, testGuildID).Return([]*models.Channel{voice, text}, nil)
			},
			expectedID: testChannelID,
		},
		{
			name:        "unknown id",
			ref:         "160000000000000001",
			setup:       func(d *MockDiscord) { d.On("Channel", ctx, "160000000000000001").Return(nil, errors.New("404")) },
			expectedErr: ErrChannelNotFound,
		},
		{
			name: "unknown name",
			ref:  "nowhere",
			setup: func(d *MockDiscord) {
				d.On("GuildChannels", ctx, testGuildID).Return([]*models.Channel{text}, nil)
			},
			expectedErr: ErrChannelNotFound,
		},
		{
			name:        "voice channel",
			ref:         voice.ID,
			setup:       func(d *MockDiscord) { d.On("Channel", ctx, voice.ID).Return(voice, nil) },
			expectedErr: ErrChannelNotText,
		},
		{
			name:        "other guild",
			ref:         foreign.ID,
			setup:       func(d *MockDiscord) { d.On("Channel", ctx, foreign.ID).Return(foreign, nil) },
			expectedErr: ErrChannelNotText,
		},
		{
			name:        "empty",
			ref:         " ",
			setup:       func(d *MockDiscord) {},
			expectedErr: ErrChannelNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			discord := new(MockDiscord)
			tt.setup(discord)

			channel, err := ResolveTextChannel(ctx, discord, testGuildID, tt.ref)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, channel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedID, channel.ID)
			discord.AssertExpectations(t)
		})
	}
}

func TestResolveRole(t *testing.T) {
	ctx := context.Background()
	roles := []*models.Role{
		{ID: "301", Name: "Red", Position: 1},
		{ID: "302", Name: "301", Position: 2},
		{ID: "303", Name: "Blue", Position: 3},
	}

	tests := []struct {
		name        string
		ref         string
		setup       func(d *MockDiscord)
		expectedID  string
		expectedErr error
	}{
		{
			name:       "mention",
			ref:        "<@&303>",
			setup:      func(d *MockDiscord) { d.On("GuildRole", ctx, testGuildID, "303").Return(roles[2], nil) },
			expectedID: "303",
		},
		{
			name:        "deleted mention",
			ref:         "<@&404>",
			setup:       func(d *MockDiscord) { d.On("GuildRole", ctx, testGuildID, "404").Return(nil, models.ErrNotFound) },
			expectedErr: ErrRoleNotFound,
		},
		{
			name:       "id wins over name",
			ref:        "301",
			setup:      func(d *MockDiscord) { d.On("GuildRoles", ctx, testGuildID).Return(roles, nil) },
			expectedID: "301",
		},
		{
			name:       "exact name",
			ref:        "Blue",
			setup:      func(d *MockDiscord) { d.On("GuildRoles", ctx, testGuildID).Return(roles, nil) },
			expectedID: "303",
		},
		{
			name:        "name is case-sensitive",
			ref:         "blue",
			setup:       func(d *MockDiscord) { d.On("GuildRoles", ctx, testGuildID).Return(roles, nil) },
			expectedErr: ErrRoleNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			discord := new(MockDiscord)
			tt.setup(discord)

			role, err := ResolveRole(ctx, discord, testGuildID, tt.ref)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedID, role.ID)
		})
	}
}

func TestCheckRoleAssignable(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		role       *models.Role
		botPos     int
		assignable bool
	}{
		{"below bot", &models.Role{ID: "301", Name: "r", Position: 2}, 5, true},
		{"equal to bot", &models.Role{ID: "301", Name: "r", Position: 5}, 5, false},
		{"above bot", &models.Role{ID: "301", Name: "r", Position: 9}, 5, false},
		{"managed", &models.Role{ID: "301", Name: "r", Position: 1, Managed: true}, 5, false},
		{"everyone", &models.Role{ID: testGuildID, Name: "@everyone", Position: 0}, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			discord := new(MockDiscord)
			discord.On("BotHighestRolePosition", ctx, testGuildID).Return(tt.botPos, nil).Maybe()

			err := CheckRoleAssignable(ctx, discord, testGuildID, tt.role)

			if tt.assignable {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrRoleNotAssignable)
			}
		})
	}
}
