package service

import (
	"context"

	"guildkeeper/events"
	"guildkeeper/models"

	"github.com/stretchr/testify/mock"
)

// MockGuildSettingsRepository is a mock implementation of GuildSettingsRepository
type MockGuildSettingsRepository struct {
	mock.Mock
}

func (m *MockGuildSettingsRepository) GetOrCreate(ctx context.Context, guildID string) (*models.GuildSettings, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsRepository) Update(ctx context.Context, settings *models.GuildSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockReactionRoleRepository is a mock implementation of ReactionRoleRepository
type MockReactionRoleRepository struct {
	mock.Mock
}

func (m *MockReactionRoleRepository) Get(ctx context.Context, guildID, messageID string) (*models.ReactionRoleMessage, error) {
	args := m.Called(ctx, guildID, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReactionRoleMessage), args.Error(1)
}

func (m *MockReactionRoleRepository) AddBinding(ctx context.Context, guildID, messageID string, binding models.ReactionRoleBinding) error {
	args := m.Called(ctx, guildID, messageID, binding)
	return args.Error(0)
}

func (m *MockReactionRoleRepository) Count(ctx context.Context, guildID string) (int, error) {
	args := m.Called(ctx, guildID)
	return args.Int(0), args.Error(1)
}

// MockInviteSnapshotRepository is a mock implementation of InviteSnapshotRepository
type MockInviteSnapshotRepository struct {
	mock.Mock
}

func (m *MockInviteSnapshotRepository) Get(ctx context.Context, guildID string) (models.InviteSnapshot, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.InviteSnapshot), args.Error(1)
}

func (m *MockInviteSnapshotRepository) Replace(ctx context.Context, guildID string, snapshot models.InviteSnapshot) error {
	args := m.Called(ctx, guildID, snapshot)
	return args.Error(0)
}

func (m *MockInviteSnapshotRepository) Remove(ctx context.Context, guildID, code string) (bool, error) {
	args := m.Called(ctx, guildID, code)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Emit(ctx context.Context, event events.Event) {
	m.Called(ctx, event)
}

// MockCardRenderer is a mock implementation of CardRenderer
type MockCardRenderer struct {
	mock.Mock
}

func (m *MockCardRenderer) Render(input WelcomeInput) ([]byte, error) {
	args := m.Called(input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockDiscord is a mock implementation of the Discord platform interface
type MockDiscord struct {
	mock.Mock
}

func (m *MockDiscord) SelfUserID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockDiscord) Channel(ctx context.Context, channelID string) (*models.Channel, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Channel), args.Error(1)
}

func (m *MockDiscord) GuildChannels(ctx context.Context, guildID string) ([]*models.Channel, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Channel), args.Error(1)
}

func (m *MockDiscord) Guild(ctx context.Context, guildID string) (*models.Guild, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Guild), args.Error(1)
}

func (m *MockDiscord) GuildMember(ctx context.Context, guildID, userID string) (*models.Member, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

func (m *MockDiscord) GuildRole(ctx context.Context, guildID, roleID string) (*models.Role, error) {
	args := m.Called(ctx, guildID, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

func (m *MockDiscord) GuildRoles(ctx context.Context, guildID string) ([]*models.Role, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Role), args.Error(1)
}

func (m *MockDiscord) BotHighestRolePosition(ctx context.Context, guildID string) (int, error) {
	args := m.Called(ctx, guildID)
	return args.Int(0), args.Error(1)
}

func (m *MockDiscord) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	args := m.Called(ctx, guildID, userID, roleID)
	return args.Error(0)
}

func (m *MockDiscord) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	args := m.Called(ctx, guildID, userID, roleID)
	return args.Error(0)
}

func (m *MockDiscord) AddReaction(ctx context.Context, channelID, messageID string, emoji models.Emoji) error {
	args := m.Called(ctx, channelID, messageID, emoji)
	return args.Error(0)
}

func (m *MockDiscord) RemoveUserReaction(ctx context.Context, channelID, messageID string, emoji models.Emoji, userID string) error {
	args := m.Called(ctx, channelID, messageID, emoji, userID)
	return args.Error(0)
}

func (m *MockDiscord) SendNotice(ctx context.Context, channelID string, notice *models.Notice) (string, error) {
	args := m.Called(ctx, channelID, notice)
	return args.String(0), args.Error(1)
}

func (m *MockDiscord) GuildInvites(ctx context.Context, guildID string) ([]models.Invite, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invite), args.Error(1)
}
