package service

import (
	"context"

	"guildkeeper/models"

	"github.com/stretchr/testify/mock"
)

// MockGuildSettingsService is a mock implementation of GuildSettingsService
type MockGuildSettingsService struct {
	mock.Mock
}

func (m *MockGuildSettingsService) settingsResult(args mock.Arguments) (*models.GuildSettings, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsService) GetOrCreateSettings(ctx context.Context, guildID string) (*models.GuildSettings, error) {
	return m.settingsResult(m.Called(ctx, guildID))
}

func (m *MockGuildSettingsService) SetWelcomeEnabled(ctx context.Context, guildID string, enabled bool) (*models.GuildSettings, error) {
	return m.settingsResult(m.Called(ctx, guildID, enabled))
}

func (m *MockGuildSettingsService) SetWelcomeTemplate(ctx context.Context, guildID string, text string) (*models.GuildSettings, error) {
	return m.settingsResult(m.Called(ctx, guildID, text))
}

func (m *MockGuildSettingsService) SetInviteTracking(ctx context.Context, guildID string, enabled bool) (*models.GuildSettings, error) {
	return m.settingsResult(m.Called(ctx, guildID, enabled))
}

func (m *MockGuildSettingsService) SetLogChannel(ctx context.Context, guildID string, channelID string) (*models.GuildSettings, error) {
	return m.settingsResult(m.Called(ctx, guildID, channelID))
}

// MockReactionRoleService is a mock implementation of ReactionRoleService
type MockReactionRoleService struct {
	mock.Mock
}

func (m *MockReactionRoleService) HandleReactionAdd(ctx context.Context, ev ReactionEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockReactionRoleService) HandleReactionRemove(ctx context.Context, ev ReactionEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockReactionRoleService) CreateRoleMessage(ctx context.Context, req CreateRoleMessageRequest) (*RoleBindingResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RoleBindingResult), args.Error(1)
}

func (m *MockReactionRoleService) AddBinding(ctx context.Context, req AddBindingRequest) (*RoleBindingResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RoleBindingResult), args.Error(1)
}

func (m *MockReactionRoleService) MessageCount(ctx context.Context, guildID string) (int, error) {
	args := m.Called(ctx, guildID)
	return args.Int(0), args.Error(1)
}

// MockInviteService is a mock implementation of InviteService
type MockInviteService struct {
	mock.Mock
}

func (m *MockInviteService) RefreshGuild(ctx context.Context, guildID string) (int, error) {
	args := m.Called(ctx, guildID)
	return args.Int(0), args.Error(1)
}

func (m *MockInviteService) RefreshAll(ctx context.Context, guildIDs []string) []string {
	args := m.Called(ctx, guildIDs)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

func (m *MockInviteService) HandleInviteCreate(ctx context.Context, guildID, code string) error {
	args := m.Called(ctx, guildID, code)
	return args.Error(0)
}

func (m *MockInviteService) HandleInviteDelete(ctx context.Context, guildID, code string) error {
	args := m.Called(ctx, guildID, code)
	return args.Error(0)
}

func (m *MockInviteService) HandleMemberJoin(ctx context.Context, member *models.Member) (*JoinOutcome, error) {
	args := m.Called(ctx, member)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*JoinOutcome), args.Error(1)
}

func (m *MockInviteService) SnapshotSize(ctx context.Context, guildID string) (int, error) {
	args := m.Called(ctx, guildID)
	return args.Int(0), args.Error(1)
}
