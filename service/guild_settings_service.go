package service

import (
	"context"
	"fmt"
	"strings"

	"guildkeeper/models"
)

// OrdinalKeyword switches welcome titles to the member-count form
const OrdinalKeyword = "ordinal"

// guildSettingsService implements the GuildSettingsService interface
type guildSettingsService struct {
	guildSettingsRepo GuildSettingsRepository
}

// NewGuildSettingsService creates a new guild settings service
func NewGuildSettingsService(guildSettingsRepo GuildSettingsRepository) GuildSettingsService {
	return &guildSettingsService{
		guildSettingsRepo: guildSettingsRepo,
	}
}

// GetOrCreateSettings retrieves guild settings or creates default ones if not found
func (s *guildSettingsService) GetOrCreateSettings(ctx context.Context, guildID string) (*models.GuildSettings, error) {
	settings, err := s.guildSettingsRepo.GetOrCreate(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create guild settings: %w", err)
	}
	return settings, nil
}

// SetWelcomeEnabled turns welcome notices on or off
func (s *guildSettingsService) SetWelcomeEnabled(ctx context.Context, guildID string, enabled bool) (*models.GuildSettings, error) {
	return s.update(ctx, guildID, func(settings *models.GuildSettings) error {
		settings.WelcomeEnabled = enabled
		return nil
	})
}

// SetWelcomeTemplate stores a custom title template. The ordinal keyword
// (any case) instead enables member-count titles and clears the template.
func (s *guildSettingsService) SetWelcomeTemplate(ctx context.Context, guildID string, text string) (*models.GuildSettings, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyTemplate
	}

	return s.update(ctx, guildID, func(settings *models.GuildSettings) error {
		if strings.EqualFold(text, OrdinalKeyword) {
			settings.MemberCountInTitle = true
			settings.WelcomeTemplate = nil
			return nil
		}
		settings.MemberCountInTitle = false
		settings.WelcomeTemplate = &text
		return nil
	})
}

// SetInviteTracking turns inviter attribution on or off
func (s *guildSettingsService) SetInviteTracking(ctx context.Context, guildID string, enabled bool) (*models.GuildSettings, error) {
	return s.update(ctx, guildID, func(settings *models.GuildSettings) error {
		settings.InviteTrackingEnabled = enabled
		return nil
	})
}

// SetLogChannel sets the channel welcome notices are sent to
func (s *guildSettingsService) SetLogChannel(ctx context.Context, guildID string, channelID string) (*models.GuildSettings, error) {
	if channelID == "" {
		return nil, fmt.Errorf("log channel: %w", ErrChannelNotFound)
	}
	return s.update(ctx, guildID, func(settings *models.GuildSettings) error {
		settings.SetLogChannel(&channelID)
		return nil
	})
}

func (s *guildSettingsService) update(ctx context.Context, guildID string, mutate func(*models.GuildSettings) error) (*models.GuildSettings, error) {
	settings, err := s.guildSettingsRepo.GetOrCreate(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}

	if err := mutate(settings); err != nil {
		return nil, err
	}

	if err := s.guildSettingsRepo.Update(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to update guild settings: %w", err)
	}
	return settings, nil
}
