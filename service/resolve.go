package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"guildkeeper/models"
)

var (
	channelMentionPattern = regexp.MustCompile(`^<#(\d+)>$`)
	roleMentionPattern    = regexp.MustCompile(`^<@&(\d+)>$`)
	snowflakePattern      = regexp.MustCompile(`^\d{5,20}$`)
)

// ResolveTextChannel resolves a channel mention, id or name to a text
// channel of guildID
func ResolveTextChannel(ctx context.Context, discord Discord, guildID, ref string) (*models.Channel, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrChannelNotFound
	}

	var channel *models.Channel
	id := ref
	if m := channelMentionPattern.FindStringSubmatch(ref); m != nil {
		id = m[1]
	}

	if snowflakePattern.MatchString(id) {
		c, err := discord.Channel(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("channel %s: %w", id, ErrChannelNotFound)
		}
		channel = c
	} else {
		channels, err := discord.GuildChannels(ctx, guildID)
		if err != nil {
			return nil, fmt.Errorf("failed to list channels: %w", err)
		}
		name := strings.TrimPrefix(ref, "#")
		for _, c := range channels {
			if c.Name == name && c.IsText {
				channel = c
				break
			}
		}
		if channel == nil {
			return nil, fmt.Errorf("channel %q: %w", name, ErrChannelNotFound)
		}
	}

	if !channel.IsText || channel.GuildID != guildID {
		return nil, fmt.Errorf("channel %s: %w", channel.ID, ErrChannelNotText)
	}
	return channel, nil
}

// ResolveRole resolves a role mention, id or exact name within guildID
func ResolveRole(ctx context.Context, discord Discord, guildID, ref string) (*models.Role, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrRoleNotFound
	}

	if m := roleMentionPattern.FindStringSubmatch(ref); m != nil {
		return lookupRole(ctx, discord, guildID, m[1])
	}

	roles, err := discord.GuildRoles(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	// An id match wins over a role that happens to be named like an id
	for _, r := range roles {
		if r.ID == ref {
			return r, nil
		}
	}
	for _, r := range roles {
		if r.Name == ref {
			return r, nil
		}
	}
	return nil, fmt.Errorf("role %q: %w", ref, ErrRoleNotFound)
}

func lookupRole(ctx context.Context, discord Discord, guildID, roleID string) (*models.Role, error) {
	role, err := discord.GuildRole(ctx, guildID, roleID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("role %s: %w", roleID, ErrRoleNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up role %s: %w", roleID, err)
	}
	return role, nil
}

// CheckRoleAssignable fails with ErrRoleNotAssignable unless the bot can
// grant role: it must be a regular role strictly below the bot's highest role
func CheckRoleAssignable(ctx context.Context, discord Discord, guildID string, role *models.Role) error {
	if role.ID == guildID || role.Managed {
		return fmt.Errorf("role %s is managed by the platform: %w", role.Name, ErrRoleNotAssignable)
	}

	position, err := discord.BotHighestRolePosition(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to get bot role position: %w", err)
	}
	if position <= role.Position {
		return fmt.Errorf("role %s is not below the bot's highest role: %w", role.Name, ErrRoleNotAssignable)
	}
	return nil
}
