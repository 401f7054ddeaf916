package settings

import (
	"guildkeeper/bot/common"
	"guildkeeper/service"
)

// Feature handles guild settings management
type Feature struct {
	discord              service.Discord
	guildSettingsService service.GuildSettingsService
	inviteService        service.InviteService
	reactionRoleService  service.ReactionRoleService
}

// NewFeature creates a new settings feature instance
func NewFeature(discord service.Discord, guildSettingsService service.GuildSettingsService, inviteService service.InviteService, reactionRoleService service.ReactionRoleService) *Feature {
	return &Feature{
		discord:              discord,
		guildSettingsService: guildSettingsService,
		inviteService:        inviteService,
		reactionRoleService:  reactionRoleService,
	}
}

// Commands returns the commands this feature registers
func (f *Feature) Commands() []*common.Command {
	return []*common.Command{
		{
			Name:        "toggle-welcome",
			Usage:       "<on|off>",
			Description: "Turn welcome notices on or off.",
			AdminOnly:   true,
			MinArgs:     1,
			Run:         f.handleToggleWelcome,
		},
		{
			Name:        "set-welcome-template",
			Usage:       "<text|ordinal>",
			Description: "Set the welcome title. Placeholders: {user} {tag} {server} {inviter}. Use `ordinal` for \"Member #N has joined!\".",
			AdminOnly:   true,
			MinArgs:     1,
			Run:         f.handleSetWelcomeTemplate,
		},
		{
			Name:        "toggle-invite-tracking",
			Usage:       "<on|off>",
			Description: "Turn inviter attribution on or off.",
			AdminOnly:   true,
			MinArgs:     1,
			Run:         f.handleToggleInviteTracking,
		},
		{
			Name:        "set-log-channel",
			Usage:       "<channel>",
			Description: "Set the channel welcome notices are posted in.",
			AdminOnly:   true,
			MinArgs:     1,
			Run:         f.handleSetLogChannel,
		},
		{
			Name:        "status",
			Description: "Show this server's settings.",
			Run:         f.handleStatus,
		},
	}
}
