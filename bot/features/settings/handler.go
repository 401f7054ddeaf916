package settings

import (
	"context"
	"fmt"

	"guildkeeper/bot/common"
	"guildkeeper/models"
	"guildkeeper/service"

	log "github.com/sirupsen/logrus"
)

func toggleArg(inv *common.Invocation) (bool, error) {
	enabled, ok := common.ParseToggle(inv.Args[0])
	if !ok {
		return false, common.NewUserError(
			fmt.Sprintf("❌ Use `%s%s on` or `%s%s off`.", inv.Prefix, inv.Name, inv.Prefix, inv.Name),
			"invalid toggle argument",
		)
	}
	return enabled, nil
}

// handleToggleWelcome handles toggle-welcome <on|off>
func (f *Feature) handleToggleWelcome(ctx context.Context, inv *common.Invocation) (*common.Reply, error) {
	enabled, err := toggleArg(inv)
	if err != nil {
		return nil, err
	}

	settings, err := f.guildSettingsService.SetWelcomeEnabled(ctx, inv.GuildID, enabled)
	if err != nil {
		return nil, common.FromServiceError(err, "failed to toggle welcome notices")
	}

	message := fmt.Sprintf("✅ Welcome notices are now %s.", common.EnabledText(settings.WelcomeEnabled))
	if settings.WelcomeEnabled && !settings.HasLogChannel() {
		message += fmt.Sprintf(" Set a channel with `%sset-log-channel` so they have somewhere to go.", inv.Prefix)
	}
	return common.TextReply(message), nil
}

// handleSetWelcomeTemplate handles set-welcome-template <text|ordinal>
func (f *Feature) handleSetWelcomeTemplate(ctx context.Context, inv *common.Invocation) (*common.Reply, error) {
	settings, err := f.guildSettingsService.SetWelcomeTemplate(ctx, inv.GuildID, inv.Raw)
	if err != nil {
		return nil, common.FromServiceError(err, "failed to set welcome template")
	}

	if settings.MemberCountInTitle {
		return common.TextReply("✅ Welcome titles will now read \"Member #N has joined!\"."), nil
	}
	return common.TextReply(fmt.Sprintf("✅ Welcome template set to: %s", *settings.WelcomeTemplate)), nil
}

// handleToggleInviteTracking handles toggle-invite-tracking <on|off>. Turning
// tracking on takes a fresh invite snapshot right away.
func (f *Feature) handleToggleInviteTracking(ctx context.Context, inv *common.Invocation) (*common.Reply, error) {
	enabled, err := toggleArg(inv)
	if err != nil {
		return nil, err
	}

	settings, err := f.guildSettingsService.SetInviteTracking(ctx, inv.GuildID, enabled)
	if err != nil {
		return nil, common.FromServiceError(err, "failed to toggle invite tracking")
	}

	message := fmt.Sprintf("✅ Invite tracking is now %s.", common.EnabledText(settings.InviteTrackingEnabled))
	if !settings.InviteTrackingEnabled {
		return common.TextReply(message), nil
	}

	count, err := f.inviteService.RefreshGuild(ctx, inv.GuildID)
	if err != nil {
		log.WithFields(log.Fields{
			"guild_id": inv.GuildID,
		}).WithError(err).Warn("Invite refresh after enabling tracking failed")
		message += " ⚠️ I couldn't read this server's invites. Make sure I have the Manage Server permission."
		return common.TextReply(message), nil
	}

	message += fmt.Sprintf(" Tracking %d invite(s).", count)
	return common.TextReply(message), nil
}

// handleSetLogChannel handles set-log-channel <channel>
func (f *Feature) handleSetLogChannel(ctx context.Context, inv *common.Invocation) (*common.Reply, error) {
	channel, err := service.ResolveTextChannel(ctx, f.discord, inv.GuildID, inv.Args[0])
	if err != nil {
		return nil, common.FromServiceError(err, "failed to resolve log channel")
	}

	if _, err := f.guildSettingsService.SetLogChannel(ctx, inv.GuildID, channel.ID); err != nil {
		return nil, common.FromServiceError(err, "failed to set log channel")
	}

	return common.TextReply(fmt.Sprintf("✅ Welcome notices will be posted in <#%s>.", channel.ID)), nil
}

// handleStatus handles status
func (f *Feature) handleStatus(ctx context.Context, inv *common.Invocation) (*common.Reply, error) {
	settings, err := f.guildSettingsService.GetOrCreateSettings(ctx, inv.GuildID)
	if err != nil {
		return nil, common.NewSystemError(err, "failed to load settings")
	}

	fields := log.Fields{"guild_id": inv.GuildID}

	// Counts are informational; a read failure shows as zero
	messages, err := f.reactionRoleService.MessageCount(ctx, inv.GuildID)
	if err != nil {
		log.WithFields(fields).WithError(err).Warn("Failed to count role messages")
	}
	invites, err := f.inviteService.SnapshotSize(ctx, inv.GuildID)
	if err != nil {
		log.WithFields(fields).WithError(err).Warn("Failed to read invite snapshot size")
	}

	return &common.Reply{Notice: statusNotice(settings, messages, invites)}, nil
}

func statusNotice(settings *models.GuildSettings, roleMessages, trackedInvites int) *models.Notice {
	notice := &models.Notice{
		Title: "Server settings",
		Color: common.ColorPrimary,
	}

	logChannel := "Not set"
	if settings.HasLogChannel() {
		logChannel = fmt.Sprintf("<#%s>", *settings.LogChannelID)
	}

	template := "Default"
	if settings.HasCustomTemplate() {
		template = "Modified"
	}

	notice.AddField("Welcome notices", common.EnabledText(settings.WelcomeEnabled), true)
	notice.AddField("Log channel", logChannel, true)
	notice.AddField("Invite tracking", common.EnabledText(settings.InviteTrackingEnabled), true)
	notice.AddField("Welcome template", template, true)
	notice.AddField("Member count in title", common.EnabledText(settings.MemberCountInTitle), true)
	notice.AddField("Role messages", fmt.Sprintf("%d", roleMessages), true)
	notice.AddField("Tracked invites", fmt.Sprintf("%d", trackedInvites), true)
	return notice
}
