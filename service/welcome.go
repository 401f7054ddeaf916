package service

import (
	"fmt"
	"strings"

	"guildkeeper/models"
)

// Attribution is the outcome of looking for a member's inviter
type Attribution string

const (
	AttributionDisabled    Attribution = "disabled"    // Tracking is off for the guild
	AttributionFound       Attribution = "found"       // An invite's usage count went up
	AttributionUnknown     Attribution = "unknown"     // No invite's usage count went up
	AttributionUnavailable Attribution = "unavailable" // The invite list could not be fetched
)

// Welcome notice texts
const (
	DefaultWelcomeTitle    = "A new member has joined!"
	UnknownInviterText     = "Unknown inviter"
	UnavailableInviterText = "Invite data unavailable"

	FieldUser           = "User"
	FieldJoinedAt       = "Joined"
	FieldAccountCreated = "Account created"
	FieldInviter        = "Inviter"
)

// WelcomeInput is everything the welcome notice is built from
type WelcomeInput struct {
	Member      *models.Member
	Settings    *models.GuildSettings
	GuildName   string
	MemberCount int // 0 when the count could not be read
	Attribution Attribution
	Inviter     *models.Invite // Set when Attribution is AttributionFound
}

// ComposeWelcome builds the welcome notice for a member join
func ComposeWelcome(in WelcomeInput) *models.Notice {
	notice := &models.Notice{
		Title:        welcomeTitle(in),
		Color:        RoleMessageColor,
		ThumbnailURL: in.Member.AvatarURL,
	}

	notice.AddField(FieldUser, fmt.Sprintf("%s (%s)", in.Member.Mention(), in.Member.DisplayName()), false)
	if !in.Member.JoinedAt.IsZero() {
		notice.AddField(FieldJoinedAt, fullAndRelative(in.Member.JoinedAt.Unix()), false)
	}
	if !in.Member.CreatedAt.IsZero() {
		notice.AddField(FieldAccountCreated, fullAndRelative(in.Member.CreatedAt.Unix()), false)
	}
	if in.Settings.InviteTrackingEnabled {
		notice.AddField(FieldInviter, inviterText(in), false)
	}

	return notice
}

func welcomeTitle(in WelcomeInput) string {
	switch {
	case in.Settings.MemberCountInTitle && in.MemberCount > 0:
		return fmt.Sprintf("Member #%d has joined!", in.MemberCount)
	case in.Settings.MemberCountInTitle:
		return DefaultWelcomeTitle
	case in.Settings.HasCustomTemplate():
		return applyTemplate(*in.Settings.WelcomeTemplate, in)
	default:
		return DefaultWelcomeTitle
	}
}

func applyTemplate(template string, in WelcomeInput) string {
	inviter := UnknownInviterText
	if in.Inviter != nil {
		inviter = inviterLabel(in.Inviter)
	}

	return strings.NewReplacer(
		"{user}", "**"+in.Member.Mention()+"**",
		"{tag}", in.Member.Tag(),
		"{server}", in.GuildName,
		"{inviter}", inviter,
	).Replace(template)
}

func inviterText(in WelcomeInput) string {
	switch in.Attribution {
	case AttributionFound:
		if in.Inviter != nil {
			return inviterLabel(in.Inviter)
		}
		return UnknownInviterText
	case AttributionUnavailable:
		return UnavailableInviterText
	default:
		return UnknownInviterText
	}
}

func inviterLabel(inv *models.Invite) string {
	if inv.InviterID == "" {
		return UnknownInviterText
	}
	if inv.InviterName == "" {
		return fmt.Sprintf("<@%s>", inv.InviterID)
	}
	return fmt.Sprintf("<@%s> (%s)", inv.InviterID, inv.InviterName)
}

func fullAndRelative(unix int64) string {
	return fmt.Sprintf("<t:%d:f> (<t:%d:R>)", unix, unix)
}
