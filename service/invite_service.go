package service

import (
	"context"
	"fmt"

	"guildkeeper/events"
	"guildkeeper/models"

	log "github.com/sirupsen/logrus"
)

// Refresh reasons carried on InvitesRefreshedEvent
const (
	RefreshReasonStartup      = "startup"
	RefreshReasonInviteCreate = "invite_create"
	RefreshReasonMemberJoin   = "member_join"
	RefreshReasonCommand      = "command"
)

// JoinOutcome describes what a member join produced
type JoinOutcome struct {
	Notice      *models.Notice
	Attribution Attribution
	Inviter     *models.Invite
	Delivered   bool
}

// inviteService implements the InviteService interface
type inviteService struct {
	discord      Discord
	settingsRepo GuildSettingsRepository
	snapshotRepo InviteSnapshotRepository
	publisher    EventPublisher
	cards        CardRenderer // nil when welcome cards are disabled
}

// NewInviteService creates a new invite-attribution engine. cards may be nil.
func NewInviteService(discord Discord, settingsRepo GuildSettingsRepository, snapshotRepo InviteSnapshotRepository, publisher EventPublisher, cards CardRenderer) InviteService {
	return &inviteService{
		discord:      discord,
		settingsRepo: settingsRepo,
		snapshotRepo: snapshotRepo,
		publisher:    publisher,
		cards:        cards,
	}
}

// RefreshGuild replaces the guild's snapshot with a fresh fetch. A failed
// fetch leaves the stored snapshot as it was.
func (s *inviteService) RefreshGuild(ctx context.Context, guildID string) (int, error) {
	return s.refresh(ctx, guildID, RefreshReasonCommand)
}

// RefreshAll refreshes every guild; failures are logged per guild. The
// returned slice holds the guilds that were refreshed.
func (s *inviteService) RefreshAll(ctx context.Context, guildIDs []string) []string {
	refreshed := make([]string, 0, len(guildIDs))
	for _, guildID := range guildIDs {
		if ctx.Err() != nil {
			break
		}
		if _, err := s.refresh(ctx, guildID, RefreshReasonStartup); err != nil {
			log.WithField("guild_id", guildID).WithError(err).Warn("Failed to refresh invite snapshot (missing Manage Server permission?)")
			continue
		}
		refreshed = append(refreshed, guildID)
	}
	return refreshed
}

// HandleInviteCreate refetches the whole list instead of merging the new
// invite, since single-invite payloads are not a consistent baseline
func (s *inviteService) HandleInviteCreate(ctx context.Context, guildID, code string) error {
	count, err := s.refresh(ctx, guildID, RefreshReasonInviteCreate)
	if err != nil {
		return fmt.Errorf("failed to refresh invites after %s was created: %w", code, err)
	}
	log.WithFields(log.Fields{
		"guild_id":    guildID,
		"invite_code": code,
		"invites":     count,
	}).Info("Invite created, snapshot refreshed")
	return nil
}

// HandleInviteDelete drops the one deleted code from the snapshot
func (s *inviteService) HandleInviteDelete(ctx context.Context, guildID, code string) error {
	removed, err := s.snapshotRepo.Remove(ctx, guildID, code)
	if err != nil {
		return fmt.Errorf("failed to remove invite %s: %w", code, err)
	}
	if removed {
		log.WithFields(log.Fields{
			"guild_id":    guildID,
			"invite_code": code,
		}).Info("Invite deleted, removed from snapshot")
	}
	return nil
}

// HandleMemberJoin attributes the join to an invite, keeps the snapshot
// current and delivers the welcome notice
func (s *inviteService) HandleMemberJoin(ctx context.Context, member *models.Member) (*JoinOutcome, error) {
	fields := log.Fields{"guild_id": member.GuildID, "user_id": member.UserID}

	settings, err := s.settingsRepo.GetOrCreate(ctx, member.GuildID)
	if err != nil {
		return nil, fmt.Errorf("failed to load guild settings: %w", err)
	}
	if !settings.WelcomeEnabled || !settings.HasLogChannel() {
		log.WithFields(fields).Info("Welcome notices are off or have no channel, skipping join")
		return nil, nil
	}

	outcome := &JoinOutcome{Attribution: AttributionDisabled}
	if settings.InviteTrackingEnabled {
		outcome.Attribution, outcome.Inviter = s.attribute(ctx, member.GuildID)
	}

	input := WelcomeInput{
		Member:      member,
		Settings:    settings,
		Attribution: outcome.Attribution,
		Inviter:     outcome.Inviter,
	}
	if guild, err := s.discord.Guild(ctx, member.GuildID); err != nil {
		log.WithFields(fields).WithError(err).Warn("Failed to read guild info for welcome notice")
	} else {
		input.GuildName = guild.Name
		input.MemberCount = guild.MemberCount
	}

	outcome.Notice = ComposeWelcome(input)
	if s.cards != nil {
		card, err := s.cards.Render(input)
		if err != nil {
			log.WithFields(fields).WithError(err).Warn("Failed to render welcome card")
		} else {
			outcome.Notice.Card = card
			outcome.Notice.CardName = "welcome.png"
		}
	}

	if _, err := s.discord.SendNotice(ctx, *settings.LogChannelID, outcome.Notice); err != nil {
		log.WithFields(fields).WithField("channel_id", *settings.LogChannelID).WithError(err).Error("Failed to deliver welcome notice")
	} else {
		outcome.Delivered = true
		log.WithFields(fields).WithField("attribution", outcome.Attribution).Info("Delivered welcome notice")
	}

	welcomed := events.MemberWelcomedEvent{
		GuildID:     member.GuildID,
		UserID:      member.UserID,
		Attribution: string(outcome.Attribution),
		Delivered:   outcome.Delivered,
	}
	if outcome.Inviter != nil {
		welcomed.InviteCode = outcome.Inviter.Code
		welcomed.InviterID = outcome.Inviter.InviterID
	}
	s.publisher.Emit(ctx, welcomed)

	return outcome, nil
}

// attribute diffs a fresh fetch against the stored snapshot and then stores
// the fresh list whether or not an inviter was found
func (s *inviteService) attribute(ctx context.Context, guildID string) (Attribution, *models.Invite) {
	fields := log.Fields{"guild_id": guildID}

	fresh, err := s.discord.GuildInvites(ctx, guildID)
	if err != nil {
		log.WithFields(fields).WithError(err).Error("Failed to fetch invites for attribution")
		return AttributionUnavailable, nil
	}

	old, err := s.snapshotRepo.Get(ctx, guildID)
	if err != nil {
		log.WithFields(fields).WithError(err).Error("Failed to read invite snapshot")
		old = models.InviteSnapshot{}
	}

	inviter := AttributeInviter(old, fresh)

	if err := s.snapshotRepo.Replace(ctx, guildID, models.SnapshotFromInvites(fresh)); err != nil {
		log.WithFields(fields).WithError(err).Error("Failed to store invite snapshot")
	} else {
		s.publisher.Emit(ctx, events.InvitesRefreshedEvent{GuildID: guildID, InviteCount: len(fresh), Reason: RefreshReasonMemberJoin})
	}

	if inviter == nil {
		log.WithFields(fields).Info("No invite usage increased, inviter unknown")
		return AttributionUnknown, nil
	}

	log.WithFields(fields).WithFields(log.Fields{
		"invite_code": inviter.Code,
		"inviter_id":  inviter.InviterID,
	}).Info("Attributed join to invite")
	return AttributionFound, inviter
}

// SnapshotSize returns how many invite codes are tracked for the guild
func (s *inviteService) SnapshotSize(ctx context.Context, guildID string) (int, error) {
	snapshot, err := s.snapshotRepo.Get(ctx, guildID)
	if err != nil {
		return 0, err
	}
	return len(snapshot), nil
}

func (s *inviteService) refresh(ctx context.Context, guildID, reason string) (int, error) {
	invites, err := s.discord.GuildInvites(ctx, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch invites: %w", err)
	}

	if err := s.snapshotRepo.Replace(ctx, guildID, models.SnapshotFromInvites(invites)); err != nil {
		return 0, fmt.Errorf("failed to store invite snapshot: %w", err)
	}

	log.WithFields(log.Fields{
		"guild_id": guildID,
		"invites":  len(invites),
		"reason":   reason,
	}).Debug("Invite snapshot refreshed")
	s.publisher.Emit(ctx, events.InvitesRefreshedEvent{GuildID: guildID, InviteCount: len(invites), Reason: reason})
	return len(invites), nil
}

// AttributeInviter returns the first invite, in fresh order, whose usage
// count is strictly above the count recorded for the same code in old.
// Codes missing from old are never attributed.
func AttributeInviter(old models.InviteSnapshot, fresh []models.Invite) *models.Invite {
	for i := range fresh {
		previous, ok := old[fresh[i].Code]
		if ok && fresh[i].Uses > previous.Uses {
			inv := fresh[i]
			return &inv
		}
	}
	return nil
}
