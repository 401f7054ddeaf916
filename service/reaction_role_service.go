package service

import (
	"context"
	"errors"
	"fmt"

	"guildkeeper/events"
	"guildkeeper/models"

	log "github.com/sirupsen/logrus"
)

// RoleMessageColor is the embed color of role messages and welcome notices
const RoleMessageColor = 0xBF8EEF

// ReactionEvent is a reaction added to or removed from a message. GuildID is
// empty when the platform delivered a partial payload.
type ReactionEvent struct {
	GuildID   string
	ChannelID string
	MessageID string
	UserID    string
	Emoji     models.Emoji
	UserIsBot bool
}

// CreateRoleMessageRequest asks for a new role message in a channel
type CreateRoleMessageRequest struct {
	GuildID    string
	ChannelRef string // Mention, id or name
	EmojiInput string
	RoleRef    string // Mention, id or exact name
}

// AddBindingRequest asks for another binding on an existing message
type AddBindingRequest struct {
	GuildID    string
	ChannelRef string
	MessageID  string
	EmojiInput string
	RoleRef    string
}

// RoleBindingResult describes a binding that was stored
type RoleBindingResult struct {
	ChannelID string
	MessageID string
	Emoji     models.Emoji
	Role      *models.Role
}

// reactionRoleService implements the ReactionRoleService interface
type reactionRoleService struct {
	discord     Discord
	repo        ReactionRoleRepository
	suppression *SuppressionSet
	publisher   EventPublisher
}

// NewReactionRoleService creates a new reaction-role engine
func NewReactionRoleService(discord Discord, repo ReactionRoleRepository, suppression *SuppressionSet, publisher EventPublisher) ReactionRoleService {
	return &reactionRoleService{
		discord:     discord,
		repo:        repo,
		suppression: suppression,
		publisher:   publisher,
	}
}

// HandleReactionAdd grants the bound roles and then clears the user's
// reaction so the visible count stays at zero
func (s *reactionRoleService) HandleReactionAdd(ctx context.Context, ev ReactionEvent) error {
	if s.isSelf(ev) {
		return nil
	}

	guildID, err := s.resolveGuild(ctx, ev)
	if err != nil {
		return err
	}

	matches, err := s.matchingBindings(ctx, guildID, ev)
	if err != nil || len(matches) == 0 {
		return err
	}

	member, err := s.discord.GuildMember(ctx, guildID, ev.UserID)
	if err != nil {
		return fmt.Errorf("failed to fetch member %s: %w", ev.UserID, err)
	}

	fields := log.Fields{
		"guild_id":   guildID,
		"message_id": ev.MessageID,
		"user_id":    ev.UserID,
		"emoji":      ev.Emoji.Key(),
	}

	for _, binding := range matches {
		role, err := lookupRole(ctx, s.discord, guildID, binding.RoleID)
		if err != nil {
			return err
		}

		roleFields := log.Fields{"role_id": role.ID, "role": role.Name}
		if member.HasRole(role.ID) {
			log.WithFields(fields).WithFields(roleFields).Info("Member already has role")
			continue
		}

		if err := s.discord.AddRole(ctx, guildID, ev.UserID, role.ID); err != nil {
			log.WithFields(fields).WithFields(roleFields).WithError(err).Error("Failed to grant role")
			continue
		}

		// Later duplicates of the same role on this event see the grant
		member.RoleIDs = append(member.RoleIDs, role.ID)
		log.WithFields(fields).WithFields(roleFields).Info("Granted role")
		s.publisher.Emit(ctx, events.RoleGrantedEvent{
			GuildID:   guildID,
			MessageID: ev.MessageID,
			UserID:    ev.UserID,
			RoleID:    role.ID,
			Emoji:     ev.Emoji.Key(),
		})
	}

	s.clearReaction(ctx, ev, fields)
	return nil
}

// clearReaction removes the user's reaction, marking it first so the echoed
// remove event is ignored
func (s *reactionRoleService) clearReaction(ctx context.Context, ev ReactionEvent, fields log.Fields) {
	key := suppressionKey(ev)
	s.suppression.Mark(key)

	if err := s.discord.RemoveUserReaction(ctx, ev.ChannelID, ev.MessageID, ev.Emoji, ev.UserID); err != nil {
		s.suppression.Forget(key)
		log.WithFields(fields).WithError(err).Warn("Failed to remove user reaction")
	}
}

// HandleReactionRemove revokes the bound roles unless the removal was the
// bot's own
func (s *reactionRoleService) HandleReactionRemove(ctx context.Context, ev ReactionEvent) error {
	if s.suppression.Consume(suppressionKey(ev)) {
		log.WithFields(log.Fields{
			"message_id": ev.MessageID,
			"user_id":    ev.UserID,
			"emoji":      ev.Emoji.Key(),
		}).Debug("Ignored echo of bot reaction removal")
		s.publisher.Emit(ctx, events.ReactionSuppressedEvent{
			GuildID:   ev.GuildID,
			MessageID: ev.MessageID,
			UserID:    ev.UserID,
			Emoji:     ev.Emoji.Key(),
		})
		return nil
	}

	if s.isSelf(ev) {
		return nil
	}

	guildID, err := s.resolveGuild(ctx, ev)
	if err != nil {
		return err
	}

	matches, err := s.matchingBindings(ctx, guildID, ev)
	if err != nil || len(matches) == 0 {
		return err
	}

	member, err := s.discord.GuildMember(ctx, guildID, ev.UserID)
	if err != nil {
		return fmt.Errorf("failed to fetch member %s: %w", ev.UserID, err)
	}

	fields := log.Fields{
		"guild_id":   guildID,
		"message_id": ev.MessageID,
		"user_id":    ev.UserID,
		"emoji":      ev.Emoji.Key(),
	}

	for _, binding := range matches {
		role, err := lookupRole(ctx, s.discord, guildID, binding.RoleID)
		if err != nil {
			return err
		}

		roleFields := log.Fields{"role_id": role.ID, "role": role.Name}
		if !member.HasRole(role.ID) {
			log.WithFields(fields).WithFields(roleFields).Info("Member does not have role, nothing to revoke")
			continue
		}

		if err := s.discord.RemoveRole(ctx, guildID, ev.UserID, role.ID); err != nil {
			log.WithFields(fields).WithFields(roleFields).WithError(err).Error("Failed to revoke role")
			continue
		}

		member.RoleIDs = removeString(member.RoleIDs, role.ID)
		log.WithFields(fields).WithFields(roleFields).Info("Revoked role")
		s.publisher.Emit(ctx, events.RoleRevokedEvent{
			GuildID:   guildID,
			MessageID: ev.MessageID,
			UserID:    ev.UserID,
			RoleID:    role.ID,
			Emoji:     ev.Emoji.Key(),
		})
	}

	return nil
}

// CreateRoleMessage checks that the bot can grant the role before anything
// is sent, then posts the message, seeds the reaction and stores the binding
func (s *reactionRoleService) CreateRoleMessage(ctx context.Context, req CreateRoleMessageRequest) (*RoleBindingResult, error) {
	channel, emoji, role, err := s.resolveBindingTarget(ctx, req.GuildID, req.ChannelRef, req.EmojiInput, req.RoleRef)
	if err != nil {
		return nil, err
	}

	messageID, err := s.discord.SendNotice(ctx, channel.ID, roleMessageNotice(emoji, role))
	if err != nil {
		return nil, fmt.Errorf("failed to send role message: %w", err)
	}

	if err := s.discord.AddReaction(ctx, channel.ID, messageID, emoji); err != nil {
		return nil, fmt.Errorf("failed to add seed reaction: %w", err)
	}

	binding := models.ReactionRoleBinding{Emoji: emoji.Key(), RoleID: role.ID}
	if err := s.repo.AddBinding(ctx, req.GuildID, messageID, binding); err != nil {
		return nil, fmt.Errorf("failed to store binding: %w", err)
	}

	log.WithFields(log.Fields{
		"guild_id":   req.GuildID,
		"channel_id": channel.ID,
		"message_id": messageID,
		"emoji":      emoji.Key(),
		"role_id":    role.ID,
	}).Info("Created role message")

	return &RoleBindingResult{ChannelID: channel.ID, MessageID: messageID, Emoji: emoji, Role: role}, nil
}

// AddBinding binds another emoji on a message that already exists
func (s *reactionRoleService) AddBinding(ctx context.Context, req AddBindingRequest) (*RoleBindingResult, error) {
	channel, emoji, role, err := s.resolveBindingTarget(ctx, req.GuildID, req.ChannelRef, req.EmojiInput, req.RoleRef)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Get(ctx, req.GuildID, req.MessageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bindings: %w", err)
	}
	if existing != nil && existing.HasEmoji(emoji.Key()) {
		return nil, fmt.Errorf("message %s emoji %s: %w", req.MessageID, emoji, models.ErrDuplicateEmoji)
	}

	// Reacting also proves the message exists in that channel
	if err := s.discord.AddReaction(ctx, channel.ID, req.MessageID, emoji); err != nil {
		return nil, fmt.Errorf("failed to react on message %s: %w", req.MessageID, err)
	}

	binding := models.ReactionRoleBinding{Emoji: emoji.Key(), RoleID: role.ID}
	if err := s.repo.AddBinding(ctx, req.GuildID, req.MessageID, binding); err != nil {
		return nil, fmt.Errorf("failed to store binding: %w", err)
	}

	log.WithFields(log.Fields{
		"guild_id":   req.GuildID,
		"message_id": req.MessageID,
		"emoji":      emoji.Key(),
		"role_id":    role.ID,
	}).Info("Added role binding")

	return &RoleBindingResult{ChannelID: channel.ID, MessageID: req.MessageID, Emoji: emoji, Role: role}, nil
}

// MessageCount returns how many role messages the guild has
func (s *reactionRoleService) MessageCount(ctx context.Context, guildID string) (int, error) {
	return s.repo.Count(ctx, guildID)
}

func (s *reactionRoleService) resolveBindingTarget(ctx context.Context, guildID, channelRef, emojiInput, roleRef string) (*models.Channel, models.Emoji, *models.Role, error) {
	channel, err := ResolveTextChannel(ctx, s.discord, guildID, channelRef)
	if err != nil {
		return nil, models.Emoji{}, nil, err
	}

	emoji, err := models.ParseEmoji(emojiInput)
	if err != nil {
		return nil, models.Emoji{}, nil, fmt.Errorf("%w: %v", ErrInvalidEmoji, err)
	}

	role, err := ResolveRole(ctx, s.discord, guildID, roleRef)
	if err != nil {
		return nil, models.Emoji{}, nil, err
	}

	if err := CheckRoleAssignable(ctx, s.discord, guildID, role); err != nil {
		return nil, models.Emoji{}, nil, err
	}

	return channel, emoji, role, nil
}

func (s *reactionRoleService) isSelf(ev ReactionEvent) bool {
	return ev.UserIsBot || ev.UserID == s.discord.SelfUserID()
}

// resolveGuild fills in the guild of a partial payload from its channel
func (s *reactionRoleService) resolveGuild(ctx context.Context, ev ReactionEvent) (string, error) {
	if ev.GuildID != "" {
		return ev.GuildID, nil
	}

	channel, err := s.discord.Channel(ctx, ev.ChannelID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve partial reaction on message %s: %w", ev.MessageID, err)
	}
	if channel.GuildID == "" {
		return "", fmt.Errorf("reaction on message %s is outside a guild", ev.MessageID)
	}
	return channel.GuildID, nil
}

func (s *reactionRoleService) matchingBindings(ctx context.Context, guildID string, ev ReactionEvent) ([]models.ReactionRoleBinding, error) {
	msg, err := s.repo.Get(ctx, guildID, ev.MessageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bindings for message %s: %w", ev.MessageID, err)
	}
	if msg == nil {
		return nil, nil
	}
	return msg.Matching(ev.Emoji), nil
}

func suppressionKey(ev ReactionEvent) SuppressionKey {
	return SuppressionKey{MessageID: ev.MessageID, UserID: ev.UserID, Emoji: ev.Emoji.Key()}
}

func roleMessageNotice(emoji models.Emoji, role *models.Role) *models.Notice {
	return &models.Notice{
		Title:       "Pick your role",
		Description: fmt.Sprintf("React with %s below to receive %s.", emoji, role.Mention()),
		Color:       RoleMessageColor,
	}
}

func removeString(values []string, target string) []string {
	out := values[:0]
	for _, v := range values {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}

// IsDanglingBinding reports whether err came from a binding whose role was deleted
func IsDanglingBinding(err error) bool {
	return errors.Is(err, ErrRoleNotFound)
}
