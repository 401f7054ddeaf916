package service

import (
	"context"

	"guildkeeper/events"
	"guildkeeper/models"
)

// GuildSettingsRepository defines the interface for per-guild settings storage
type GuildSettingsRepository interface {
	// GetOrCreate returns the guild's settings, persisting defaults for a new guild
	GetOrCreate(ctx context.Context, guildID string) (*models.GuildSettings, error)

	// Update replaces the guild's settings
	Update(ctx context.Context, settings *models.GuildSettings) error
}

// ReactionRoleRepository defines the interface for reaction-role binding storage
type ReactionRoleRepository interface {
	// Get returns the message's bindings, or nil when the message is not registered
	Get(ctx context.Context, guildID, messageID string) (*models.ReactionRoleMessage, error)

	// AddBinding appends a binding, failing with models.ErrDuplicateEmoji when
	// the emoji is already bound on the message
	AddBinding(ctx context.Context, guildID, messageID string, binding models.ReactionRoleBinding) error

	// Count returns how many messages of the guild carry bindings
	Count(ctx context.Context, guildID string) (int, error)
}

// InviteSnapshotRepository defines the interface for invite snapshot storage
type InviteSnapshotRepository interface {
	// Get returns the guild's snapshot, empty when none was stored
	Get(ctx context.Context, guildID string) (models.InviteSnapshot, error)

	// Replace overwrites the guild's whole snapshot
	Replace(ctx context.Context, guildID string, snapshot models.InviteSnapshot) error

	// Remove deletes one code and reports whether it was present
	Remove(ctx context.Context, guildID, code string) (bool, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event)
}

// Discord is the slice of the chat platform the services need. Reads may be
// served from a cache and can be stale.
type Discord interface {
	// SelfUserID returns the bot's own user id
	SelfUserID() string

	Channel(ctx context.Context, channelID string) (*models.Channel, error)
	GuildChannels(ctx context.Context, guildID string) ([]*models.Channel, error)
	Guild(ctx context.Context, guildID string) (*models.Guild, error)

	// GuildMember fetches the member fresh so its role list is current
	GuildMember(ctx context.Context, guildID, userID string) (*models.Member, error)

	// GuildRole returns models.ErrNotFound when the role no longer exists
	GuildRole(ctx context.Context, guildID, roleID string) (*models.Role, error)
	GuildRoles(ctx context.Context, guildID string) ([]*models.Role, error)

	// BotHighestRolePosition is the position of the highest role the bot holds
	BotHighestRolePosition(ctx context.Context, guildID string) (int, error)

	AddRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID string) error

	AddReaction(ctx context.Context, channelID, messageID string, emoji models.Emoji) error
	RemoveUserReaction(ctx context.Context, channelID, messageID string, emoji models.Emoji, userID string) error

	// SendNotice posts an embed and returns the new message's id
	SendNotice(ctx context.Context, channelID string, notice *models.Notice) (string, error)

	// GuildInvites fetches the full invite list in platform order
	GuildInvites(ctx context.Context, guildID string) ([]models.Invite, error)
}

// CardRenderer draws the optional welcome card image
type CardRenderer interface {
	Render(input WelcomeInput) ([]byte, error)
}

// GuildSettingsService defines the interface for guild settings operations
type GuildSettingsService interface {
	// GetOrCreateSettings retrieves guild settings or creates default ones if not found
	GetOrCreateSettings(ctx context.Context, guildID string) (*models.GuildSettings, error)

	// SetWelcomeEnabled turns welcome notices on or off
	SetWelcomeEnabled(ctx context.Context, guildID string, enabled bool) (*models.GuildSettings, error)

	// SetWelcomeTemplate stores a custom title template, or switches to
	// member-count titles when text is the ordinal keyword
	SetWelcomeTemplate(ctx context.Context, guildID string, text string) (*models.GuildSettings, error)

	// SetInviteTracking turns inviter attribution on or off
	SetInviteTracking(ctx context.Context, guildID string, enabled bool) (*models.GuildSettings, error)

	// SetLogChannel sets the channel welcome notices are sent to
	SetLogChannel(ctx context.Context, guildID string, channelID string) (*models.GuildSettings, error)
}

// ReactionRoleService defines the interface for the reaction-role engine
type ReactionRoleService interface {
	HandleReactionAdd(ctx context.Context, ev ReactionEvent) error
	HandleReactionRemove(ctx context.Context, ev ReactionEvent) error

	// CreateRoleMessage posts a new role message with its first binding
	CreateRoleMessage(ctx context.Context, req CreateRoleMessageRequest) (*RoleBindingResult, error)

	// AddBinding binds another emoji on an existing message
	AddBinding(ctx context.Context, req AddBindingRequest) (*RoleBindingResult, error)

	// MessageCount returns how many role messages the guild has
	MessageCount(ctx context.Context, guildID string) (int, error)
}

// InviteService defines the interface for the invite-attribution engine
type InviteService interface {
	// RefreshGuild replaces the guild's snapshot with a fresh fetch and
	// returns the number of invites stored
	RefreshGuild(ctx context.Context, guildID string) (int, error)

	// RefreshAll refreshes every guild, logging per-guild failures, and
	// returns the guilds whose snapshot was stored
	RefreshAll(ctx context.Context, guildIDs []string) []string

	HandleInviteCreate(ctx context.Context, guildID, code string) error
	HandleInviteDelete(ctx context.Context, guildID, code string) error

	// HandleMemberJoin attributes the join and delivers the welcome notice.
	// It returns nil when welcome notices are off for the guild.
	HandleMemberJoin(ctx context.Context, member *models.Member) (*JoinOutcome, error)

	// SnapshotSize returns how many invite codes are tracked for the guild
	SnapshotSize(ctx context.Context, guildID string) (int, error)
}
