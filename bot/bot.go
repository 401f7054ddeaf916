package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"guildkeeper/bot/common"
	"guildkeeper/bot/features/help"
	"guildkeeper/bot/features/reactionroles"
	"guildkeeper/bot/features/settings"
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Gateway intents the bot needs: guild and member state, message content
// for commands, reactions and invite changes
const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsMessageContent |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentsGuildInvites

const eventTimeout = 30 * time.Second

// Config holds bot configuration
type Config struct {
	Token  string
	Prefix string
}

// Services are the engines the bot routes gateway events to
type Services struct {
	ReactionRoles service.ReactionRoleService
	Invites       service.InviteService
	Settings      service.GuildSettingsService
}

// commandFeature is a bot feature that contributes prefix commands
type commandFeature interface {
	Commands() []*common.Command
}

type Bot struct {
	config   Config
	session  *discordgo.Session
	gateway  *discordGateway
	services Services
	router   *CommandRouter

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	readyGuilds map[string]readyState // Guilds listed in the Ready payload
}

// readyState tracks the startup refresh of a guild listed in Ready
type readyState int

const (
	readyPending readyState = iota + 1
	readyRefreshed
)

// New creates the discord session. The gateway connection is opened by Start
// so that services can be built on Gateway first.
func New(config Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = intents

	ctx, cancel := context.WithCancel(context.Background())
	return &Bot{
		config:      config,
		session:     dg,
		gateway:     newDiscordGateway(dg),
		ctx:         ctx,
		cancel:      cancel,
		readyGuilds: make(map[string]readyState),
	}, nil
}

// Gateway returns the platform adapter the services run against
func (b *Bot) Gateway() service.Discord {
	return b.gateway
}

// Start registers the features and event handlers and opens the connection
func (b *Bot) Start(services Services) error {
	b.services = services
	b.router = NewCommandRouter(b.config.Prefix, b.gateway, b.gateway)

	features := []commandFeature{
		reactionroles.NewFeature(services.ReactionRoles),
		settings.NewFeature(b.gateway, services.Settings, services.Invites, services.ReactionRoles),
		help.NewFeature(b.router),
	}
	for _, feature := range features {
		b.router.Register(feature.Commands()...)
	}

	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(b.handleGuildCreate)
	b.session.AddHandler(b.handleGuildMemberAdd)
	b.session.AddHandler(b.handleMessageCreate)
	b.session.AddHandler(b.handleReactionAdd)
	b.session.AddHandler(b.handleReactionRemove)
	b.session.AddHandler(b.handleInviteCreate)
	b.session.AddHandler(b.handleInviteDelete)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	log.WithFields(log.Fields{
		"prefix":   b.config.Prefix,
		"commands": len(b.router.Commands()),
	}).Info("Discord connection opened")
	return nil
}

func (b *Bot) Close() error {
	b.cancel()
	return b.session.Close()
}

func (b *Bot) eventContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(b.ctx, eventTimeout)
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	guildIDs := make([]string, 0, len(r.Guilds))
	for _, guild := range r.Guilds {
		guildIDs = append(guildIDs, guild.ID)
	}

	fields := log.Fields{"guilds": len(guildIDs)}
	if r.User != nil {
		fields["user"] = r.User.Username
	}
	log.WithFields(fields).Info("Bot is ready")

	b.markReadyPending(guildIDs)
	go func() {
		ctx, cancel := context.WithTimeout(b.ctx, time.Duration(len(guildIDs)+1)*eventTimeout)
		defer cancel()
		b.refreshReadyGuilds(ctx, guildIDs)
	}()
}

func (b *Bot) markReadyPending(guildIDs []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range guildIDs {
		b.readyGuilds[id] = readyPending
	}
}

// refreshReadyGuilds runs the startup refresh. Only guilds whose snapshot was
// stored are marked refreshed; the rest wait for their GuildCreate.
func (b *Bot) refreshReadyGuilds(ctx context.Context, guildIDs []string) {
	refreshed := make(map[string]bool, len(guildIDs))
	for _, id := range b.services.Invites.RefreshAll(ctx, guildIDs) {
		refreshed[id] = true
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range guildIDs {
		// A GuildCreate that arrived meanwhile already cleared the entry
		if b.readyGuilds[id] != readyPending {
			continue
		}
		if refreshed[id] {
			b.readyGuilds[id] = readyRefreshed
		} else {
			delete(b.readyGuilds, id)
		}
	}
}

// takeReadyRefreshed reports whether the Ready refresh already covered the
// guild, clearing its entry either way
func (b *Bot) takeReadyRefreshed(guildID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	state := b.readyGuilds[guildID]
	delete(b.readyGuilds, guildID)
	return state == readyRefreshed
}

// handleGuildCreate refreshes guilds joined after startup and guilds the
// Ready refresh could not reach
func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if b.takeReadyRefreshed(g.ID) {
		return
	}

	ctx, cancel := b.eventContext()
	defer cancel()

	count, err := b.services.Invites.RefreshGuild(ctx, g.ID)
	fields := log.Fields{"guild_id": g.ID, "guild_name": g.Name}
	if err != nil {
		log.WithFields(fields).WithError(err).Warn("Failed to refresh invites for new guild")
		return
	}
	log.WithFields(fields).WithField("invites", count).Info("Joined guild")
}

func (b *Bot) handleGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.Member == nil || m.User == nil {
		return
	}

	ctx, cancel := b.eventContext()
	defer cancel()

	member := toMember(m.Member)
	if _, err := b.services.Invites.HandleMemberJoin(ctx, member); err != nil {
		log.WithFields(log.Fields{
			"guild_id": member.GuildID,
			"user_id":  member.UserID,
		}).WithError(err).Error("Failed to handle member join")
	}
}

func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil {
		return
	}

	ctx, cancel := b.eventContext()
	defer cancel()

	b.router.Dispatch(ctx, IncomingMessage{
		GuildID:     m.GuildID,
		ChannelID:   m.ChannelID,
		MessageID:   m.ID,
		AuthorID:    m.Author.ID,
		AuthorIsBot: m.Author.Bot,
		Content:     m.Content,
	})
}

func (b *Bot) handleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	ctx, cancel := b.eventContext()
	defer cancel()

	ev := reactionEvent(r.MessageReaction, r.Member)
	if err := b.services.ReactionRoles.HandleReactionAdd(ctx, ev); err != nil {
		logReactionError(ev, err, "Failed to handle reaction add")
	}
}

func (b *Bot) handleReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	ctx, cancel := b.eventContext()
	defer cancel()

	ev := reactionEvent(r.MessageReaction, nil)
	if member, err := s.State.Member(ev.GuildID, ev.UserID); err == nil && member.User != nil {
		ev.UserIsBot = member.User.Bot
	}
	if err := b.services.ReactionRoles.HandleReactionRemove(ctx, ev); err != nil {
		logReactionError(ev, err, "Failed to handle reaction remove")
	}
}

func (b *Bot) handleInviteCreate(s *discordgo.Session, i *discordgo.InviteCreate) {
	if i.Invite == nil {
		return
	}

	ctx, cancel := b.eventContext()
	defer cancel()

	if err := b.services.Invites.HandleInviteCreate(ctx, i.GuildID, i.Code); err != nil {
		log.WithFields(log.Fields{
			"guild_id": i.GuildID,
			"code":     i.Code,
		}).WithError(err).Warn("Failed to refresh invites after invite create")
	}
}

func (b *Bot) handleInviteDelete(s *discordgo.Session, i *discordgo.InviteDelete) {
	ctx, cancel := b.eventContext()
	defer cancel()

	if err := b.services.Invites.HandleInviteDelete(ctx, i.GuildID, i.Code); err != nil {
		log.WithFields(log.Fields{
			"guild_id": i.GuildID,
			"code":     i.Code,
		}).WithError(err).Warn("Failed to drop deleted invite")
	}
}

func reactionEvent(r *discordgo.MessageReaction, member *discordgo.Member) service.ReactionEvent {
	ev := service.ReactionEvent{
		GuildID:   r.GuildID,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		UserID:    r.UserID,
		Emoji:     toEmoji(r.Emoji),
	}
	if member != nil && member.User != nil {
		ev.UserIsBot = member.User.Bot
	}
	return ev
}

func logReactionError(ev service.ReactionEvent, err error, message string) {
	fields := log.Fields{
		"guild_id":   ev.GuildID,
		"message_id": ev.MessageID,
		"user_id":    ev.UserID,
		"emoji":      ev.Emoji.Key(),
	}
	if service.IsDanglingBinding(err) {
		log.WithFields(fields).WithError(err).Warn("Role message is bound to a deleted role")
		return
	}
	log.WithFields(fields).WithError(err).Error(message)
}
