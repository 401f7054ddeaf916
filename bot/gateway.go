package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"guildkeeper/bot/common"
	"guildkeeper/models"
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
)

// discordGateway implements service.Discord over a discordgo session. Reads
// go to the session state first and fall back to REST.
type discordGateway struct {
	session *discordgo.Session
}

var (
	_ service.Discord          = (*discordGateway)(nil)
	_ common.Responder         = (*discordGateway)(nil)
	_ common.PermissionChecker = (*discordGateway)(nil)
)

func newDiscordGateway(session *discordgo.Session) *discordGateway {
	return &discordGateway{session: session}
}

func (g *discordGateway) SelfUserID() string {
	if g.session.State == nil || g.session.State.User == nil {
		return ""
	}
	return g.session.State.User.ID
}

func (g *discordGateway) Channel(ctx context.Context, channelID string) (*models.Channel, error) {
	if ch, err := g.session.State.Channel(channelID); err == nil {
		return toChannel(ch), nil
	}
	ch, err := g.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, notFound(err)
	}
	return toChannel(ch), nil
}

func (g *discordGateway) GuildChannels(ctx context.Context, guildID string) ([]*models.Channel, error) {
	var channels []*discordgo.Channel
	if guild, err := g.session.State.Guild(guildID); err == nil && len(guild.Channels) > 0 {
		channels = guild.Channels
	} else {
		channels, err = g.session.GuildChannels(guildID, discordgo.WithContext(ctx))
		if err != nil {
			return nil, err
		}
	}

	result := make([]*models.Channel, 0, len(channels))
	for _, ch := range channels {
		result = append(result, toChannel(ch))
	}
	return result, nil
}

func (g *discordGateway) Guild(ctx context.Context, guildID string) (*models.Guild, error) {
	if guild, err := g.session.State.Guild(guildID); err == nil && guild.MemberCount > 0 {
		return toGuild(guild), nil
	}
	guild, err := g.session.GuildWithCounts(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, notFound(err)
	}
	return toGuild(guild), nil
}

func (g *discordGateway) GuildMember(ctx context.Context, guildID, userID string) (*models.Member, error) {
	member, err := g.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, notFound(err)
	}
	if member.GuildID == "" {
		member.GuildID = guildID
	}
	return toMember(member), nil
}

func (g *discordGateway) GuildRole(ctx context.Context, guildID, roleID string) (*models.Role, error) {
	if role, err := g.session.State.Role(guildID, roleID); err == nil {
		return toRole(role), nil
	}

	roles, err := g.GuildRoles(ctx, guildID)
	if err != nil {
		return nil, err
	}
	for _, role := range roles {
		if role.ID == roleID {
			return role, nil
		}
	}
	return nil, fmt.Errorf("role %s: %w", roleID, models.ErrNotFound)
}

func (g *discordGateway) GuildRoles(ctx context.Context, guildID string) ([]*models.Role, error) {
	var roles []*discordgo.Role
	if guild, err := g.session.State.Guild(guildID); err == nil && len(guild.Roles) > 0 {
		roles = guild.Roles
	} else {
		roles, err = g.session.GuildRoles(guildID, discordgo.WithContext(ctx))
		if err != nil {
			return nil, err
		}
	}

	result := make([]*models.Role, 0, len(roles))
	for _, role := range roles {
		result = append(result, toRole(role))
	}
	return result, nil
}

func (g *discordGateway) BotHighestRolePosition(ctx context.Context, guildID string) (int, error) {
	self, err := g.GuildMember(ctx, guildID, g.SelfUserID())
	if err != nil {
		return 0, fmt.Errorf("failed to fetch bot member: %w", err)
	}
	roles, err := g.GuildRoles(ctx, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch guild roles: %w", err)
	}
	return highestPosition(self.RoleIDs, roles), nil
}

func (g *discordGateway) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	return g.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (g *discordGateway) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	return g.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (g *discordGateway) AddReaction(ctx context.Context, channelID, messageID string, emoji models.Emoji) error {
	return g.session.MessageReactionAdd(channelID, messageID, emoji.APIName(), discordgo.WithContext(ctx))
}

func (g *discordGateway) RemoveUserReaction(ctx context.Context, channelID, messageID string, emoji models.Emoji, userID string) error {
	return g.session.MessageReactionRemove(channelID, messageID, emoji.APIName(), userID, discordgo.WithContext(ctx))
}

func (g *discordGateway) SendNotice(ctx context.Context, channelID string, notice *models.Notice) (string, error) {
	msg, err := g.session.ChannelMessageSendComplex(channelID, noticeMessage(notice), discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (g *discordGateway) GuildInvites(ctx context.Context, guildID string) ([]models.Invite, error) {
	invites, err := g.session.GuildInvites(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return toInvites(invites), nil
}

// Reply answers a command in the channel it was sent in, referencing the
// command message
func (g *discordGateway) Reply(ctx context.Context, inv *common.Invocation, reply *common.Reply) error {
	send := &discordgo.MessageSend{Content: reply.Content}
	if reply.Notice != nil {
		send = noticeMessage(reply.Notice)
		send.Content = reply.Content
	}
	if inv.MessageID != "" {
		send.Reference = &discordgo.MessageReference{
			MessageID: inv.MessageID,
			ChannelID: inv.ChannelID,
			GuildID:   inv.GuildID,
		}
	}
	_, err := g.session.ChannelMessageSendComplex(inv.ChannelID, send, discordgo.WithContext(ctx))
	return err
}

// IsAdmin checks the Administrator permission across the member's roles.
// The guild owner always counts as administrator.
func (g *discordGateway) IsAdmin(ctx context.Context, guildID, userID string) (bool, error) {
	member, err := g.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return false, err
	}

	if guild, err := g.session.State.Guild(guildID); err == nil && guild.OwnerID == userID {
		return true, nil
	}

	roles, err := g.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return false, err
	}
	return hasAdministrator(member.Roles, roles), nil
}

func hasAdministrator(memberRoleIDs []string, roles []*discordgo.Role) bool {
	held := make(map[string]bool, len(memberRoleIDs))
	for _, id := range memberRoleIDs {
		held[id] = true
	}
	for _, role := range roles {
		if held[role.ID] && role.Permissions&discordgo.PermissionAdministrator != 0 {
			return true
		}
	}
	return false
}

func highestPosition(roleIDs []string, roles []*models.Role) int {
	held := make(map[string]bool, len(roleIDs))
	for _, id := range roleIDs {
		held[id] = true
	}
	highest := 0
	for _, role := range roles {
		if held[role.ID] && role.Position > highest {
			highest = role.Position
		}
	}
	return highest
}

// notFound maps a REST 404 to models.ErrNotFound
func notFound(err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %v", models.ErrNotFound, err)
	}
	return err
}

func toChannel(ch *discordgo.Channel) *models.Channel {
	return &models.Channel{
		ID:      ch.ID,
		GuildID: ch.GuildID,
		Name:    ch.Name,
		IsText:  ch.Type == discordgo.ChannelTypeGuildText || ch.Type == discordgo.ChannelTypeGuildNews,
	}
}

func toGuild(guild *discordgo.Guild) *models.Guild {
	count := guild.MemberCount
	if count == 0 {
		count = guild.ApproximateMemberCount
	}
	return &models.Guild{ID: guild.ID, Name: guild.Name, MemberCount: count}
}

func toRole(role *discordgo.Role) *models.Role {
	return &models.Role{
		ID:       role.ID,
		Name:     role.Name,
		Position: role.Position,
		Managed:  role.Managed,
	}
}

func toMember(member *discordgo.Member) *models.Member {
	m := &models.Member{
		GuildID:  member.GuildID,
		JoinedAt: member.JoinedAt,
		RoleIDs:  append([]string(nil), member.Roles...),
	}
	if user := member.User; user != nil {
		m.UserID = user.ID
		m.Username = user.Username
		m.GlobalName = user.GlobalName
		m.Discriminator = user.Discriminator
		m.AvatarURL = user.AvatarURL("256")
		m.Bot = user.Bot
		if created, err := discordgo.SnowflakeTimestamp(user.ID); err == nil {
			m.CreatedAt = created
		}
	}
	return m
}

func toInvites(invites []*discordgo.Invite) []models.Invite {
	result := make([]models.Invite, 0, len(invites))
	for _, inv := range invites {
		entry := models.Invite{Code: inv.Code, Uses: inv.Uses}
		if inv.Inviter != nil {
			entry.InviterID = inv.Inviter.ID
			entry.InviterName = inv.Inviter.Username
		}
		result = append(result, entry)
	}
	return result
}

func toEmoji(emoji discordgo.Emoji) models.Emoji {
	return models.Emoji{ID: emoji.ID, Name: emoji.Name, Animated: emoji.Animated}
}

func noticeEmbed(notice *models.Notice) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       notice.Title,
		Description: notice.Description,
		Color:       notice.Color,
	}
	if notice.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: notice.ThumbnailURL}
	}
	for _, field := range notice.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   field.Name,
			Value:  field.Value,
			Inline: field.Inline,
		})
	}
	if len(notice.Card) > 0 && notice.CardName != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: "attachment://" + notice.CardName}
	}
	return embed
}

func noticeMessage(notice *models.Notice) *discordgo.MessageSend {
	send := &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{noticeEmbed(notice)}}
	if len(notice.Card) > 0 && notice.CardName != "" {
		send.Files = []*discordgo.File{{
			Name:        notice.CardName,
			ContentType: "image/png",
			Reader:      bytes.NewReader(notice.Card),
		}}
	}
	return send
}
