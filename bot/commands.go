package bot

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"

	"guildkeeper/bot/common"

	log "github.com/sirupsen/logrus"
)

// A run of non-space characters, where a double-quoted section may contain spaces
var tokenPattern = regexp.MustCompile(`(?:[^\s"]+|"[^"]*")+`)

// IncomingMessage is a chat message that may carry a command
type IncomingMessage struct {
	GuildID     string // Empty for direct messages
	ChannelID   string
	MessageID   string
	AuthorID    string
	AuthorIsBot bool
	Content     string
}

// Tokenize splits a command message into its lowercased name and arguments.
// ok is false when content does not start with prefix or names no command.
func Tokenize(content, prefix string) (name string, args []string, raw string, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", nil, "", false
	}

	body := strings.TrimSpace(content[len(prefix):])
	spans := tokenPattern.FindAllStringIndex(body, -1)
	if len(spans) == 0 {
		return "", nil, "", false
	}

	name = strings.ToLower(strings.ReplaceAll(body[spans[0][0]:spans[0][1]], `"`, ""))
	raw = strings.TrimSpace(body[spans[0][1]:])

	args = make([]string, 0, len(spans)-1)
	for _, span := range spans[1:] {
		args = append(args, strings.ReplaceAll(body[span[0]:span[1]], `"`, ""))
	}
	return name, args, raw, true
}

// CommandRouter dispatches prefix commands to the features that registered them
type CommandRouter struct {
	prefix      string
	commands    map[string]*common.Command
	permissions common.PermissionChecker
	responder   common.Responder
}

// NewCommandRouter creates a router for prefix
func NewCommandRouter(prefix string, permissions common.PermissionChecker, responder common.Responder) *CommandRouter {
	return &CommandRouter{
		prefix:      prefix,
		commands:    make(map[string]*common.Command),
		permissions: permissions,
		responder:   responder,
	}
}

// Prefix returns the command prefix
func (r *CommandRouter) Prefix() string {
	return r.prefix
}

// Register adds commands under their names and aliases
func (r *CommandRouter) Register(commands ...*common.Command) {
	for _, cmd := range commands {
		r.commands[cmd.Name] = cmd
		for _, alias := range cmd.Aliases {
			r.commands[alias] = cmd
		}
	}
}

// Commands lists every registered command once, sorted by name
func (r *CommandRouter) Commands() []*common.Command {
	seen := make(map[*common.Command]bool)
	list := make([]*common.Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		if seen[cmd] {
			continue
		}
		seen[cmd] = true
		list = append(list, cmd)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Dispatch runs the command carried by msg and reports whether msg was a
// command for this bot
func (r *CommandRouter) Dispatch(ctx context.Context, msg IncomingMessage) bool {
	if msg.AuthorIsBot {
		return false
	}

	name, args, raw, ok := Tokenize(msg.Content, r.prefix)
	if !ok {
		return false
	}

	inv := &common.Invocation{
		GuildID:   msg.GuildID,
		ChannelID: msg.ChannelID,
		MessageID: msg.MessageID,
		AuthorID:  msg.AuthorID,
		Prefix:    r.prefix,
		Name:      name,
		Args:      args,
		Raw:       raw,
	}

	cmd, found := r.commands[name]
	if !found {
		log.WithFields(log.Fields{
			"command":  name,
			"guild_id": msg.GuildID,
			"user_id":  msg.AuthorID,
		}).Debug("Unknown command")
		return true
	}

	if msg.GuildID == "" {
		r.reply(ctx, inv, common.TextReply(common.GuildOnlyMessage))
		return true
	}

	if cmd.AdminOnly {
		admin, err := r.permissions.IsAdmin(ctx, msg.GuildID, msg.AuthorID)
		if err != nil {
			log.WithFields(log.Fields{
				"command":  name,
				"guild_id": msg.GuildID,
				"user_id":  msg.AuthorID,
			}).WithError(err).Warn("Failed to check administrator permission")
		}
		if !admin {
			r.reply(ctx, inv, common.TextReply(common.AdminRequiredMessage))
			return true
		}
	}

	if len(args) < cmd.MinArgs {
		r.fail(ctx, inv, common.NewUsageError(r.prefix, cmd))
		return true
	}

	reply, err := cmd.Run(ctx, inv)
	if err != nil {
		r.fail(ctx, inv, err)
		return true
	}
	if reply != nil {
		r.reply(ctx, inv, reply)
	}
	return true
}

func (r *CommandRouter) fail(ctx context.Context, inv *common.Invocation, err error) {
	fields := log.Fields{
		"command":  inv.Name,
		"guild_id": inv.GuildID,
		"user_id":  inv.AuthorID,
	}

	var botErr *common.BotError
	if !errors.As(err, &botErr) {
		botErr = common.NewSystemError(err, "command failed")
	}

	if botErr.UserMessage == common.GenericErrorMessage {
		log.WithFields(fields).WithError(err).Error(botErr.LogMessage)
	} else {
		log.WithFields(fields).WithError(err).Info(botErr.LogMessage)
	}

	r.reply(ctx, inv, common.TextReply(botErr.UserMessage))
}

func (r *CommandRouter) reply(ctx context.Context, inv *common.Invocation, reply *common.Reply) {
	if err := r.responder.Reply(ctx, inv, reply); err != nil {
		log.WithFields(log.Fields{
			"command":    inv.Name,
			"channel_id": inv.ChannelID,
		}).WithError(err).Warn("Failed to send command reply")
	}
}
