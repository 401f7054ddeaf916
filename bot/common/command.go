package common

import (
	"context"

	"guildkeeper/models"
)

// Invocation is one parsed command message
type Invocation struct {
	GuildID   string
	ChannelID string
	MessageID string
	AuthorID  string
	Prefix    string
	Name      string
	Args      []string // Quote-stripped arguments
	Raw       string   // Everything after the command name, untouched
}

// Reply is what a command answers with. Either field may be empty.
type Reply struct {
	Content string
	Notice  *models.Notice
}

// TextReply is a plain-text reply
func TextReply(content string) *Reply {
	return &Reply{Content: content}
}

// Command is a prefix command a feature registers
type Command struct {
	Name        string
	Aliases     []string
	Usage       string // Argument synopsis, shown in usage reminders and help
	Description string
	AdminOnly   bool
	MinArgs     int
	Run         func(ctx context.Context, inv *Invocation) (*Reply, error)
}

// Responder delivers command replies
type Responder interface {
	Reply(ctx context.Context, inv *Invocation, reply *Reply) error
}

// PermissionChecker answers whether a member holds the administrator permission
type PermissionChecker interface {
	IsAdmin(ctx context.Context, guildID, userID string) (bool, error)
}
