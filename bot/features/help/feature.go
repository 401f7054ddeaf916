package help

import (
	"context"
	"fmt"
	"strings"

	"guildkeeper/bot/common"
	"guildkeeper/models"
)

// CommandLister exposes the registered commands
type CommandLister interface {
	Commands() []*common.Command
}

// Feature answers the help command
type Feature struct {
	lister CommandLister
}

// NewFeature creates a new help feature instance
func NewFeature(lister CommandLister) *Feature {
	return &Feature{lister: lister}
}

// Commands returns the commands this feature registers
func (f *Feature) Commands() []*common.Command {
	return []*common.Command{
		{
			Name:        "help",
			Description: "List the available commands.",
			Run:         f.handleHelp,
		},
	}
}

func (f *Feature) handleHelp(_ context.Context, inv *common.Invocation) (*common.Reply, error) {
	return &common.Reply{Notice: helpNotice(inv.Prefix, f.lister.Commands())}, nil
}

func helpNotice(prefix string, commands []*common.Command) *models.Notice {
	notice := &models.Notice{
		Title:       "Commands",
		Description: "Commands marked 🔒 require administrator permission.",
		Color:       common.ColorPrimary,
	}

	for _, cmd := range commands {
		name := strings.TrimSpace(fmt.Sprintf("%s%s %s", prefix, cmd.Name, cmd.Usage))
		if cmd.AdminOnly {
			name = "🔒 " + name
		}
		notice.AddField(name, cmd.Description, false)
	}
	return notice
}
