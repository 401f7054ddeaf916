package reactionroles

import (
	"guildkeeper/bot/common"
	"guildkeeper/service"
)

// Feature handles reaction-role setup commands
type Feature struct {
	reactionRoleService service.ReactionRoleService
}

// NewFeature creates a new reaction-role feature instance
func NewFeature(reactionRoleService service.ReactionRoleService) *Feature {
	return &Feature{
		reactionRoleService: reactionRoleService,
	}
}

// Commands returns the commands this feature registers
func (f *Feature) Commands() []*common.Command {
	return []*common.Command{
		{
			Name:        "create-role-message",
			Usage:       "<channel> <emoji> <role>",
			Description: "Post a role message in a channel. Reacting with the emoji toggles the role.",
			AdminOnly:   true,
			MinArgs:     3,
			Run:         f.handleCreateRoleMessage,
		},
		{
			Name:        "add-role-binding",
			Usage:       "<channel> <message-id> <emoji> <role>",
			Description: "Bind another emoji and role on an existing role message.",
			AdminOnly:   true,
			MinArgs:     4,
			Run:         f.handleAddRoleBinding,
		},
	}
}
