package reactionroles

import (
	"context"
	"fmt"
	"strings"

	"guildkeeper/bot/common"
	"guildkeeper/service"
)

// handleCreateRoleMessage handles create-role-message <channel> <emoji> <role>
func (f *Feature) handleCreateRoleMessage(ctx context.Context, inv *common.Invocation) (*common.Reply, error) {
	result, err := f.reactionRoleService.CreateRoleMessage(ctx, service.CreateRoleMessageRequest{
		GuildID:    inv.GuildID,
		ChannelRef: inv.Args[0],
		EmojiInput: inv.Args[1],
		RoleRef:    roleRef(inv.Args[2:]),
	})
	if err != nil {
		return nil, common.FromServiceError(err, "failed to create role message")
	}

	return common.TextReply(fmt.Sprintf("✅ Role message created in <#%s>. Reacting with %s toggles %s.",
		result.ChannelID, result.Emoji, result.Role.Mention())), nil
}

// handleAddRoleBinding handles add-role-binding <channel> <message-id> <emoji> <role>
func (f *Feature) handleAddRoleBinding(ctx context.Context, inv *common.Invocation) (*common.Reply, error) {
	result, err := f.reactionRoleService.AddBinding(ctx, service.AddBindingRequest{
		GuildID:    inv.GuildID,
		ChannelRef: inv.Args[0],
		MessageID:  inv.Args[1],
		EmojiInput: inv.Args[2],
		RoleRef:    roleRef(inv.Args[3:]),
	})
	if err != nil {
		return nil, common.FromServiceError(err, "failed to add role binding")
	}

	return common.TextReply(fmt.Sprintf("✅ Reacting with %s on message `%s` now toggles %s.",
		result.Emoji, result.MessageID, result.Role.Mention())), nil
}

// Role names may contain spaces without being quoted
func roleRef(args []string) string {
	return strings.Join(args, " ")
}
