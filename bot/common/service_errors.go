package common

import (
	"errors"

	"guildkeeper/models"
	"guildkeeper/service"
)

var userMessages = []struct {
	target  error
	message string
}{
	{service.ErrChannelNotFound, "❌ I couldn't find that channel."},
	{service.ErrChannelNotText, "❌ That channel isn't a text channel in this server."},
	{service.ErrRoleNotFound, "❌ I couldn't find that role."},
	{service.ErrRoleNotAssignable, "❌ I can't assign that role. My highest role must be above it, and managed roles can't be assigned."},
	{service.ErrInvalidEmoji, "❌ That isn't an emoji I can react with."},
	{service.ErrEmptyTemplate, "❌ The welcome template can't be empty."},
	{models.ErrDuplicateEmoji, "❌ That emoji is already bound on this message."},
}

// FromServiceError turns a known service failure into a user error and
// anything else into a system error
func FromServiceError(err error, logMessage string) *BotError {
	for _, m := range userMessages {
		if errors.Is(err, m.target) {
			return &BotError{UserMessage: m.message, LogMessage: logMessage, Err: err}
		}
	}
	return NewSystemError(err, logMessage)
}
