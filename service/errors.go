package service

import "errors"

var (
	// ErrRoleNotAssignable means the bot's highest role is not above the target role
	ErrRoleNotAssignable = errors.New("role is not assignable by the bot")

	// ErrRoleNotFound means a role reference did not resolve
	ErrRoleNotFound = errors.New("role not found")

	// ErrChannelNotFound means a channel reference did not resolve
	ErrChannelNotFound = errors.New("channel not found")

	// ErrChannelNotText means the channel exists but cannot carry messages
	ErrChannelNotText = errors.New("channel is not a text channel of this guild")

	// ErrInvalidEmoji means the emoji argument could not be parsed
	ErrInvalidEmoji = errors.New("invalid emoji")

	// ErrEmptyTemplate means a welcome template with no text
	ErrEmptyTemplate = errors.New("welcome template is empty")
)
