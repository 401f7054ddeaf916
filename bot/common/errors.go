package common

import (
	"fmt"
)

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string // Message shown to the command author
	LogMessage  string // Internal message for logging
	Err         error  // Underlying error
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Err
}

// NewUserError creates an error for user-caused issues (bad arguments, unknown role)
func NewUserError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
	}
}

// WrapUserError is NewUserError that keeps the cause for logging
func WrapUserError(err error, userMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  "command rejected",
		Err:         err,
	}
}

// NewSystemError creates an error for system issues (storage, platform calls)
func NewSystemError(err error, logMessage string) *BotError {
	return &BotError{
		UserMessage: GenericErrorMessage,
		LogMessage:  logMessage,
		Err:         err,
	}
}

// NewUsageError reminds the author how a command is called
func NewUsageError(prefix string, cmd *Command) *BotError {
	return &BotError{
		UserMessage: fmt.Sprintf("❌ Usage: `%s%s %s`", prefix, cmd.Name, cmd.Usage),
		LogMessage:  "malformed command arguments",
	}
}
