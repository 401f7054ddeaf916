package models

import "errors"

var (
	// ErrDuplicateEmoji is returned when a message already has a binding for an emoji
	ErrDuplicateEmoji = errors.New("emoji is already bound on this message")

	// ErrNotFound is returned when a referenced record does not exist
	ErrNotFound = errors.New("not found")
)
