package models

import (
	"fmt"
	"regexp"
	"strings"
)

var customEmojiPattern = regexp.MustCompile(`^<(a?):(\w+):(\d+)>$`)

// Emoji identifies a reaction emoji. Custom emoji carry a numeric ID; unicode
// emoji only have a Name.
type Emoji struct {
	ID       string
	Name     string
	Animated bool
}

// IsCustom reports whether the emoji is a platform custom emoji
func (e Emoji) IsCustom() bool {
	return e.ID != ""
}

// Key is the identifier stored in bindings: the numeric ID for custom emoji,
// the literal unicode string otherwise.
func (e Emoji) Key() string {
	if e.IsCustom() {
		return e.ID
	}
	return e.Name
}

// APIName is the form the reaction endpoints expect
func (e Emoji) APIName() string {
	if e.IsCustom() {
		if e.Name == "" {
			return "_:" + e.ID
		}
		return e.Name + ":" + e.ID
	}
	return e.Name
}

// String renders the emoji the way it is written in a chat message
func (e Emoji) String() string {
	if !e.IsCustom() {
		return e.Name
	}
	prefix := ""
	if e.Animated {
		prefix = "a"
	}
	return fmt.Sprintf("<%s:%s:%s>", prefix, e.Name, e.ID)
}

// ParseEmoji accepts a custom emoji tag (<:name:id> or <a:name:id>) or a raw
// unicode emoji.
func ParseEmoji(input string) (Emoji, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Emoji{}, fmt.Errorf("emoji is empty")
	}

	if m := customEmojiPattern.FindStringSubmatch(input); m != nil {
		return Emoji{ID: m[3], Name: m[2], Animated: m[1] == "a"}, nil
	}

	if strings.ContainsAny(input, "<> \t") {
		return Emoji{}, fmt.Errorf("invalid emoji %q", input)
	}

	return Emoji{Name: input}, nil
}
