package models

// ReactionRoleBinding maps one emoji on a message to a role
type ReactionRoleBinding struct {
	Emoji  string `json:"emoji"` // Emoji.Key(): custom emoji ID or unicode string
	RoleID string `json:"roleId"`
}

// ReactionRoleMessage is a message with its ordered role bindings
type ReactionRoleMessage struct {
	GuildID   string
	MessageID string
	Bindings  []ReactionRoleBinding
}

// Matching returns every binding for the given emoji. Custom emoji match on
// their numeric ID, unicode emoji on the literal string.
func (m *ReactionRoleMessage) Matching(emoji Emoji) []ReactionRoleBinding {
	key := emoji.Key()
	var matches []ReactionRoleBinding
	for _, b := range m.Bindings {
		if b.Emoji == key {
			matches = append(matches, b)
		}
	}
	return matches
}

// HasEmoji checks whether a binding already uses the emoji key
func (m *ReactionRoleMessage) HasEmoji(key string) bool {
	for _, b := range m.Bindings {
		if b.Emoji == key {
			return true
		}
	}
	return false
}
