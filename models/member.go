package models

import (
	"fmt"
	"time"
)

// Member is a guild member as seen at one point in time
type Member struct {
	GuildID       string
	UserID        string
	Username      string
	GlobalName    string
	Discriminator string
	AvatarURL     string
	Bot           bool
	JoinedAt      time.Time
	CreatedAt     time.Time
	RoleIDs       []string
}

// HasRole checks the member's role list
func (m *Member) HasRole(roleID string) bool {
	for _, id := range m.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// Mention returns the chat mention for the member
func (m *Member) Mention() string {
	return fmt.Sprintf("<@%s>", m.UserID)
}

// Tag returns username#discriminator, or just the username for accounts
// without a legacy discriminator.
func (m *Member) Tag() string {
	if m.Discriminator == "" || m.Discriminator == "0" {
		return m.Username
	}
	return m.Username + "#" + m.Discriminator
}

// DisplayName prefers the username, then the global name, then the tag
func (m *Member) DisplayName() string {
	if m.Username != "" {
		return m.Username
	}
	if m.GlobalName != "" {
		return m.GlobalName
	}
	return m.Tag()
}

// Role is a guild role
type Role struct {
	ID       string
	Name     string
	Position int
	Managed  bool
}

// Mention returns the chat mention for the role
func (r *Role) Mention() string {
	return fmt.Sprintf("<@&%s>", r.ID)
}

// Channel is a guild channel
type Channel struct {
	ID      string
	GuildID string
	Name    string
	IsText  bool
}

// Guild is the subset of guild state the services read
type Guild struct {
	ID          string
	Name        string
	MemberCount int
}
