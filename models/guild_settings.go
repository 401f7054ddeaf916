package models

// GuildSettings represents per-guild configuration settings
type GuildSettings struct {
	GuildID               string  `json:"-"`
	WelcomeEnabled        bool    `json:"welcomeEnabled"`
	LogChannelID          *string `json:"logChannelId"`    // Nullable - channel for welcome notices
	WelcomeTemplate       *string `json:"welcomeTemplate"` // Nullable - custom welcome title
	MemberCountInTitle    bool    `json:"memberCountInTitle"`
	InviteTrackingEnabled bool    `json:"inviteTrackingEnabled"`
}

// DefaultGuildSettings returns the settings a guild starts with
func DefaultGuildSettings(guildID string) *GuildSettings {
	return &GuildSettings{
		GuildID: guildID,
	}
}

// HasLogChannel checks if a log channel is configured
func (gs *GuildSettings) HasLogChannel() bool {
	return gs.LogChannelID != nil && *gs.LogChannelID != ""
}

// HasCustomTemplate checks if a custom welcome template is configured
func (gs *GuildSettings) HasCustomTemplate() bool {
	return gs.WelcomeTemplate != nil && *gs.WelcomeTemplate != ""
}

// SetLogChannel sets the log channel ID
func (gs *GuildSettings) SetLogChannel(channelID *string) {
	gs.LogChannelID = channelID
}

// Clone returns a deep copy so callers never share pointers with a store
func (gs *GuildSettings) Clone() *GuildSettings {
	c := *gs
	if gs.LogChannelID != nil {
		v := *gs.LogChannelID
		c.LogChannelID = &v
	}
	if gs.WelcomeTemplate != nil {
		v := *gs.WelcomeTemplate
		c.WelcomeTemplate = &v
	}
	return &c
}
