package testutil

import (
	"time"

	"guildkeeper/models"
)

// CreateTestSettings returns settings with welcome notices going to channelID
func CreateTestSettings(guildID, channelID string) *models.GuildSettings {
	settings := models.DefaultGuildSettings(guildID)
	settings.WelcomeEnabled = true
	settings.LogChannelID = &channelID
	return settings
}

// CreateTestTrackingSettings also enables invite tracking
func CreateTestTrackingSettings(guildID, channelID string) *models.GuildSettings {
	settings := CreateTestSettings(guildID, channelID)
	settings.InviteTrackingEnabled = true
	return settings
}

// CreateTestMember returns a non-bot member who joined at joinedAt
func CreateTestMember(guildID, userID, username string, joinedAt time.Time) *models.Member {
	return &models.Member{
		GuildID:       guildID,
		UserID:        userID,
		Username:      username,
		Discriminator: "0",
		AvatarURL:     "https://cdn.example.test/avatars/" + userID + ".png",
		JoinedAt:      joinedAt,
		CreatedAt:     joinedAt.Add(-365 * 24 * time.Hour),
	}
}

// CreateTestInvite returns an invite created by inviterID
func CreateTestInvite(code string, uses int, inviterID string) models.Invite {
	return models.Invite{
		Code:        code,
		Uses:        uses,
		InviterID:   inviterID,
		InviterName: "inviter-" + inviterID,
	}
}

// CreateTestSnapshot builds a snapshot from code to uses with an inviter per
// code of the form "inviter-<code>"
func CreateTestSnapshot(uses map[string]int) models.InviteSnapshot {
	snapshot := make(models.InviteSnapshot, len(uses))
	for code, n := range uses {
		inviter := "inviter-" + code
		snapshot[code] = models.InviteSnapshotEntry{Uses: n, InviterID: &inviter}
	}
	return snapshot
}
