package common

// Embed color constants
const (
	ColorPrimary = 0xBF8EEF // Lavender, used for every notice the bot posts
	ColorSuccess = 0x57F287 // Green
	ColorError   = 0xED4245 // Red
)

// Reply texts
const (
	AdminRequiredMessage = "This command requires administrator permission."
	GuildOnlyMessage     = "Commands can only be used inside a server."
	GenericErrorMessage  = "❌ Something went wrong. Please try again later."
)
