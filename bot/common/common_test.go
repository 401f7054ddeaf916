package common

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"guildkeeper/models"
	"guildkeeper/service"

	"github.com/stretchr/testify/assert"
)

func TestParseToggle(t *testing.T) {
	tests := []struct {
		arg    string
		value  bool
		parsed bool
	}{
		{"on", true, true},
		{" ON ", true, true},
		{"enable", true, true},
		{"off", false, true},
		{"Disabled", false, true},
		{"maybe", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			value, parsed := ParseToggle(tt.arg)
			assert.Equal(t, tt.value, value)
			assert.Equal(t, tt.parsed, parsed)
		})
	}
}

func TestFromServiceError(t *testing.T) {
	wrapped := fmt.Errorf("message 1 emoji x: %w", models.ErrDuplicateEmoji)

	botErr := FromServiceError(wrapped, "add binding")
	assert.Equal(t, "❌ That emoji is already bound on this message.", botErr.UserMessage)
	assert.ErrorIs(t, botErr, models.ErrDuplicateEmoji)

	botErr = FromServiceError(fmt.Errorf("lookup: %w", service.ErrChannelNotFound), "resolve")
	assert.Equal(t, "❌ I couldn't find that channel.", botErr.UserMessage)

	botErr = FromServiceError(errors.New("connection reset"), "send")
	assert.Equal(t, GenericErrorMessage, botErr.UserMessage)
	assert.Equal(t, "send: connection reset", botErr.Error())
}

func TestFormatDiscordTimestamp(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	assert.Equal(t, "<t:1700000000:R>", FormatDiscordTimestamp(ts, "R"))
}
