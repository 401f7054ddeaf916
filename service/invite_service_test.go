package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"guildkeeper/events"
	"guildkeeper/models"
	"guildkeeper/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testLogChannelID = "130000000000000001"

type inviteFixture struct {
	discord   *MockDiscord
	settings  *MockGuildSettingsRepository
	snapshots *MockInviteSnapshotRepository
	publisher *MockEventPublisher
	service   InviteService
}

func newInviteFixture(cards CardRenderer) *inviteFixture {
	f := &inviteFixture{
		discord:   new(MockDiscord),
		settings:  new(MockGuildSettingsRepository),
		snapshots: new(MockInviteSnapshotRepository),
		publisher: new(MockEventPublisher),
	}
	f.service = NewInviteService(f.discord, f.settings, f.snapshots, f.publisher, cards)
	f.publisher.On("Emit", mock.Anything, mock.Anything).Return().Maybe()
	return f
}

func trackingSettings() *models.GuildSettings {
	return testutil.CreateTestTrackingSettings(testGuildID, testLogChannelID)
}

func joiningMember() *models.Member {
	return testutil.CreateTestMember(testGuildID, testUserID, "alice", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
}

func TestAttributeInviter(t *testing.T) {
	tests := []struct {
		name         string
		old          models.InviteSnapshot
		fresh        []models.Invite
		expectedCode string
	}{
		{
			name:         "single increase",
			old:          testutil.CreateTestSnapshot(map[string]int{"A": 5, "B": 3}),
			fresh:        []models.Invite{testutil.CreateTestInvite("A", 5, "1"), testutil.CreateTestInvite("B", 4, "2")},
			expectedCode: "B",
		},
		{
			name:         "first increase in fetch order wins",
			old:          testutil.CreateTestSnapshot(map[string]int{"A": 5, "B": 3}),
			fresh:        []models.Invite{testutil.CreateTestInvite("A", 6, "1"), testutil.CreateTestInvite("B", 4, "2")},
			expectedCode: "A",
		},
		{
			name:         "fetch order decides, not code order",
			old:          testutil.CreateTestSnapshot(map[string]int{"A": 5, "B": 3}),
			fresh:        []models.Invite{testutil.CreateTestInvite("B", 4, "2"), testutil.CreateTestInvite("A", 6, "1")},
			expectedCode: "B",
		},
		{
			name:  "no increase",
			old:   testutil.CreateTestSnapshot(map[string]int{"A": 5, "B": 3}),
			fresh: []models.Invite{testutil.CreateTestInvite("A", 5, "1"), testutil.CreateTestInvite("B", 3, "2")},
		},
		{
			name:  "new code is not attributed",
			old:   testutil.CreateTestSnapshot(map[string]int{"A": 5}),
			fresh: []models.Invite{testutil.CreateTestInvite("A", 5, "1"), testutil.CreateTestInvite("C", 1, "3")},
		},
		{
			name:  "decrease is ignored",
			old:   testutil.CreateTestSnapshot(map[string]int{"A": 5}),
			fresh: []models.Invite{testutil.CreateTestInvite("A", 0, "1")},
		},
		{
			name:  "empty baseline",
			old:   models.InviteSnapshot{},
			fresh: []models.Invite{testutil.CreateTestInvite("A", 9, "1")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inviter := AttributeInviter(tt.old, tt.fresh)
			if tt.expectedCode == "" {
				assert.Nil(t, inviter)
				return
			}
			require.NotNil(t, inviter)
			assert.Equal(t, tt.expectedCode, inviter.Code)
		})
	}
}

func TestInviteService_HandleMemberJoin_Attributed(t *testing.T) {
	f := newInviteFixture(nil)
	ctx := context.Background()
	member := joiningMember()

	fresh := []models.Invite{testutil.CreateTestInvite("A", 5, "1"), testutil.CreateTestInvite("B", 4, "2")}
	f.settings.On("GetOrCreate", ctx, testGuildID).Return(trackingSettings(), nil)
	f.discord.On("GuildInvites", ctx, testGuildID).Return(fresh, nil)
	f.snapshots.On("Get", ctx, testGuildID).Return(testutil.CreateTestSnapshot(map[string]int{"A": 5, "B": 3}), nil)
	f.snapshots.On("Replace", ctx, testGuildID, models.SnapshotFromInvites(fresh)).Return(nil)
	f.discord.On("Guild", ctx, testGuildID).Return(&models.Guild{ID: testGuildID, Name: "Test", MemberCount: 10}, nil)
	f.discord.On("SendNotice", ctx, testLogChannelID, mock.Anything).Return("m1", nil)

	outcome, err := f.service.HandleMemberJoin(ctx, member)

	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.Equal(t, AttributionFound, outcome.Attribution)
	require.NotNil(t, outcome.Inviter)
	assert.Equal(t, "B", outcome.Inviter.Code)
	assert.True(t, outcome.Delivered)

	inviterField := outcome.Notice.Field(FieldInviter)
	require.NotNil(t, inviterField)
	assert.Equal(t, "<@2> (inviter-2)", inviterField.Value)

	f.discord.AssertExpectations(t)
	f.snapshots.AssertExpectations(t)
	f.publisher.AssertCalled(t, "Emit", ctx, events.MemberWelcomedEvent{
		GuildID: testGuildID, UserID: testUserID, Attribution: "found", InviteCode: "B", InviterID: "2", Delivered: true,
	})
}

func TestInviteService_HandleMemberJoin_SnapshotOverwrittenWithoutInviter(t *testing.T) {
	f := newInviteFixture(nil)
	ctx := context.Background()

	fresh := []models.Invite{testutil.CreateTestInvite("A", 5, "1"), testutil.CreateTestInvite("C", 1, "3")}
	f.settings.On("GetOrCreate", ctx, testGuildID).Return(trackingSettings(), nil)
	f.discord.On("GuildInvites", ctx, testGuildID).Return(fresh, nil)
	f.snapshots.On("Get", ctx, testGuildID).Return(testutil.CreateTestSnapshot(map[string]int{"A": 5, "B": 3}), nil)
	f.snapshots.On("Replace", ctx, testGuildID, models.SnapshotFromInvites(fresh)).Return(nil)
	f.discord.On("Guild", ctx, testGuildID).Return(&models.Guild{ID: testGuildID, Name: "Test", MemberCount: 10}, nil)
	f.discord.On("SendNotice", ctx, testLogChannelID, mock.Anything).Return("m1", nil)

	outcome, err := f.service.HandleMemberJoin(ctx, joiningMember())

	require.NoError(t, err)
	assert.Equal(t, AttributionUnknown, outcome.Attribution)
	assert.Nil(t, outcome.Inviter)
	assert.Equal(t, UnknownInviterText, outcome.Notice.Field(FieldInviter).Value)
	f.snapshots.AssertCalled(t, "Replace", ctx, testGuildID, models.InviteSnapshot{
		"A": {Uses: 5, InviterID: strPtr("1")},
		"C": {Uses: 1, InviterID: strPtr("3")},
	})
}

func TestInviteService_HandleMemberJoin_FetchFails(t *testing.T) {
	f := newInviteFixture(nil)
	ctx := context.Background()

	f.settings.On("GetOrCreate", ctx, testGuildID).Return(trackingSettings(), nil)
	f.discord.On("GuildInvites", ctx, testGuildID).Return(nil, errors.New("missing access"))
	f.discord.On("Guild", ctx, testGuildID).Return(&models.Guild{ID: testGuildID, Name: "Test", MemberCount: 10}, nil)
	f.discord.On("SendNotice", ctx, testLogChannelID, mock.Anything).Return("m1", nil)

	outcome, err := f.service.HandleMemberJoin(ctx, joiningMember())

	require.NoError(t, err)
	assert.Equal(t, AttributionUnavailable, outcome.Attribution)
	assert.Equal(t, UnavailableInviterText, outcome.Notice.Field(FieldInviter).Value)
	assert.True(t, outcome.Delivered)
	f.snapshots.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything, mock.Anything)
}

func TestInviteService_HandleMemberJoin_TrackingOff(t *testing.T) {
	f := newInviteFixture(nil)
	ctx := context.Background()

	settings := testutil.CreateTestSettings(testGuildID, testLogChannelID)
	f.settings.On("GetOrCreate", ctx, testGuildID).Return(settings, nil)
	f.discord.On("Guild", ctx, testGuildID).Return(&models.Guild{ID: testGuildID, Name: "Test", MemberCount: 10}, nil)
	f.discord.On("SendNotice", ctx, testLogChannelID, mock.Anything).Return("m1", nil)

	outcome, err := f.service.HandleMemberJoin(ctx, joiningMember())

	require.NoError(t, err)
	assert.Equal(t, AttributionDisabled, outcome.Attribution)
	assert.Nil(t, outcome.Notice.Field(FieldInviter))
	f.discord.AssertNotCalled(t, "GuildInvites", mock.Anything, mock.Anything)
}

func TestInviteService_HandleMemberJoin_WelcomeOff(t *testing.T) {
	tests := []struct {
		name     string
		settings func() *models.GuildSettings
	}{
		{
			name:     "disabled",
			settings: func() *models.GuildSettings { return models.DefaultGuildSettings(testGuildID) },
		},
		{
			name: "enabled without channel",
			settings: func() *models.GuildSettings {
				s := models.DefaultGuildSettings(testGuildID)
				s.WelcomeEnabled = true
				s.InviteTrackingEnabled = true
				return s
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newInviteFixture(nil)
			ctx := context.Background()
			f.settings.On("GetOrCreate", ctx, testGuildID).Return(tt.settings(), nil)

			outcome, err := f.service.HandleMemberJoin(ctx, joiningMember())

			require.NoError(t, err)
			assert.Nil(t, outcome)
			f.discord.AssertNotCalled(t, "SendNotice", mock.Anything, mock.Anything, mock.Anything)
			f.discord.AssertNotCalled(t, "GuildInvites", mock.Anything, mock.Anything)
		})
	}
}

func TestInviteService_HandleMemberJoin_OrdinalTitle(t *testing.T) {
	f := newInviteFixture(nil)
	ctx := context.Background()

	settings := trackingSettings()
	settings.MemberCountInTitle = true
	settings.InviteTrackingEnabled = false
	f.settings.On("GetOrCreate", ctx, testGuildID).Return(settings, nil)
	f.discord.On("Guild", ctx, testGuildID).Return(&models.Guild{ID: testGuildID, Name: "Test", MemberCount: 137}, nil)
	f.discord.On("SendNotice", ctx, testLogChannelID, mock.Anything).Return("m1", nil)

	outcome, err := f.service.HandleMemberJoin(ctx, joiningMember())

	require.NoError(t, err)
	assert.Equal(t, "Member #137 has joined!", outcome.Notice.Title)
}

func TestInviteService_HandleMemberJoin_DeliveryFailure(t *testing.T) {
	f := newInviteFixture(nil)
	ctx := context.Background()

	settings := trackingSettings()
	settings.InviteTrackingEnabled = false
	f.settings.On("GetOrCreate", ctx, testGuildID).Return(settings, nil)
	f.discord.On("Guild", ctx, testGuildID).Return(nil, errors.New("not cached"))
	f.discord.On("SendNotice", ctx, testLogChannelID, mock.Anything).Return("", errors.New("missing access"))

	outcome, err := f.service.HandleMemberJoin(ctx, joiningMember())

	require.NoError(t, err)
	assert.False(t, outcome.Delivered)
	assert.Equal(t, DefaultWelcomeTitle, outcome.Notice.Title)
	f.publisher.AssertCalled(t, "Emit", ctx, events.MemberWelcomedEvent{
		GuildID: testGuildID, UserID: testUserID, Attribution: "disabled",
	})
}

func TestInviteService_HandleMemberJoin_AttachesCard(t *testing.T) {
	cards := new(MockCardRenderer)
	f := newInviteFixture(cards)
	ctx := context.Background()

	settings := trackingSettings()
	settings.InviteTrackingEnabled = false
	f.settings.On("GetOrCreate", ctx, testGuildID).Return(settings, nil)
	f.discord.On("Guild", ctx, testGuildID).Return(&models.Guild{ID: testGuildID, Name: "Test", MemberCount: 3}, nil)
	cards.On("Render", mock.AnythingOfType("service.WelcomeInput")).Return([]byte("png"), nil)
	f.discord.On("SendNotice", ctx, testLogChannelID, mock.MatchedBy(func(n *models.Notice) bool {
		return string(n.Card) == "png" && n.CardName == "welcome.png"
	})).Return("m1", nil)

	outcome, err := f.service.HandleMemberJoin(ctx, joiningMember())

	require.NoError(t, err)
	assert.True(t, outcome.Delivered)
	cards.AssertExpectations(t)
	f.discord.AssertExpectations(t)
}

func TestInviteService_RefreshGuild(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces snapshot", func(t *testing.T) {
		f := newInviteFixture(nil)
		fresh := []models.Invite{testutil.CreateTestInvite("A", 1, "1")}
		f.discord.On("GuildInvites", ctx, testGuildID).Return(fresh, nil)
		f.snapshots.On("Replace", ctx, testGuildID, models.SnapshotFromInvites(fresh)).Return(nil)

		count, err := f.service.RefreshGuild(ctx, testGuildID)

		require.NoError(t, err)
		assert.Equal(t, 1, count)
		f.publisher.AssertCalled(t, "Emit", ctx, events.InvitesRefreshedEvent{GuildID: testGuildID, InviteCount: 1, Reason: RefreshReasonCommand})
	})

	t.Run("fetch failure keeps snapshot", func(t *testing.T) {
		f := newInviteFixture(nil)
		f.discord.On("GuildInvites", ctx, testGuildID).Return(nil, errors.New("missing permissions"))

		_, err := f.service.RefreshGuild(ctx, testGuildID)

		require.Error(t, err)
		f.snapshots.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestInviteService_RefreshAll(t *testing.T) {
	f := newInviteFixture(nil)
	ctx := context.Background()

	f.discord.On("GuildInvites", ctx, "g1").Return(nil, errors.New("missing permissions"))
	f.discord.On("GuildInvites", ctx, "g2").Return([]models.Invite{testutil.CreateTestInvite("X", 2, "1")}, nil)
	f.snapshots.On("Replace", ctx, "g2", mock.Anything).Return(nil)

	refreshed := f.service.RefreshAll(ctx, []string{"g1", "g2"})

	assert.Equal(t, []string{"g2"}, refreshed)
	f.discord.AssertExpectations(t)
	f.snapshots.AssertExpectations(t)
	f.snapshots.AssertNotCalled(t, "Replace", ctx, "g1", mock.Anything)
}

func TestInviteService_HandleInviteCreate(t *testing.T) {
	f := newInviteFixture(nil)
	ctx := context.Background()

	fresh := []models.Invite{testutil.CreateTestInvite("A", 0, "1"), testutil.CreateTestInvite("NEW", 0, "2")}
	f.discord.On("GuildInvites", ctx, testGuildID).Return(fresh, nil)
	f.snapshots.On("Replace", ctx, testGuildID, models.SnapshotFromInvites(fresh)).Return(nil)

	require.NoError(t, f.service.HandleInviteCreate(ctx, testGuildID, "NEW"))
	f.snapshots.AssertExpectations(t)
}

func TestInviteService_HandleInviteDelete(t *testing.T) {
	f := newInviteFixture(nil)
	ctx := context.Background()

	f.snapshots.On("Remove", ctx, testGuildID, "A").Return(true, nil)
	f.snapshots.On("Remove", ctx, testGuildID, "missing").Return(false, nil)

	require.NoError(t, f.service.HandleInviteDelete(ctx, testGuildID, "A"))
	require.NoError(t, f.service.HandleInviteDelete(ctx, testGuildID, "missing"))
	f.discord.AssertNotCalled(t, "GuildInvites", mock.Anything, mock.Anything)
}

func TestInviteService_SnapshotSize(t *testing.T) {
	f := newInviteFixture(nil)
	ctx := context.Background()
	f.snapshots.On("Get", ctx, testGuildID).Return(testutil.CreateTestSnapshot(map[string]int{"A": 1, "B": 2}), nil)

	size, err := f.service.SnapshotSize(ctx, testGuildID)

	require.NoError(t, err)
	assert.Equal(t, 2, size)
}

func TestInviteService_TemplateUsesInviter(t *testing.T) {
	f := newInviteFixture(nil)
	ctx := context.Background()

	settings := trackingSettings()
	tmpl := "{user} joined {server} via {inviter}"
	settings.WelcomeTemplate = &tmpl
	fresh := []models.Invite{testutil.CreateTestInvite("A", 2, "7")}
	f.settings.On("GetOrCreate", ctx, testGuildID).Return(settings, nil)
	f.discord.On("GuildInvites", ctx, testGuildID).Return(fresh, nil)
	f.snapshots.On("Get", ctx, testGuildID).Return(testutil.CreateTestSnapshot(map[string]int{"A": 1}), nil)
	f.snapshots.On("Replace", ctx, testGuildID, mock.Anything).Return(nil)
	f.discord.On("Guild", ctx, testGuildID).Return(&models.Guild{ID: testGuildID, Name: "Cafe", MemberCount: 5}, nil)
	f.discord.On("SendNotice", ctx, testLogChannelID, mock.Anything).Return("m1", nil)

	outcome, err := f.service.HandleMemberJoin(ctx, joiningMember())

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(outcome.Notice.Title, "**<@200>** joined Cafe via <@7>"))
}

func strPtr(s string) *string {
	return &s
}
