package help

import (
	"context"
	"testing"

	"guildkeeper/bot/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLister []*common.Command

func (l staticLister) Commands() []*common.Command {
	return l
}

func TestHandleHelp(t *testing.T) {
	lister := staticLister{
		{Name: "create-role-message", Usage: "<channel> <emoji> <role>", Description: "Post a role message.", AdminOnly: true},
		{Name: "status", Description: "Show settings."},
	}
	feature := NewFeature(lister)

	reply, err := feature.handleHelp(context.Background(), &common.Invocation{Prefix: "!"})

	require.NoError(t, err)
	require.NotNil(t, reply.Notice)
	assert.Equal(t, common.ColorPrimary, reply.Notice.Color)
	require.Len(t, reply.Notice.Fields, 2)
	assert.Equal(t, "🔒 !create-role-message <channel> <emoji> <role>", reply.Notice.Fields[0].Name)
	assert.Equal(t, "Post a role message.", reply.Notice.Fields[0].Value)
	assert.Equal(t, "!status", reply.Notice.Fields[1].Name)
}

func TestCommands(t *testing.T) {
	commands := NewFeature(staticLister{}).Commands()

	require.Len(t, commands, 1)
	assert.Equal(t, "help", commands[0].Name)
	assert.False(t, commands[0].AdminOnly)
}
