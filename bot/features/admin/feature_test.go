package admin

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestApproveOptions(t *testing.T) {
	t.Run("defaults to approving", func(t *testing.T) {
		_, approved := approveOptions(nil, nil)
		assert.True(t, approved)
	})

	t.Run("explicit revoke", func(t *testing.T) {
		options := []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "approved", Type: discordgo.ApplicationCommandOptionBoolean, Value: false},
		}
		target, approved := approveOptions(nil, options)
		assert.Nil(t, target)
		assert.False(t, approved)
	})
}

func TestApprovalMessage(t *testing.T) {
	assert.Equal(t, "<@42> can now give and receive kudos.", approvalMessage(42, true))
	assert.Equal(t, "<@42> can no longer take part in the kudos economy.", approvalMessage(42, false))
}
