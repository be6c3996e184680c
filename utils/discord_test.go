package utils

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

func TestGetUser(t *testing.T) {
	author := &discordgo.User{ID: "author"}
	member := &discordgo.Member{User: &discordgo.User{ID: "member"}}

	require.Equal(t, "member", GetUser(&discordgo.Interaction{Member: member, User: author}).ID)
	require.Equal(t, "author", GetUser(&discordgo.Interaction{User: author}).ID)
	require.Equal(t, "author", GetUser(&discordgo.MessageInteraction{User: author}).ID)

	var missing *discordgo.MessageInteraction
	require.Nil(t, GetUser(missing))
	require.Equal(t, "author", GetUser(missing, author).ID)
	require.Equal(t, "unknown", GetUsername(nil))
}

func TestIsAdmin(t *testing.T) {
	tests := []struct {
		name        string
		permissions int64
		want        bool
	}{
		{"administrator", discordgo.PermissionAdministrator, true},
		{"manage server", discordgo.PermissionManageServer, true},
		{"manage messages", discordgo.PermissionManageMessages, false},
		{"none", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := &discordgo.Interaction{Member: &discordgo.Member{Permissions: tt.permissions}}
			require.Equal(t, tt.want, IsAdmin(i))
		})
	}

	require.False(t, IsAdmin(&discordgo.Interaction{User: &discordgo.User{ID: "dm"}}))
}
