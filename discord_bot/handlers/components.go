package handlers

import (
	"github.com/bwmarrin/discordgo"
)

const (
	DeleteButton     = "delete_error_message"
	DeleteGeneration = "delete_generation"
	DismissButton    = "dismiss_error_message"
)

var Components = map[string]discordgo.MessageComponent{
	DeleteButton: discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Delete this message",
				Style:    discordgo.DangerButton,
				CustomID: DeleteButton,
			},
		},
	},
	DeleteGeneration: discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Delete",
				Style:    discordgo.DangerButton,
				CustomID: DeleteGeneration,
			},
		},
	},
	DismissButton: discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Dismiss",
				Style:    discordgo.SecondaryButton,
				CustomID: DeleteButton,
			},
		},
	},
}
