package handlers

import (
	"github.com/bwmarrin/discordgo"
)

// ThinkResponse defers the response with a "Bot is thinking..." message.
func ThinkResponse(bot *discordgo.Session, i *discordgo.InteractionCreate) error {
	err := bot.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		return ErrorEphemeral(bot, i.Interaction, err)
	}
	return nil
}

// EphemeralThink defers the response with a thinking message only the caller sees.
func EphemeralThink(bot *discordgo.Session, i *discordgo.InteractionCreate) error {
	err := bot.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		return ErrorEphemeral(bot, i.Interaction, err)
	}
	return nil
}

// MessageResponse responds with a message built from content.
func MessageResponse(bot *discordgo.Session, i *discordgo.Interaction, content ...any) error {
	data := &discordgo.InteractionResponseData{}
	responseEdit(data, content...)
	return bot.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

// EphemeralContent responds with a message only the caller sees.
func EphemeralContent(bot *discordgo.Session, i *discordgo.Interaction, content ...any) error {
	data := &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	responseEdit(data, content...)
	return bot.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

// UpdateFromComponent updates the message the component is attached to.
func UpdateFromComponent(bot *discordgo.Session, i *discordgo.Interaction, content ...any) error {
	data := &discordgo.InteractionResponseData{}
	responseEdit(data, content...)
	return bot.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: data,
	})
}

// EditInteractionResponse edits the original interaction response.
func EditInteractionResponse(bot *discordgo.Session, i *discordgo.Interaction, content ...any) (*discordgo.Message, error) {
	webhookEdit := webhookFromContents(content...)
	contentEdit(webhookEdit, content...)
	return bot.InteractionResponseEdit(i, webhookEdit)
}

// Autocomplete answers an autocomplete interaction with up to 25 choices.
func Autocomplete(bot *discordgo.Session, i *discordgo.Interaction, choices []*discordgo.ApplicationCommandOptionChoice) error {
	if len(choices) > 25 {
		choices = choices[:25]
	}
	return bot.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: choices,
		},
	})
}

// StringChoices turns values into choices, trimming them to Discord's 100 character limit.
func StringChoices(values []string) []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, min(len(values), 25))
	for _, value := range values[:min(len(values), 25)] {
		if len(value) > 100 {
			value = value[:100]
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: value, Value: value})
	}
	return choices
}

func webhookFromContents(content ...any) *discordgo.WebhookEdit {
	webhookEdit := &discordgo.WebhookEdit{}
	for _, m := range content {
		switch c := m.(type) {
		case discordgo.WebhookEdit:
			webhookEdit = &c
		case *discordgo.WebhookEdit:
			webhookEdit = c
		}
	}
	return webhookEdit
}

func contentEdit(webhookEdit *discordgo.WebhookEdit, messages ...any) {
	if len(messages) == 0 {
		return
	}
	var newEmbeds []*discordgo.MessageEmbed
	var newComponents []discordgo.MessageComponent
	var newFiles []*discordgo.File
	for _, m := range messages {
		switch c := m.(type) {
		case *discordgo.Message:
			webhookEdit.Content = &c.Content
			webhookEdit.Embeds = &c.Embeds
			webhookEdit.Components = &c.Components
		case string:
			webhookEdit.Content = &c
		case *discordgo.MessageEmbed:
			newEmbeds = append(newEmbeds, c)
		case discordgo.MessageEmbed:
			newEmbeds = append(newEmbeds, &c)
		case *discordgo.File:
			newFiles = append(newFiles, c)
		case discordgo.MessageComponent:
			newComponents = append(newComponents, c)
		case []discordgo.MessageComponent:
			newComponents = append(newComponents, c...)
		}
	}
	if newComponents != nil {
		webhookEdit.Components = &newComponents
	}
	if newEmbeds != nil {
		webhookEdit.Embeds = &newEmbeds
	}
	if newFiles != nil {
		webhookEdit.Files = newFiles
	}
}

func responseEdit(resp *discordgo.InteractionResponseData, messages ...any) {
	var newEmbeds []*discordgo.MessageEmbed
	var newComponents []discordgo.MessageComponent
	for _, m := range messages {
		switch c := m.(type) {
		case *discordgo.Message:
			resp.Content = c.Content
			resp.Embeds = c.Embeds
			resp.Components = c.Components
		case string:
			resp.Content = c
		case *discordgo.MessageEmbed:
			newEmbeds = append(newEmbeds, c)
		case discordgo.MessageEmbed:
			newEmbeds = append(newEmbeds, &c)
		case discordgo.MessageComponent:
			newComponents = append(newComponents, c)
		case []discordgo.MessageComponent:
			newComponents = append(newComponents, c...)
		}
	}
	if newComponents != nil {
		resp.Components = newComponents
	}
	if newEmbeds != nil {
		resp.Embeds = newEmbeds
	}
}
