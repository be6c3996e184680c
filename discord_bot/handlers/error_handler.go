package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Token is redacted from every error shown in Discord.
var Token *string

const errorColor = 0xED4245

// ErrorEdit edits the interaction response into an error message with a deletion button.
func ErrorEdit(bot *discordgo.Session, i *discordgo.Interaction, errorContent ...any) error {
	embed, toPrint := errorEmbed(i, errorContent...)

	logError(toPrint, i, errorContent...)

	_, err := bot.InteractionResponseEdit(i, &discordgo.WebhookEdit{
		Content:    sanitizeToken(&toPrint),
		Components: &[]discordgo.MessageComponent{Components[DeleteButton]},
		Embeds:     &embed,
	})
	if err != nil {
		return fmt.Errorf("error editing interaction for error (%v): %w", toPrint, err)
	}
	return nil
}

// ErrorEphemeral responds to the interaction with an error only the caller sees.
func ErrorEphemeral(bot *discordgo.Session, i *discordgo.Interaction, errorContent ...any) error {
	embed, toPrint := errorEmbed(i, errorContent...)

	logError(toPrint, i, errorContent...)

	return bot.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:   discordgo.MessageFlagsEphemeral,
			Content: *sanitizeToken(&toPrint),
			Embeds:  embed,
		},
	})
}

// ErrorFollowup sends the error as an ephemeral followup message.
func ErrorFollowup(bot *discordgo.Session, i *discordgo.Interaction, errorContent ...any) error {
	embed, toPrint := errorEmbed(i, errorContent...)

	logError(toPrint, i, errorContent...)

	_, err := bot.FollowupMessageCreate(i, true, &discordgo.WebhookParams{
		Flags:   discordgo.MessageFlagsEphemeral,
		Content: *sanitizeToken(&toPrint),
		Embeds:  embed,
	})
	return err
}

// Unknown channel, message, webhook and interaction.
var goneCodes = []int{10003, 10008, 10015, 10062}

// IsGone reports whether err means the message or interaction no longer exists,
// e.g. it was deleted or the interaction token expired.
func IsGone(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil {
		for _, code := range goneCodes {
			if restErr.Message.Code == code {
				return true
			}
		}
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

func formatError(errorContent ...any) string {
	if len(errorContent) < 1 {
		errorContent = []any{"An unknown error has occurred"}
	}

	var errs []string
	for _, content := range errorContent {
		switch content := content.(type) {
		case string:
			errs = append(errs, content)
		case []string:
			errs = append(errs, content...)
		case error:
			errs = append(errs, content.Error())
		case []any:
			errs = append(errs, formatError(content...))
		default:
			errs = append(errs, fmt.Sprintf("An unknown error has occured\nReceived: %v", content))
		}
	}

	errorString := strings.Join(errs, "\n")
	if len(errs) > 1 {
		errorString = "Multiple errors have occurred:\n" + errorString
	}

	return errorString
}

func errorEmbed(i *discordgo.Interaction, errorContent ...any) ([]*discordgo.MessageEmbed, string) {
	errorString := formatError(errorContent...)

	embed := []*discordgo.MessageEmbed{
		{
			Type: discordgo.EmbedTypeRich,
			Fields: []*discordgo.MessageEmbedField{
				{
					Name:   "Error",
					Value:  *sanitizeToken(&errorString),
					Inline: false,
				},
			},
			Color: errorColor,
		},
	}

	var toPrint strings.Builder
	// Could not run the [command] `command` on message https://discord.com/channels/123456789012345678/1234567890123456789/1234567890123456789
	toPrint.Grow(192)

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		toPrint.WriteString(fmt.Sprintf(
			"Could not run the [command] `%v`",
			i.ApplicationCommandData().Name,
		))
	case discordgo.InteractionMessageComponent:
		toPrint.WriteString(fmt.Sprintf(
			"Could not run the [button] `%v`",
			i.MessageComponentData().CustomID,
		))
		if i.Message != nil {
			toPrint.WriteString(fmt.Sprintf(" on message https://discord.com/channels/%v/%v/%v", i.GuildID, i.ChannelID, i.Message.ID))
		}
	}
	return embed, toPrint.String()
}

func sanitizeToken(errorString *string) *string {
	if errorString == nil || Token == nil || *Token == "" {
		return errorString
	}
	if strings.Contains(*errorString, *Token) {
		log.Printf("WARNING: Bot token was found in the error message. Replacing it with \"[TOKEN]\"")
		sanitizedString := strings.ReplaceAll(*errorString, *Token, "[TOKEN]")
		errorString = &sanitizedString
	}
	return errorString
}

func logError(errorString string, i *discordgo.Interaction, errorContent ...any) {
	event := log.Error().Str("error", *sanitizeToken(&errorString))
	if detail := formatError(errorContent...); detail != "" {
		event = event.Str("detail", *sanitizeToken(&detail))
	}
	if i != nil {
		event = event.Str("interaction", i.ID)
		if i.Member != nil && i.Member.User != nil {
			event = event.Str("user", i.Member.User.Username)
		} else if i.User != nil {
			event = event.Str("user", i.User.Username)
		}
	}
	event.Msg("A command failed to execute")
}
