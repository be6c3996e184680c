package utils

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

func GetOpts(data discordgo.ApplicationCommandInteractionData) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := data.Options
	optionMap := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		optionMap[opt.Name] = opt
	}
	return optionMap
}

// SubcommandOpts returns the name and options of the subcommand that was invoked.
func SubcommandOpts(data discordgo.ApplicationCommandInteractionData) (string, map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	if len(data.Options) == 0 || data.Options[0].Type != discordgo.ApplicationCommandOptionSubCommand {
		return "", nil
	}
	sub := data.Options[0]
	optionMap := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(sub.Options))
	for _, opt := range sub.Options {
		optionMap[opt.Name] = opt
	}
	return sub.Name, optionMap
}

// FocusedOption is the option being typed during an autocomplete interaction.
func FocusedOption(options []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range options {
		if opt.Focused {
			return opt
		}
		if focused := FocusedOption(opt.Options); focused != nil {
			return focused
		}
	}
	return nil
}

func StringOpt(optionMap map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) *string {
	if option, ok := optionMap[name]; ok {
		value := option.StringValue()
		return &value
	}
	return nil
}

func IntOpt(optionMap map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) *int64 {
	if option, ok := optionMap[name]; ok {
		value := option.IntValue()
		return &value
	}
	return nil
}

func FloatOpt(optionMap map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) *float64 {
	if option, ok := optionMap[name]; ok {
		value := option.FloatValue()
		return &value
	}
	return nil
}

func BoolOpt(optionMap map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) *bool {
	if option, ok := optionMap[name]; ok {
		value := option.BoolValue()
		return &value
	}
	return nil
}

// GetAttachment returns the resolved attachment passed as option name.
func GetAttachment(i *discordgo.InteractionCreate, optionMap map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.MessageAttachment {
	option, ok := optionMap[name]
	if !ok {
		return nil
	}
	resolved := i.ApplicationCommandData().Resolved
	if resolved == nil || resolved.Attachments == nil {
		return nil
	}
	id, _ := option.Value.(string)
	return resolved.Attachments[id]
}

// IsImageAttachment reports whether the attachment is an image Discord knows the size of.
func IsImageAttachment(attachment *discordgo.MessageAttachment) bool {
	return attachment != nil &&
		strings.HasPrefix(attachment.ContentType, "image") &&
		attachment.Width > 0 && attachment.Height > 0
}

// Truncate cuts s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
