package queue

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

type Handler = func(*discordgo.Session, *discordgo.InteractionCreate) error

// CommandHandlers routes by interaction type, then by command name.
type CommandHandlers = map[discordgo.InteractionType]map[string]Handler

// Components routes message components by the custom ID prefix before ':'.
type Components = map[string]Handler

// Module is a group of commands registered together with the bot.
type Module interface {
	Commands() []*discordgo.ApplicationCommand
	Handlers() CommandHandlers
	Components() Components
}

// ComponentKey returns the routing key of a component custom ID, e.g.
// "novelai_retry:5d1c..." routes to "novelai_retry".
func ComponentKey(customID string) string {
	key, _, _ := strings.Cut(customID, ":")
	return key
}
