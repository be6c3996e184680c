package rule34

import "github.com/bwmarrin/discordgo"

const (
	SearchCommand      = "rule34"
	DeleteCacheCommand = "rule34deletecache"

	tagsOption = "tags"
)

func (r *Rule34) commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        SearchCommand,
			Description: "Finds an image on Rule34.xxx. Type tags separated by spaces.",
			Type:        discordgo.ChatApplicationCommand,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         tagsOption,
					Description:  "Will suggest tags with autocomplete. Separate tags with spaces.",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		{
			Name:        DeleteCacheCommand,
			Description: "Clears the cached tag suggestions. Bot owner only.",
			Type:        discordgo.ChatApplicationCommand,
		},
	}
}
