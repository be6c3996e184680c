package handlers

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"image_bot/queue"
	"image_bot/utils"
)

// ComponentHandlers are the buttons shared by every module.
var ComponentHandlers = queue.Components{
	DeleteButton: func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		err := s.ChannelMessageDelete(i.ChannelID, i.Message.ID)
		if err != nil {
			return ErrorEphemeral(s, i.Interaction, err)
		}
		return nil
	},

	DeleteGeneration: func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		if err := EphemeralThink(s, i); err != nil {
			return err
		}

		var originalInteractionUser string

		switch u := utils.GetUser(i.Message.Interaction); {
		case u != nil:
			originalInteractionUser = u.ID
		case len(i.Message.Mentions) > 0:
			log.Printf("WARN: Using mentions to determine original interaction user")
			originalInteractionUser = i.Message.Mentions[0].ID
		default:
			log.Printf("Unable to determine original interaction user of message %v", i.Message.ID)
			return ErrorEdit(s, i.Interaction, "Unable to determine original interaction user")
		}

		if utils.GetUser(i.Interaction).ID != originalInteractionUser {
			return ErrorEdit(s, i.Interaction, "You can only delete your own generations")
		}
		err := s.ChannelMessageDelete(i.ChannelID, i.Message.ID)
		if err != nil {
			return ErrorEdit(s, i.Interaction, fmt.Errorf("error deleting message: %w", err))
		}

		_, err = EditInteractionResponse(s, i.Interaction, "Generation deleted")
		return err
	},
}
