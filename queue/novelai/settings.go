package novelai

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"image_bot/discord_bot/handlers"
	"image_bot/utils"
)

const (
	ownerOnlyContent = "Only the bot owner can use this command."
	adminOnlyContent = "Only server administrators can use this command."
	guildOnlyContent = "This command can only be used in a server."
)

func (q *NAIQueue) processSettingsCommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if q.settings == nil {
		return handlers.ErrorEphemeral(s, i.Interaction, "Settings are not available without a database.")
	}

	name, optionMap := utils.SubcommandOpts(i.ApplicationCommandData())
	user := q.submitter(i.Interaction)

	switch name {
	case serverCooldownSub, dmCooldownSub:
		if !user.Owner {
			return handlers.EphemeralContent(s, i.Interaction, ownerOnlyContent)
		}
		return q.setCooldown(s, i, name, utils.IntOpt(optionMap, secondsOption))
	case nsfwFilterSub:
		if utils.IsDM(i.Interaction) {
			return handlers.EphemeralContent(s, i.Interaction, guildOnlyContent)
		}
		if !utils.IsAdmin(i.Interaction) && !user.Owner {
			return handlers.EphemeralContent(s, i.Interaction, adminOnlyContent)
		}
		return q.toggleNSFWFilter(s, i)
	case loadingEmojiSub:
		if !user.Owner {
			return handlers.EphemeralContent(s, i.Interaction, ownerOnlyContent)
		}
		var emoji string
		if value := utils.StringOpt(optionMap, emojiOption); value != nil {
			emoji = strings.TrimSpace(*value)
		}
		return q.setLoadingEmoji(s, i, emoji)
	default:
		return handlers.ErrorEphemeral(s, i.Interaction, fmt.Sprintf("Unknown subcommand %q", name))
	}
}

func (q *NAIQueue) setCooldown(s *discordgo.Session, i *discordgo.InteractionCreate, name string, seconds *int64) error {
	place := "inside a server"
	set := q.settings.SetServerCooldown
	if name == dmCooldownSub {
		place = "in DMs with the bot"
		set = q.settings.SetDMCooldown
	}

	var value int64
	if seconds == nil {
		bot, err := q.settings.Bot(q.ctx)
		if err != nil {
			return handlers.ErrorEphemeral(s, i.Interaction, fmt.Errorf("error reading settings: %w", err))
		}
		value = bot.ServerCooldown
		if name == dmCooldownSub {
			value = bot.DMCooldown
		}
	} else {
		value = max(0, *seconds)
		if err := set(q.ctx, value); err != nil {
			return handlers.ErrorEphemeral(s, i.Interaction, fmt.Errorf("error saving cooldown: %w", err))
		}
		log.Printf("Cooldown %s set to %d seconds", name, value)
	}

	return handlers.EphemeralContent(s, i.Interaction,
		fmt.Sprintf("Users will need to wait %d seconds between generations %s.", value, place))
}

func (q *NAIQueue) toggleNSFWFilter(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	enabled, err := q.settings.ToggleNSFWFilter(q.ctx, i.GuildID)
	if err != nil {
		return handlers.ErrorEphemeral(s, i.Interaction, fmt.Errorf("error toggling NSFW filter: %w", err))
	}
	if enabled {
		return handlers.MessageResponse(s, i.Interaction, "NSFW filter enabled in non-nsfw channels. Note that this is not perfect.")
	}
	return handlers.MessageResponse(s, i.Interaction, "NSFW filter disabled. Images may more easily be NSFW by accident.")
}

func (q *NAIQueue) setLoadingEmoji(s *discordgo.Session, i *discordgo.InteractionCreate, emoji string) error {
	stored := ""
	if emoji != "" {
		stored = emoji + " "
	}
	if err := q.settings.SetLoadingEmoji(q.ctx, stored); err != nil {
		return handlers.ErrorEphemeral(s, i.Interaction, fmt.Errorf("error saving loading emoji: %w", err))
	}
	q.SetLoadingEmoji(stored)

	if emoji == "" {
		return handlers.EphemeralContent(s, i.Interaction, "No emoji will appear when showing position in queue.")
	}
	return handlers.EphemeralContent(s, i.Interaction, emoji+" will now appear when showing position in queue.")
}
