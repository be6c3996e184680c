package rule34

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	booruapi "image_bot/api/booru"
	"image_bot/booru"
	"image_bot/discord_bot/handlers"
	"image_bot/entities"
	"image_bot/queue"
	"image_bot/utils"
)

const (
	embedColor = 0xD7598B
	embedIcon  = "https://i.imgur.com/FeRu6Pw.png"

	nsfwOnlyContent  = "This command can only be used in NSFW channels."
	searchErrContent = "Sorry, there was an error trying to grab an image from Rule34.xxx. Please try again or contact the bot owner."
	noResultsContent = "💨 No results found..."
)

func (r *Rule34) handlers() queue.CommandHandlers {
	return queue.CommandHandlers{
		discordgo.InteractionApplicationCommand: {
			SearchCommand:      r.processSearchCommand,
			DeleteCacheCommand: r.processDeleteCacheCommand,
		},
		discordgo.InteractionApplicationCommandAutocomplete: {
			SearchCommand: r.autocompleteTags,
		},
	}
}

func (r *Rule34) processSearchCommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if !utils.IsNSFW(s, i.Interaction) {
		return handlers.MessageResponse(s, i.Interaction, nsfwOnlyContent)
	}

	var tags string
	if value := utils.StringOpt(utils.GetOpts(i.ApplicationCommandData()), tagsOption); value != nil {
		tags = normalizeTags(*value)
	}

	if err := handlers.ThinkResponse(s, i); err != nil {
		return err
	}

	ctx, cancel := searchContext()
	defer cancel()

	post, err := r.picker.Pick(ctx, tags, i.ChannelID)
	if err != nil {
		log.Error().Err(err).Str("tags", tags).Msg("Failed to grab image from Rule34.xxx")
		_, err = handlers.EditInteractionResponse(s, i.Interaction, searchErrContent)
		return err
	}
	if post == nil {
		_, err = handlers.EditInteractionResponse(s, i.Interaction, &discordgo.MessageEmbed{
			Description: noResultsContent,
			Color:       embedColor,
		})
		return err
	}

	_, err = handlers.EditInteractionResponse(s, i.Interaction, postEmbed(post))
	return err
}

// normalizeTags treats the autocomplete placeholders as an empty search.
func normalizeTags(tags string) string {
	tags = strings.TrimSpace(tags)
	switch strings.ToLower(tags) {
	case "none", strings.ToLower(booru.ErrorSuggestion):
		return ""
	}
	return tags
}

func postEmbed(post *entities.Post) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Color: embedColor,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    "Rule34 Post",
			URL:     post.PageURL(booruapi.PostHost),
			IconURL: embedIcon,
		},
		Image:  &discordgo.MessageEmbedImage{URL: post.DisplayURL()},
		Footer: &discordgo.MessageEmbedFooter{Text: "⭐ " + humanize.Comma(post.Score)},
	}
	if post.Source != "" {
		embed.Description = fmt.Sprintf("[🔗 Original Source](%s)", post.Source)
	}
	return embed
}

func (r *Rule34) processDeleteCacheCommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if user := utils.GetUser(i.Interaction); user == nil || user.ID != r.ownerID {
		return handlers.EphemeralContent(s, i.Interaction, "Only the bot owner can use this command.")
	}

	ctx, cancel := searchContext()
	defer cancel()

	cached := r.tags.Len()
	if err := r.tags.Clear(ctx); err != nil {
		return handlers.ErrorEphemeral(s, i.Interaction, fmt.Errorf("error clearing tag cache: %w", err))
	}
	log.Printf("Cleared %d cached tag queries", cached)

	return handlers.EphemeralContent(s, i.Interaction, fmt.Sprintf("✅ Cleared %s cached tag queries.", humanize.Comma(int64(cached))))
}

func (r *Rule34) autocompleteTags(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	var current string
	if focused := utils.FocusedOption(i.ApplicationCommandData().Options); focused != nil {
		current = focused.StringValue()
	}

	ctx, cancel := searchContext()
	defer cancel()

	return handlers.Autocomplete(s, i.Interaction, handlers.StringChoices(r.tags.Suggest(ctx, current)))
}
