package novelai

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sahilm/fuzzy"

	"image_bot/discord_bot/handlers"
	"image_bot/entities"
	"image_bot/utils"
)

// resolutions lists the "W,H" presets in the order they are offered.
var resolutions = []string{
	entities.ResolutionNormalPortrait.String(),
	entities.ResolutionNormalLandscape.String(),
	entities.ResolutionNormalSquare.String(),
	entities.ResolutionLargePortrait.String(),
	entities.ResolutionLargeLandscape.String(),
	entities.ResolutionWallpaperPortrait.String(),
}

func (q *NAIQueue) processDefaultsCommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if q.defaults == nil {
		return handlers.ErrorEphemeral(s, i.Interaction, "Defaults are not available without a database.")
	}

	memberID := q.submitter(i.Interaction).ID
	defaults, err := q.defaults.Get(q.ctx, memberID)
	if err != nil {
		return handlers.ErrorEphemeral(s, i.Interaction, fmt.Errorf("error reading your defaults: %w", err))
	}

	if applyDefaults(defaults, utils.GetOpts(i.ApplicationCommandData())) {
		defaults, err = q.defaults.Upsert(q.ctx, defaults)
		if err != nil {
			return handlers.ErrorEphemeral(s, i.Interaction, fmt.Errorf("error saving your defaults: %w", err))
		}
	}

	return handlers.EphemeralContent(s, i.Interaction, defaultsEmbed(defaults))
}

// applyDefaults copies the options that were given onto defaults and reports whether any were.
func applyDefaults(defaults *entities.UserDefaults, optionMap map[string]*discordgo.ApplicationCommandInteractionDataOption) bool {
	changed := false
	if value := utils.StringOpt(optionMap, basePromptOption); value != nil {
		defaults.BasePrompt = basePrompt(*value, entities.DefaultPrompt)
		changed = true
	}
	if value := utils.StringOpt(optionMap, baseNegativeOption); value != nil {
		defaults.BaseNegativePrompt = basePrompt(*value, entities.DefaultNegativePrompt)
		changed = true
	}
	if value := utils.StringOpt(optionMap, resolutionOption); value != nil {
		defaults.Resolution = *value
		changed = true
	}
	if value := utils.FloatOpt(optionMap, guidanceOption); value != nil {
		defaults.Guidance = *value
		changed = true
	}
	if value := utils.FloatOpt(optionMap, guidanceRescaleOption); value != nil {
		defaults.GuidanceRescale = *value
		changed = true
	}
	if value := utils.StringOpt(optionMap, samplerOption); value != nil {
		defaults.Sampler = *value
		changed = true
	}
	if value := utils.StringOpt(optionMap, samplerVersionOption); value != nil {
		defaults.SamplerVersion = *value
		changed = true
	}
	if value := utils.StringOpt(optionMap, scheduleOption); value != nil {
		defaults.NoiseSchedule = *value
		changed = true
	}
	if value := utils.BoolOpt(optionMap, decrisperOption); value != nil {
		defaults.Decrisper = *value
		changed = true
	}
	return changed
}

// basePrompt reads a base prompt option, where "none" removes it and "default" restores fallback.
func basePrompt(value, fallback string) *string {
	value = strings.Trim(value, " ,")
	switch strings.ToLower(value) {
	case "none":
		return nil
	case "default":
		return &fallback
	}
	return &value
}

func defaultsEmbed(defaults *entities.UserDefaults) *discordgo.MessageEmbed {
	resolution, ok := entities.ResolutionTitles[defaults.Resolution]
	if !ok {
		resolution = defaults.Resolution
	}
	sampler, ok := entities.SamplerTitles[defaults.Sampler]
	if !ok {
		sampler = defaults.Sampler
	}

	return &discordgo.MessageEmbed{
		Title: "NovelAI default settings",
		Color: 0xffffff,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Base prompt", Value: promptField(defaults.BasePrompt)},
			{Name: "Base negative prompt", Value: promptField(defaults.BaseNegativePrompt)},
			{Name: "Resolution", Value: resolution, Inline: true},
			{Name: "Guidance", Value: fmt.Sprintf("%.1f", defaults.Guidance), Inline: true},
			{Name: "Guidance Rescale", Value: fmt.Sprintf("%.2f", defaults.GuidanceRescale), Inline: true},
			{Name: "Sampler", Value: sampler, Inline: true},
			{Name: "Sampler Version", Value: defaults.SamplerVersion, Inline: true},
			{Name: "Noise Schedule", Value: defaults.NoiseSchedule, Inline: true},
			{Name: "Decrisper", Value: fmt.Sprintf("%t", defaults.Decrisper), Inline: true},
		},
	}
}

func promptField(prompt *string) string {
	if prompt == nil || *prompt == "" {
		return "None"
	}
	return utils.Truncate(*prompt, 1000)
}

// autocompleteResolution ranks the resolution presets against what was typed.
func (q *NAIQueue) autocompleteResolution(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	var typed string
	if focused := utils.FocusedOption(i.ApplicationCommandData().Options); focused != nil {
		typed = focused.StringValue()
	}
	return handlers.Autocomplete(s, i.Interaction, resolutionChoices(typed))
}

func resolutionChoices(typed string) []*discordgo.ApplicationCommandOptionChoice {
	titles := make([]string, len(resolutions))
	for n, resolution := range resolutions {
		titles[n] = entities.ResolutionTitles[resolution]
	}

	choice := func(n int) *discordgo.ApplicationCommandOptionChoice {
		return &discordgo.ApplicationCommandOptionChoice{Name: titles[n], Value: resolutions[n]}
	}

	var choices []*discordgo.ApplicationCommandOptionChoice
	if typed = strings.TrimSpace(typed); typed == "" {
		for n := range resolutions {
			choices = append(choices, choice(n))
		}
		return choices
	}

	for _, match := range fuzzy.Find(typed, titles) {
		choices = append(choices, choice(match.Index))
	}
	return choices
}
