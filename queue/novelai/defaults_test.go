package novelai

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"

	"image_bot/entities"
)

func TestBasePrompt(t *testing.T) {
	require.Nil(t, basePrompt("None", "fallback"))
	require.Equal(t, "fallback", *basePrompt(" default ", "fallback"))
	require.Equal(t, "masterpiece, 1girl", *basePrompt(", masterpiece, 1girl, ", "fallback"))
	require.Equal(t, "", *basePrompt("", "fallback"))
}

func stringOption(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func TestApplyDefaults(t *testing.T) {
	defaults := entities.DefaultUserDefaults("user")
	require.False(t, applyDefaults(defaults, nil))

	changed := applyDefaults(defaults, map[string]*discordgo.ApplicationCommandInteractionDataOption{
		basePromptOption: stringOption(basePromptOption, "none"),
		samplerOption:    stringOption(samplerOption, entities.SamplerDPM2M),
		guidanceOption: {
			Name:  guidanceOption,
			Type:  discordgo.ApplicationCommandOptionNumber,
			Value: 7.5,
		},
		decrisperOption: {
			Name:  decrisperOption,
			Type:  discordgo.ApplicationCommandOptionBoolean,
			Value: true,
		},
	})
	require.True(t, changed)
	require.Nil(t, defaults.BasePrompt)
	require.Equal(t, entities.DefaultNegativePrompt, *defaults.BaseNegativePrompt)
	require.Equal(t, entities.SamplerDPM2M, defaults.Sampler)
	require.Equal(t, 7.5, defaults.Guidance)
	require.True(t, defaults.Decrisper)
}

func TestResolutionChoices(t *testing.T) {
	require.Len(t, resolutionChoices(""), len(resolutions))

	var values []any
	for _, choice := range resolutionChoices("landscape") {
		values = append(values, choice.Value)
	}
	require.ElementsMatch(t, []any{
		entities.ResolutionNormalLandscape.String(),
		entities.ResolutionLargeLandscape.String(),
	}, values)

	require.Empty(t, resolutionChoices("zzz"))
}

func TestDefaultsEmbed(t *testing.T) {
	defaults := entities.DefaultUserDefaults("user")
	defaults.BaseNegativePrompt = nil

	embed := defaultsEmbed(defaults)
	require.Equal(t, "NovelAI default settings", embed.Title)

	fields := make(map[string]string)
	for _, field := range embed.Fields {
		fields[field.Name] = field.Value
	}
	require.Equal(t, entities.DefaultPrompt, fields["Base prompt"])
	require.Equal(t, "None", fields["Base negative prompt"])
	require.Equal(t, "Portrait (832x1216)", fields["Resolution"])
	require.Equal(t, "Euler", fields["Sampler"])
	require.Equal(t, "5.0", fields["Guidance"])
}
