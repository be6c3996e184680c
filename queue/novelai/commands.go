package novelai

import (
	"github.com/bwmarrin/discordgo"

	"image_bot/entities"
)

const (
	NovelAICommand  = "novelai"
	Img2ImgCommand  = "novelai-img2img"
	DefaultsCommand = "novelaidefaults"
	SettingsCommand = "novelaiset"
)

const (
	promptOption          = "prompt"
	negativeOption        = "negative_prompt"
	seedOption            = "seed"
	resolutionOption      = "resolution"
	guidanceOption        = "guidance"
	guidanceRescaleOption = "guidance_rescale"
	samplerOption         = "sampler"
	samplerVersionOption  = "sampler_version"
	scheduleOption        = "noise_schedule"
	decrisperOption       = "decrisper"

	imageOption    = "image"
	strengthOption = "strength"
	noiseOption    = "noise"

	basePromptOption   = "base_prompt"
	baseNegativeOption = "base_negative_prompt"

	serverCooldownSub = "servercooldown"
	dmCooldownSub     = "dmcooldown"
	nsfwFilterSub     = "nsfwfilter"
	loadingEmojiSub   = "loadingemoji"

	secondsOption = "seconds"
	emojiOption   = "emoji"
)

func (q *NAIQueue) commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        NovelAICommand,
			Description: "Generate anime images with NovelAI v3.",
			Type:        discordgo.ChatApplicationCommand,
			Options: []*discordgo.ApplicationCommandOption{
				commandOptions[promptOption],
				commandOptions[negativeOption],
				commandOptions[seedOption],
				commandOptions[resolutionOption],
				commandOptions[guidanceOption],
				commandOptions[guidanceRescaleOption],
				commandOptions[samplerOption],
				commandOptions[samplerVersionOption],
				commandOptions[scheduleOption],
				commandOptions[decrisperOption],
			},
		},
		{
			Name:        Img2ImgCommand,
			Description: "Convert img2img with NovelAI v3.",
			Type:        discordgo.ChatApplicationCommand,
			Options: []*discordgo.ApplicationCommandOption{
				commandOptions[imageOption],
				commandOptions[strengthOption],
				commandOptions[noiseOption],
				commandOptions[promptOption],
				commandOptions[negativeOption],
				commandOptions[seedOption],
				commandOptions[guidanceOption],
				commandOptions[guidanceRescaleOption],
				commandOptions[samplerOption],
				commandOptions[samplerVersionOption],
				commandOptions[scheduleOption],
				commandOptions[decrisperOption],
			},
		},
		{
			Name:        DefaultsCommand,
			Description: "Views or updates your personal default values for /novelai",
			Type:        discordgo.ChatApplicationCommand,
			Options: []*discordgo.ApplicationCommandOption{
				commandOptions[basePromptOption],
				commandOptions[baseNegativeOption],
				commandOptions[resolutionOption],
				commandOptions[guidanceOption],
				commandOptions[guidanceRescaleOption],
				commandOptions[samplerOption],
				commandOptions[samplerVersionOption],
				commandOptions[scheduleOption],
				commandOptions[decrisperOption],
			},
		},
		{
			Name:        SettingsCommand,
			Description: "Configure /novelai bot-wide.",
			Type:        discordgo.ChatApplicationCommand,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        serverCooldownSub,
					Description: "Seconds between a user's generation ending and their next one, inside a server.",
					Options:     []*discordgo.ApplicationCommandOption{commandOptions[secondsOption]},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        dmCooldownSub,
					Description: "Seconds between a user's generation ending and their next one, in DMs with the bot.",
					Options:     []*discordgo.ApplicationCommandOption{commandOptions[secondsOption]},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        nsfwFilterSub,
					Description: "Toggles the NSFW filter for /novelai in this server.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        loadingEmojiSub,
					Description: "Emoji shown next to the position in queue. Leave empty to remove it.",
					Options:     []*discordgo.ApplicationCommandOption{commandOptions[emojiOption]},
				},
			},
		},
	}
}

var (
	minZero     = 0.0
	maxGuidance = 10.0
	minSeed     = 0.0
	maxSeed     = float64(entities.MaxSeed)
	maxCooldown = 86400.0
	maxUnit     = 1.0
)

var commandOptions = map[string]*discordgo.ApplicationCommandOption{
	promptOption: {
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        promptOption,
		Description: "Gets added to your base prompt (/novelaidefaults)",
		Required:    true,
		MaxLength:   4000,
	},
	negativeOption: {
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        negativeOption,
		Description: "Gets added to your base negative prompt (/novelaidefaults)",
		MaxLength:   4000,
	},
	seedOption: {
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        seedOption,
		Description: "Random number that determines image generation.",
		MinValue:    &minSeed,
		MaxValue:    maxSeed,
	},
	resolutionOption: {
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         resolutionOption,
		Description:  "The aspect ratio of your image.",
		Autocomplete: true,
	},
	guidanceOption: {
		Type:        discordgo.ApplicationCommandOptionNumber,
		Name:        guidanceOption,
		Description: "The intensity of the prompt.",
		MinValue:    &minZero,
		MaxValue:    maxGuidance,
	},
	guidanceRescaleOption: {
		Type:        discordgo.ApplicationCommandOptionNumber,
		Name:        guidanceRescaleOption,
		Description: "Adjusts the guidance somehow.",
		MinValue:    &minZero,
		MaxValue:    maxUnit,
	},
	samplerOption: {
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        samplerOption,
		Description: "Changes the aesthetic of the image.",
		Choices:     samplerChoices(),
	},
	samplerVersionOption: {
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        samplerVersionOption,
		Description: "Samplers can be modified to improve performance on higher resolutions.",
		Choices: []*discordgo.ApplicationCommandOptionChoice{
			{Name: entities.SamplerVersionRegular, Value: entities.SamplerVersionRegular},
			{Name: entities.SamplerVersionSMEA, Value: entities.SamplerVersionSMEA},
			{Name: entities.SamplerVersionDYN, Value: entities.SamplerVersionDYN},
		},
	},
	scheduleOption: {
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        scheduleOption,
		Description: "Changes the way the image is sampled over time.",
		Choices: []*discordgo.ApplicationCommandOptionChoice{
			{Name: entities.ScheduleRecommended, Value: entities.ScheduleRecommended},
			{Name: entities.ScheduleNative, Value: entities.ScheduleNative},
			{Name: entities.ScheduleKarras, Value: entities.ScheduleKarras},
			{Name: entities.ScheduleExponential, Value: entities.ScheduleExponential},
			{Name: entities.SchedulePolyexponential, Value: entities.SchedulePolyexponential},
		},
	},
	decrisperOption: {
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        decrisperOption,
		Description: "Reduces artifacts caused by high guidance.",
	},

	imageOption: {
		Type:        discordgo.ApplicationCommandOptionAttachment,
		Name:        imageOption,
		Description: "The image you want to use as a base.",
		Required:    true,
	},
	strengthOption: {
		Type:        discordgo.ApplicationCommandOptionNumber,
		Name:        strengthOption,
		Description: "How much you want the image to change. 0.7 is default.",
		Required:    true,
		MinValue:    &minZero,
		MaxValue:    maxUnit,
	},
	noiseOption: {
		Type:        discordgo.ApplicationCommandOptionNumber,
		Name:        noiseOption,
		Description: "Adds new detail to your image. 0 is default.",
		Required:    true,
		MinValue:    &minZero,
		MaxValue:    maxUnit,
	},

	basePromptOption: {
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        basePromptOption,
		Description: `Gets added after each prompt. "none" to delete, "default" to reset.`,
		MaxLength:   4000,
	},
	baseNegativeOption: {
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        baseNegativeOption,
		Description: `Gets added after each negative prompt. "none" to delete, "default" to reset.`,
		MaxLength:   4000,
	},

	secondsOption: {
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        secondsOption,
		Description: "Leave empty to see the current value.",
		MinValue:    &minZero,
		MaxValue:    maxCooldown,
	},
	emojiOption: {
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        emojiOption,
		Description: "An emoji the bot can use, e.g. a custom loading animation.",
		MaxLength:   100,
	},
}

func samplerChoices() []*discordgo.ApplicationCommandOptionChoice {
	samplers := []string{
		entities.SamplerEuler,
		entities.SamplerEulerAncestral,
		entities.SamplerDPM2SAncestral,
		entities.SamplerDPM2M,
		entities.SamplerDPMSDE,
		entities.SamplerDDIM,
	}
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(samplers))
	for _, sampler := range samplers {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  entities.SamplerTitles[sampler],
			Value: sampler,
		})
	}
	return choices
}
