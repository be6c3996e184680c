package entities

import "time"

// UserDefaults are the per-user values applied to every /novelai request
// unless the request sets them explicitly.
type UserDefaults struct {
	MemberID string `json:"member_id"`

	// BasePrompt is appended after every prompt. Nil means none.
	BasePrompt *string `json:"base_prompt"`
	// BaseNegativePrompt is appended after every negative prompt. Nil means none.
	BaseNegativePrompt *string `json:"base_negative_prompt"`

	Resolution      string  `json:"resolution"`
	Guidance        float64 `json:"guidance"`
	GuidanceRescale float64 `json:"guidance_rescale"`
	Sampler         string  `json:"sampler"`
	SamplerVersion  string  `json:"sampler_version"`
	NoiseSchedule   string  `json:"noise_schedule"`
	Decrisper       bool    `json:"decrisper"`
}

func DefaultUserDefaults(memberID string) *UserDefaults {
	prompt, negative := DefaultPrompt, DefaultNegativePrompt
	return &UserDefaults{
		MemberID:           memberID,
		BasePrompt:         &prompt,
		BaseNegativePrompt: &negative,
		Resolution:         ResolutionNormalPortrait.String(),
		Guidance:           5.0,
		GuidanceRescale:    0.0,
		Sampler:            SamplerEuler,
		SamplerVersion:     SamplerVersionRegular,
		NoiseSchedule:      ScheduleRecommended,
		Decrisper:          false,
	}
}

// BotSettings are the bot-wide values an owner can change at runtime.
type BotSettings struct {
	ServerCooldown int64  `json:"server_cooldown"`
	DMCooldown     int64  `json:"dm_cooldown"`
	LoadingEmoji   string `json:"loading_emoji"`
}

func DefaultBotSettings() BotSettings {
	return BotSettings{
		ServerCooldown: 0,
		DMCooldown:     60,
		LoadingEmoji:   "",
	}
}

// ImageGeneration is one delivered generation, recorded for later lookup by message.
type ImageGeneration struct {
	ID             int64
	MessageID      string
	InteractionID  string
	MemberID       string
	ChannelID      string
	Prompt         string
	NegativePrompt string
	Width          int64
	Height         int64
	Seed           int64
	Sampler        string
	Scale          float64
	CreatedAt      time.Time
}
