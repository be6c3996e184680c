package novelai

import (
	"math/rand/v2"
	"strings"

	"image_bot/entities"
)

// RawRequest holds the options of a generation command as typed.
// Nil fields fall back to the submitter's stored defaults.
type RawRequest struct {
	Prompt         string
	NegativePrompt string

	Seed            *int64
	Resolution      *string
	Guidance        *float64
	GuidanceRescale *float64
	Sampler         *string
	SamplerVersion  *string
	NoiseSchedule   *string
	Decrisper       *bool

	// Image is the base64 encoded img2img source, already scaled to Resolution.
	Image    string
	Strength float64
	Noise    float64
}

// ResolveSchedule picks the noise schedule for "Always pick recommended" and
// replaces combinations the sampler does not support.
func ResolveSchedule(sampler, schedule string) string {
	if schedule == "" || strings.Contains(strings.ToLower(schedule), "recommended") {
		schedule = entities.ScheduleNative
		if strings.Contains(sampler, "2m") {
			schedule = entities.ScheduleExponential
		}
	}
	if strings.Contains(sampler, "ddim") || strings.Contains(sampler, "ancestral") && schedule == entities.ScheduleKarras {
		schedule = entities.ScheduleNative
	}
	return schedule
}

// mergePrompt appends base after prompt, or uses base alone when prompt is empty.
func mergePrompt(prompt string, base *string) string {
	if base == nil || *base == "" {
		return prompt
	}
	if prompt == "" {
		return *base
	}
	return strings.Trim(prompt, " ,") + ", " + *base
}

func randomSeed() int64 {
	return rand.Int64N(entities.MaxSeed) + 1
}

func resolve(raw RawRequest, prompt, negative string, defaults *entities.UserDefaults, seed func() int64) *entities.NovelAIRequest {
	request := entities.DefaultNovelAIRequest()
	request.Input = prompt

	p := &request.Parameters
	p.NegativePrompt = negative
	if p.NegativePrompt == "" {
		p.NegativePrompt = entities.DefaultNegativePrompt
	}

	p.Width, p.Height = entities.ParseResolution(pickString(raw.Resolution, defaults.Resolution))
	p.ImageCount = 1
	p.UcPreset = entities.UCNone
	p.QualityToggle = false
	p.Sampler = pickString(raw.Sampler, defaults.Sampler)
	p.Scale = pick(raw.Guidance, defaults.Guidance)
	p.CfgRescale = pick(raw.GuidanceRescale, defaults.GuidanceRescale)
	p.Decrisper = pick(raw.Decrisper, defaults.Decrisper)
	p.NoiseSchedule = ResolveSchedule(p.Sampler, pickString(raw.NoiseSchedule, defaults.NoiseSchedule))
	p.UncondScale = 1.0

	if raw.Seed != nil && *raw.Seed > 0 {
		p.Seed = *raw.Seed
	} else {
		p.Seed = seed()
	}

	if !strings.Contains(p.Sampler, "ddim") {
		version := pickString(raw.SamplerVersion, defaults.SamplerVersion)
		p.Smea = strings.Contains(version, "SMEA")
		p.SmeaDyn = strings.Contains(version, "DYN")
	}

	return request
}

func pick[T any](explicit *T, fallback T) T {
	if explicit == nil {
		return fallback
	}
	return *explicit
}

// pickString also treats an empty option as unset.
func pickString(explicit *string, fallback string) string {
	if explicit == nil || *explicit == "" {
		return fallback
	}
	return *explicit
}
