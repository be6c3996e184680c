package novelai

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"image_bot/clock"
	"image_bot/entities"
)

type RejectReason string

const (
	RejectUnconfigured RejectReason = "unconfigured"
	RejectBusy         RejectReason = "busy"
	RejectCooldown     RejectReason = "cooldown"
	RejectNSFWChannel  RejectReason = "nsfw_channel"
	RejectPrivateTerms RejectReason = "private_terms"
	RejectTerms        RejectReason = "terms"
)

const (
	unconfiguredContent = "NovelAI token not set. The bot owner needs to set `NOVELAI_TOKEN` and restart the bot."
	busyContent         = "Your current image must finish generating before you can request another one."
)

// Rejection is a request refused before it reached the queue.
type Rejection struct {
	Reason  RejectReason
	Message string
	// ResumeAt is when a cooldown ends.
	ResumeAt time.Time
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("request rejected (%s): %s", r.Reason, r.Message)
}

// Ephemeral reports whether only the submitter should see the rejection.
func (r *Rejection) Ephemeral() bool {
	return r.Reason == RejectBusy || r.Reason == RejectCooldown
}

// State is the per-submitter bookkeeping of the queue.
type State interface {
	Generating(submitterID string) bool
	LastDone(submitterID string) (time.Time, bool)
}

type SettingsReader interface {
	Bot(ctx context.Context) (entities.BotSettings, error)
	NSFWFilter(ctx context.Context, guildID string) (bool, error)
}

type DefaultsReader interface {
	Get(ctx context.Context, memberID string) (*entities.UserDefaults, error)
}

type GateConfig struct {
	State      State
	Settings   SettingsReader
	Defaults   DefaultsReader
	Clock      clock.Clock
	Configured bool
	// Seed picks a seed when the request leaves it unset.
	Seed func() int64
}

// Gate decides whether a request may be queued and normalizes it into a Job.
type Gate struct {
	state      State
	settings   SettingsReader
	defaults   DefaultsReader
	clock      clock.Clock
	configured bool
	seed       func() int64
}

func NewGate(cfg GateConfig) *Gate {
	if cfg.Clock == nil {
		cfg.Clock = clock.NewClock()
	}
	if cfg.Seed == nil {
		cfg.Seed = randomSeed
	}
	return &Gate{
		state:      cfg.State,
		settings:   cfg.Settings,
		defaults:   cfg.Defaults,
		clock:      cfg.Clock,
		configured: cfg.Configured,
		seed:       cfg.Seed,
	}
}

// Admit applies the concurrency and cooldown rules. Owners are always admitted.
func (g *Gate) Admit(ctx context.Context, submitter Submitter, where Where) error {
	if !g.configured {
		return &Rejection{Reason: RejectUnconfigured, Message: unconfiguredContent}
	}
	if submitter.Owner {
		return nil
	}
	if g.state.Generating(submitter.ID) {
		return &Rejection{Reason: RejectBusy, Message: busyContent}
	}

	last, ok := g.state.LastDone(submitter.ID)
	if !ok {
		return nil
	}

	bot := g.botSettings(ctx)
	cooldown := bot.ServerCooldown
	if where.IsDM() {
		cooldown = bot.DMCooldown
	}

	resumeAt := last.Add(time.Duration(cooldown) * time.Second)
	if !g.clock.Now().Before(resumeAt) {
		return nil
	}

	content := fmt.Sprintf("You may use this command again <t:%d:R>.", resumeAt.Unix())
	if where.IsDM() {
		content += " (You can use it more frequently inside a server)"
	}
	return &Rejection{Reason: RejectCooldown, Message: content, ResumeAt: resumeAt}
}

// Validate turns raw into a Job ready for the queue, or returns a *Rejection.
func (g *Gate) Validate(ctx context.Context, raw RawRequest, submitter Submitter, where Where) (*Job, error) {
	if err := g.Admit(ctx, submitter, where); err != nil {
		return nil, err
	}

	defaults := g.userDefaults(ctx, submitter.ID)
	prompt := mergePrompt(raw.Prompt, defaults.BasePrompt)
	negative := mergePrompt(raw.NegativePrompt, defaults.BaseNegativePrompt)

	prompt, rejection := checkContent(prompt, where, g.nsfwFilter(ctx, where))
	if rejection != nil {
		return nil, rejection
	}

	request := resolve(raw, prompt, negative, defaults, g.seed)
	job := newJob(submitter, where, request, g.clock.Now())
	job.FixedSeed = raw.Seed != nil && *raw.Seed > 0
	if raw.Image != "" {
		job.UseImage(raw.Image, raw.Strength, raw.Noise)
	}
	return job, nil
}

func (g *Gate) botSettings(ctx context.Context) entities.BotSettings {
	if g.settings == nil {
		return entities.DefaultBotSettings()
	}
	bot, err := g.settings.Bot(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error reading bot settings, using defaults")
		return entities.DefaultBotSettings()
	}
	return bot
}

func (g *Gate) userDefaults(ctx context.Context, memberID string) *entities.UserDefaults {
	if g.defaults == nil {
		return entities.DefaultUserDefaults(memberID)
	}
	defaults, err := g.defaults.Get(ctx, memberID)
	if err != nil {
		log.Error().Err(err).Str("member", memberID).Msg("Error reading user defaults, using defaults")
		return entities.DefaultUserDefaults(memberID)
	}
	return defaults
}

func (g *Gate) nsfwFilter(ctx context.Context, where Where) bool {
	if g.settings == nil || where.IsDM() || where.NSFW {
		return false
	}
	filtered, err := g.settings.NSFWFilter(ctx, where.GuildID)
	if err != nil {
		log.Error().Err(err).Str("guild", where.GuildID).Msg("Error reading NSFW filter")
		return false
	}
	return filtered
}
