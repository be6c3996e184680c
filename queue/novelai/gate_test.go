package novelai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"image_bot/clock"
	"image_bot/entities"
)

type fakeState struct {
	generating map[string]bool
	lastDone   map[string]time.Time
}

func (s *fakeState) Generating(id string) bool { return s.generating[id] }

func (s *fakeState) LastDone(id string) (time.Time, bool) {
	last, ok := s.lastDone[id]
	return last, ok
}

type fakeSettings struct {
	bot      entities.BotSettings
	filtered map[string]bool
}

func (s *fakeSettings) Bot(context.Context) (entities.BotSettings, error) { return s.bot, nil }

func (s *fakeSettings) NSFWFilter(_ context.Context, guildID string) (bool, error) {
	return s.filtered[guildID], nil
}

type fakeDefaults struct {
	defaults *entities.UserDefaults
	err      error
}

func (d *fakeDefaults) Get(_ context.Context, memberID string) (*entities.UserDefaults, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.defaults == nil {
		return entities.DefaultUserDefaults(memberID), nil
	}
	return d.defaults, nil
}

var (
	guildChannel = Where{GuildID: "guild", ChannelID: "general"}
	nsfwChannel  = Where{GuildID: "guild", ChannelID: "nsfw", NSFW: true}
	dmChannel    = Where{ChannelID: "dm"}
)

func newTestGate(state *fakeState, now clock.Clock) (*Gate, *fakeSettings) {
	settings := &fakeSettings{
		bot:      entities.BotSettings{ServerCooldown: 30, DMCooldown: 60},
		filtered: map[string]bool{},
	}
	empty := ""
	return NewGate(GateConfig{
		State:    state,
		Settings: settings,
		Defaults: &fakeDefaults{defaults: &entities.UserDefaults{
			BasePrompt:         &empty,
			BaseNegativePrompt: &empty,
			Resolution:         entities.ResolutionNormalPortrait.String(),
			Guidance:           5,
			Sampler:            entities.SamplerEuler,
			SamplerVersion:     entities.SamplerVersionRegular,
			NoiseSchedule:      entities.ScheduleRecommended,
		}},
		Clock:      now,
		Configured: true,
		Seed:       func() int64 { return 1234 },
	}), settings
}

func requireRejected(t *testing.T, err error, reason RejectReason) *Rejection {
	t.Helper()
	var rejection *Rejection
	require.True(t, errors.As(err, &rejection), "expected a rejection, got %v", err)
	require.Equal(t, reason, rejection.Reason)
	return rejection
}

func TestGateCooldownBoundary(t *testing.T) {
	last := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := clock.NewMock(last)
	gate, _ := newTestGate(&fakeState{lastDone: map[string]time.Time{"user": last}}, now)
	user := Submitter{ID: "user"}

	now.Set(last.Add(29 * time.Second))
	rejection := requireRejected(t, gate.Admit(context.Background(), user, guildChannel), RejectCooldown)
	require.Equal(t, last.Add(30*time.Second), rejection.ResumeAt)
	require.Equal(t, "You may use this command again <t:1714564830:R>.", rejection.Message)
	require.True(t, rejection.Ephemeral())

	now.Set(last.Add(30 * time.Second))
	require.NoError(t, gate.Admit(context.Background(), user, guildChannel))
}

func TestGateDMCooldown(t *testing.T) {
	last := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := clock.NewMock(last.Add(45 * time.Second))
	gate, _ := newTestGate(&fakeState{lastDone: map[string]time.Time{"user": last}}, now)
	user := Submitter{ID: "user"}

	require.NoError(t, gate.Admit(context.Background(), user, guildChannel))

	rejection := requireRejected(t, gate.Admit(context.Background(), user, dmChannel), RejectCooldown)
	require.Equal(t, last.Add(time.Minute), rejection.ResumeAt)
	require.Contains(t, rejection.Message, "(You can use it more frequently inside a server)")
}

func TestGateBusy(t *testing.T) {
	state := &fakeState{generating: map[string]bool{"user": true, "owner": true}}
	gate, _ := newTestGate(state, clock.NewMock(time.Now()))

	requireRejected(t, gate.Admit(context.Background(), Submitter{ID: "user"}, guildChannel), RejectBusy)
	require.NoError(t, gate.Admit(context.Background(), Submitter{ID: "owner", Owner: true}, guildChannel))

	state.generating["user"] = false
	require.NoError(t, gate.Admit(context.Background(), Submitter{ID: "user"}, guildChannel))
}

func TestGateOwnerSkipsCooldown(t *testing.T) {
	now := time.Now()
	gate, _ := newTestGate(&fakeState{lastDone: map[string]time.Time{"owner": now}}, clock.NewMock(now))
	require.NoError(t, gate.Admit(context.Background(), Submitter{ID: "owner", Owner: true}, dmChannel))
}

func TestGateUnconfigured(t *testing.T) {
	gate := NewGate(GateConfig{State: &fakeState{}})
	_, err := gate.Validate(context.Background(), RawRequest{Prompt: "1girl"}, Submitter{ID: "user"}, guildChannel)
	requireRejected(t, err, RejectUnconfigured)
}

func TestGateContentPolicy(t *testing.T) {
	tests := []struct {
		name     string
		prompt   string
		where    Where
		filtered bool
		reason   RejectReason
		want     string
	}{
		{name: "nsfw outside nsfw channel", prompt: "1girl, nude", where: guildChannel, reason: RejectNSFWChannel},
		{name: "nsfw in nsfw channel", prompt: "1girl, nude", where: nsfwChannel, want: "1girl, nude"},
		{name: "nsfw in private", prompt: "1girl, nude", where: dmChannel, want: "1girl, nude"},
		{name: "strict terms in private", prompt: "loli", where: dmChannel, reason: RejectPrivateTerms},
		{name: "strict terms with nsfw", prompt: "loli, nude", where: nsfwChannel, reason: RejectTerms},
		{name: "strict terms alone in server", prompt: "child, park", where: guildChannel, want: "child, park"},
		{name: "filtered server", prompt: "1girl, beach", where: guildChannel, filtered: true, want: "rating:general, 1girl, beach"},
		{name: "filter ignored in nsfw channel", prompt: "1girl, beach", where: nsfwChannel, filtered: true, want: "1girl, beach"},
		{name: "case insensitive", prompt: "NSFW", where: guildChannel, reason: RejectNSFWChannel},
		{name: "whole words only", prompt: "sexy kidnapper", where: guildChannel, want: "sexy kidnapper"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate, settings := newTestGate(&fakeState{}, clock.NewMock(time.Now()))
			settings.filtered["guild"] = tt.filtered

			job, err := gate.Validate(context.Background(), RawRequest{Prompt: tt.prompt}, Submitter{ID: "user"}, tt.where)
			if tt.reason != "" {
				requireRejected(t, err, tt.reason)
				require.Nil(t, job)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, job.Request.Input)
		})
	}
}

func TestGateMergesBasePrompts(t *testing.T) {
	gate, _ := newTestGate(&fakeState{}, clock.NewMock(time.Now()))
	base, negative := "best quality", "lowres"
	gate.defaults = &fakeDefaults{defaults: &entities.UserDefaults{
		BasePrompt:         &base,
		BaseNegativePrompt: &negative,
		Resolution:         "1216,832",
		Guidance:           6,
		Sampler:            entities.SamplerDPM2M,
		SamplerVersion:     entities.SamplerVersionDYN,
		NoiseSchedule:      entities.ScheduleRecommended,
	}}

	job, err := gate.Validate(context.Background(), RawRequest{Prompt: " 1girl, ", NegativePrompt: "blurry"}, Submitter{ID: "user"}, nsfwChannel)
	require.NoError(t, err)
	require.Equal(t, "1girl, best quality", job.Request.Input)
	require.Equal(t, "blurry, lowres", job.Request.Parameters.NegativePrompt)
	require.Equal(t, int64(1216), job.Request.Parameters.Width)
	require.Equal(t, int64(832), job.Request.Parameters.Height)
	require.Equal(t, entities.ScheduleExponential, job.Request.Parameters.NoiseSchedule)
	require.True(t, job.Request.Parameters.Smea)
	require.True(t, job.Request.Parameters.SmeaDyn)
	require.Equal(t, int64(1234), job.Request.Parameters.Seed)
	require.Equal(t, ItemTypeImage, job.Type)

	job, err = gate.Validate(context.Background(), RawRequest{}, Submitter{ID: "user"}, nsfwChannel)
	require.NoError(t, err)
	require.Equal(t, "best quality", job.Request.Input)
}

func TestGateFallsBackOnDefaultsError(t *testing.T) {
	gate, _ := newTestGate(&fakeState{}, clock.NewMock(time.Now()))
	gate.defaults = &fakeDefaults{err: errors.New("database is locked")}

	job, err := gate.Validate(context.Background(), RawRequest{Prompt: "1girl"}, Submitter{ID: "user"}, nsfwChannel)
	require.NoError(t, err)
	require.Equal(t, "1girl, "+entities.DefaultPrompt, job.Request.Input)
}

func TestGateImg2Img(t *testing.T) {
	gate, _ := newTestGate(&fakeState{}, clock.NewMock(time.Now()))
	resolution := "1024,1024"

	job, err := gate.Validate(context.Background(), RawRequest{
		Prompt:     "1girl",
		Resolution: &resolution,
		Image:      "aW1hZ2U=",
		Strength:   0.7,
		Noise:      0.1,
	}, Submitter{ID: "user"}, nsfwChannel)
	require.NoError(t, err)
	require.Equal(t, ItemTypeImg2Img, job.Type)
	require.Equal(t, entities.ActionImg2Img, job.Request.Action)
	require.Equal(t, "aW1hZ2U=", job.Request.Parameters.Image)
	require.Equal(t, 0.7, job.Request.Parameters.Strength)
	require.Equal(t, 0.1, job.Request.Parameters.Noise)
}
