package novelai

import (
	"testing"

	"github.com/stretchr/testify/require"

	"image_bot/entities"
)

func TestResolveSchedule(t *testing.T) {
	tests := []struct {
		sampler  string
		schedule string
		want     string
	}{
		{entities.SamplerEuler, entities.ScheduleRecommended, entities.ScheduleNative},
		{entities.SamplerDPM2M, entities.ScheduleRecommended, entities.ScheduleExponential},
		{entities.SamplerDPM2M, "", entities.ScheduleExponential},
		{entities.SamplerEuler, entities.ScheduleKarras, entities.ScheduleKarras},
		{entities.SamplerEulerAncestral, entities.ScheduleKarras, entities.ScheduleNative},
		{entities.SamplerEulerAncestral, entities.ScheduleExponential, entities.ScheduleExponential},
		{entities.SamplerDDIM, entities.ScheduleExponential, entities.ScheduleNative},
		{entities.SamplerDPMSDE, entities.SchedulePolyexponential, entities.SchedulePolyexponential},
	}
	for _, tt := range tests {
		t.Run(tt.sampler+"/"+tt.schedule, func(t *testing.T) {
			require.Equal(t, tt.want, ResolveSchedule(tt.sampler, tt.schedule))
		})
	}
}

func TestMergePrompt(t *testing.T) {
	base := "best quality"
	empty := ""

	require.Equal(t, "1girl, best quality", mergePrompt("1girl", &base))
	require.Equal(t, "1girl, best quality", mergePrompt(", 1girl, ", &base))
	require.Equal(t, "best quality", mergePrompt("", &base))
	require.Equal(t, "1girl", mergePrompt("1girl", nil))
	require.Equal(t, "1girl", mergePrompt("1girl", &empty))
}

func TestResolveExplicitValuesWin(t *testing.T) {
	defaults := entities.DefaultUserDefaults("user")
	defaults.Decrisper = true

	guidance, rescale, decrisper := 0.0, 0.3, false
	seed := int64(42)
	sampler := entities.SamplerDPMSDE
	version := entities.SamplerVersionSMEA
	request := resolve(RawRequest{
		Seed:            &seed,
		Guidance:        &guidance,
		GuidanceRescale: &rescale,
		Decrisper:       &decrisper,
		Sampler:         &sampler,
		SamplerVersion:  &version,
	}, "1girl", "", defaults, func() int64 { t.Fatal("seed should not be drawn"); return 0 })

	p := request.Parameters
	require.Equal(t, "1girl", request.Input)
	require.Equal(t, entities.DefaultNegativePrompt, p.NegativePrompt)
	require.Zero(t, p.Scale)
	require.Equal(t, 0.3, p.CfgRescale)
	require.False(t, p.Decrisper)
	require.Equal(t, int64(42), p.Seed)
	require.Equal(t, entities.SamplerDPMSDE, p.Sampler)
	require.True(t, p.Smea)
	require.False(t, p.SmeaDyn)
	require.Equal(t, uint8(1), p.ImageCount)
	require.Equal(t, int64(entities.UCNone), p.UcPreset)
	require.False(t, p.QualityToggle)
}

func TestResolveFallsBackToDefaults(t *testing.T) {
	defaults := entities.DefaultUserDefaults("user")
	defaults.Guidance = 6.5
	defaults.Resolution = "not a resolution"
	empty := ""

	request := resolve(RawRequest{Sampler: &empty}, "1girl", "lowres", defaults, func() int64 { return 7 })

	p := request.Parameters
	require.Equal(t, "lowres", p.NegativePrompt)
	require.Equal(t, 6.5, p.Scale)
	require.Equal(t, entities.SamplerEuler, p.Sampler)
	require.Equal(t, entities.ScheduleNative, p.NoiseSchedule)
	require.Equal(t, int64(1024), p.Width)
	require.Equal(t, int64(1024), p.Height)
	require.Equal(t, int64(7), p.Seed)
	require.False(t, p.Smea)
}

func TestResolveOutOfRangeResolution(t *testing.T) {
	for _, resolution := range []string{"10,10", "1024,0", "99999,1024", "-64,64"} {
		t.Run(resolution, func(t *testing.T) {
			request := resolve(RawRequest{Resolution: &resolution}, "1girl", "", entities.DefaultUserDefaults("user"), randomSeed)
			require.Equal(t, int64(1024), request.Parameters.Width)
			require.Equal(t, int64(1024), request.Parameters.Height)

			_, err := request.Reader()
			require.NoError(t, err)
		})
	}
}

func TestResolveSeedMustBePositive(t *testing.T) {
	zero := int64(0)
	request := resolve(RawRequest{Seed: &zero}, "1girl", "", entities.DefaultUserDefaults("user"), func() int64 { return 99 })
	require.Equal(t, int64(99), request.Parameters.Seed)
}

func TestResolveDDIMIgnoresVersion(t *testing.T) {
	defaults := entities.DefaultUserDefaults("user")
	defaults.Sampler = entities.SamplerDDIM
	defaults.SamplerVersion = entities.SamplerVersionDYN

	request := resolve(RawRequest{}, "1girl", "", defaults, func() int64 { return 1 })
	require.False(t, request.Parameters.Smea)
	require.False(t, request.Parameters.SmeaDyn)
}

func TestRandomSeedRange(t *testing.T) {
	for range 100 {
		seed := randomSeed()
		require.Positive(t, seed)
		require.LessOrEqual(t, seed, int64(entities.MaxSeed))
	}
}
