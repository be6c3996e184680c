package default_settings

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"image_bot/databases/sqlite"
	"image_bot/entities"
)

func newRepo(t *testing.T) Repository {
	t.Helper()

	db, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewRepository(&Config{DB: db})
	require.NoError(t, err)
	return repo
}

func TestGetFallsBackToDefaults(t *testing.T) {
	repo := newRepo(t)

	defaults, err := repo.Get(context.Background(), "42")
	require.NoError(t, err)
	require.Equal(t, entities.DefaultUserDefaults("42"), defaults)
}

func TestUpsertRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	defaults := entities.DefaultUserDefaults("42")
	defaults.BasePrompt = nil
	defaults.Resolution = entities.ResolutionNormalSquare.String()
	defaults.Sampler = entities.SamplerDPM2M
	defaults.Decrisper = true
	_, err := repo.Upsert(ctx, defaults)
	require.NoError(t, err)

	got, err := repo.Get(ctx, "42")
	require.NoError(t, err)
	require.Nil(t, got.BasePrompt)
	require.NotNil(t, got.BaseNegativePrompt)
	require.Equal(t, entities.DefaultNegativePrompt, *got.BaseNegativePrompt)
	require.Equal(t, "1024,1024", got.Resolution)
	require.Equal(t, entities.SamplerDPM2M, got.Sampler)
	require.True(t, got.Decrisper)

	defaults.Guidance = 7.5
	_, err = repo.Upsert(ctx, defaults)
	require.NoError(t, err)

	got, err = repo.Get(ctx, "42")
	require.NoError(t, err)
	require.InDelta(t, 7.5, got.Guidance, 0.0001)
}
