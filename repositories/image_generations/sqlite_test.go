package image_generations

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"image_bot/clock"
	"image_bot/databases/sqlite"
	"image_bot/entities"
	"image_bot/repositories"
)

func TestCreateAndGetByMessage(t *testing.T) {
	ctx := context.Background()

	db, err := sqlite.New(ctx, filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	repo, err := NewRepository(&Config{DB: db, Clock: clock.NewMock(now)})
	require.NoError(t, err)

	created, err := repo.Create(ctx, &entities.ImageGeneration{
		MessageID:      "m1",
		InteractionID:  "i1",
		MemberID:       "u1",
		ChannelID:      "c1",
		Prompt:         "cat",
		NegativePrompt: "lowres",
		Width:          832,
		Height:         1216,
		Seed:           1234,
		Sampler:        entities.SamplerEuler,
		Scale:          5,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, now, created.CreatedAt)

	got, err := repo.GetByMessage(ctx, "m1")
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, "cat", got.Prompt)
	require.Equal(t, int64(1234), got.Seed)
	require.Equal(t, int64(1216), got.Height)
	require.True(t, now.Equal(got.CreatedAt))

	_, err = repo.GetByMessage(ctx, "missing")
	require.ErrorIs(t, err, repositories.ErrNotFound)
}
