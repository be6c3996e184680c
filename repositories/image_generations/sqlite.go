package image_generations

import (
	"context"
	"database/sql"
	"errors"

	"image_bot/clock"
	"image_bot/entities"
	"image_bot/repositories"
)

const insertGenerationQuery string = `
INSERT INTO image_generations (message_id, interaction_id, member_id, channel_id, prompt,
                               negative_prompt, width, height, seed, sampler, scale, created_at) VALUES
                            (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`

const getGenerationByMessageID string = `
SELECT id, message_id, interaction_id, member_id, channel_id, prompt,
       negative_prompt, width, height, seed, sampler, scale, created_at
FROM image_generations WHERE message_id = ? ORDER BY id DESC LIMIT 1;
`

type sqliteRepo struct {
	dbConn *sql.DB
	clock  clock.Clock
}

type Config struct {
	DB    *sql.DB
	Clock clock.Clock
}

func NewRepository(cfg *Config) (Repository, error) {
	if cfg.DB == nil {
		return nil, errors.New("missing DB parameter")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewClock()
	}

	newRepo := &sqliteRepo{
		dbConn: cfg.DB,
		clock:  cfg.Clock,
	}

	return newRepo, nil
}

func (repo *sqliteRepo) Create(ctx context.Context, generation *entities.ImageGeneration) (*entities.ImageGeneration, error) {
	if generation.CreatedAt.IsZero() {
		generation.CreatedAt = repo.clock.Now()
	}

	res, err := repo.dbConn.ExecContext(ctx, insertGenerationQuery,
		generation.MessageID, generation.InteractionID, generation.MemberID, generation.ChannelID, generation.Prompt,
		generation.NegativePrompt, generation.Width, generation.Height, generation.Seed, generation.Sampler, generation.Scale,
		generation.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	lastID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	generation.ID = lastID

	return generation, nil
}

func (repo *sqliteRepo) GetByMessage(ctx context.Context, messageID string) (*entities.ImageGeneration, error) {
	var generation entities.ImageGeneration

	err := repo.dbConn.QueryRowContext(ctx, getGenerationByMessageID, messageID).Scan(
		&generation.ID, &generation.MessageID, &generation.InteractionID, &generation.MemberID, &generation.ChannelID, &generation.Prompt,
		&generation.NegativePrompt, &generation.Width, &generation.Height, &generation.Seed, &generation.Sampler, &generation.Scale,
		&generation.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &repositories.NotFoundError{Entity: "generation for message", Key: messageID}
	}
	if err != nil {
		return nil, err
	}

	return &generation, nil
}
