package default_settings

import (
	"context"
	"database/sql"
	"errors"

	"image_bot/entities"
)

const (
	getDefaults = `
SELECT user_id, base_prompt, base_negative_prompt, resolution, guidance, guidance_rescale,
       sampler, sampler_version, noise_schedule, decrisper FROM user_defaults WHERE user_id = ?;
`
	upsertDefaults = `
INSERT INTO user_defaults (user_id, base_prompt, base_negative_prompt, resolution, guidance, guidance_rescale,
                           sampler, sampler_version, noise_schedule, decrisper)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
    base_prompt = excluded.base_prompt,
    base_negative_prompt = excluded.base_negative_prompt,
    resolution = excluded.resolution,
    guidance = excluded.guidance,
    guidance_rescale = excluded.guidance_rescale,
    sampler = excluded.sampler,
    sampler_version = excluded.sampler_version,
    noise_schedule = excluded.noise_schedule,
    decrisper = excluded.decrisper;
`
)

type Repository interface {
	// Get returns the stored defaults, or the built-in ones if the user never set any.
	Get(ctx context.Context, memberID string) (*entities.UserDefaults, error)
	Upsert(ctx context.Context, defaults *entities.UserDefaults) (*entities.UserDefaults, error)
}

type Config struct {
	DB *sql.DB
}

type sqliteRepo struct {
	dbConn *sql.DB
}

func NewRepository(cfg *Config) (Repository, error) {
	if cfg.DB == nil {
		return nil, errors.New("missing DB parameter")
	}
	return &sqliteRepo{dbConn: cfg.DB}, nil
}

func (repo *sqliteRepo) Get(ctx context.Context, memberID string) (*entities.UserDefaults, error) {
	var defaults entities.UserDefaults
	var basePrompt, baseNegative sql.NullString

	err := repo.dbConn.QueryRowContext(ctx, getDefaults, memberID).Scan(
		&defaults.MemberID, &basePrompt, &baseNegative, &defaults.Resolution, &defaults.Guidance, &defaults.GuidanceRescale,
		&defaults.Sampler, &defaults.SamplerVersion, &defaults.NoiseSchedule, &defaults.Decrisper,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.DefaultUserDefaults(memberID), nil
	}
	if err != nil {
		return nil, err
	}

	if basePrompt.Valid {
		defaults.BasePrompt = &basePrompt.String
	}
	if baseNegative.Valid {
		defaults.BaseNegativePrompt = &baseNegative.String
	}
	return &defaults, nil
}

func (repo *sqliteRepo) Upsert(ctx context.Context, defaults *entities.UserDefaults) (*entities.UserDefaults, error) {
	_, err := repo.dbConn.ExecContext(ctx, upsertDefaults,
		defaults.MemberID, nullable(defaults.BasePrompt), nullable(defaults.BaseNegativePrompt),
		defaults.Resolution, defaults.Guidance, defaults.GuidanceRescale,
		defaults.Sampler, defaults.SamplerVersion, defaults.NoiseSchedule, defaults.Decrisper,
	)
	if err != nil {
		return nil, err
	}
	return defaults, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
