package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"image_bot/entities"
)

const (
	KeyServerCooldown = "server_cooldown"
	KeyDMCooldown     = "dm_cooldown"
	KeyLoadingEmoji   = "loading_emoji"
)

const (
	selectSettings = `SELECT key, value FROM bot_settings;`
	upsertSetting  = `INSERT INTO bot_settings (key, value) VALUES (?, ?)
	                  ON CONFLICT(key) DO UPDATE SET value = excluded.value;`
	selectFilter = `SELECT nsfw_filter FROM guild_settings WHERE guild_id = ?;`
	toggleFilter = `INSERT INTO guild_settings (guild_id, nsfw_filter) VALUES (?, 1)
	                ON CONFLICT(guild_id) DO UPDATE SET nsfw_filter = NOT nsfw_filter
	                RETURNING nsfw_filter;`
)

// Repository stores bot-wide settings and per-guild settings.
type Repository interface {
	Bot(ctx context.Context) (entities.BotSettings, error)
	SetServerCooldown(ctx context.Context, seconds int64) error
	SetDMCooldown(ctx context.Context, seconds int64) error
	SetLoadingEmoji(ctx context.Context, emoji string) error

	NSFWFilter(ctx context.Context, guildID string) (bool, error)
	// ToggleNSFWFilter flips the guild's filter and returns the new value.
	ToggleNSFWFilter(ctx context.Context, guildID string) (bool, error)
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

func (repo *sqliteRepo) Bot(ctx context.Context) (entities.BotSettings, error) {
	settings := entities.DefaultBotSettings()

	rows, err := repo.dbConn.QueryContext(ctx, selectSettings)
	if err != nil {
		return settings, err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return settings, err
		}
		switch key {
		case KeyServerCooldown:
			settings.ServerCooldown, err = strconv.ParseInt(value, 10, 64)
		case KeyDMCooldown:
			settings.DMCooldown, err = strconv.ParseInt(value, 10, 64)
		case KeyLoadingEmoji:
			settings.LoadingEmoji = value
		}
		if err != nil {
			return settings, fmt.Errorf("error parsing setting %s: %w", key, err)
		}
	}
	return settings, rows.Err()
}

func (repo *sqliteRepo) SetServerCooldown(ctx context.Context, seconds int64) error {
	return repo.set(ctx, KeyServerCooldown, strconv.FormatInt(max(0, seconds), 10))
}

func (repo *sqliteRepo) SetDMCooldown(ctx context.Context, seconds int64) error {
	return repo.set(ctx, KeyDMCooldown, strconv.FormatInt(max(0, seconds), 10))
}

func (repo *sqliteRepo) SetLoadingEmoji(ctx context.Context, emoji string) error {
	return repo.set(ctx, KeyLoadingEmoji, emoji)
}

func (repo *sqliteRepo) set(ctx context.Context, key, value string) error {
	_, err := repo.dbConn.ExecContext(ctx, upsertSetting, key, value)
	return err
}

func (repo *sqliteRepo) NSFWFilter(ctx context.Context, guildID string) (bool, error) {
	var enabled bool
	err := repo.dbConn.QueryRowContext(ctx, selectFilter, guildID).Scan(&enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return enabled, err
}

func (repo *sqliteRepo) ToggleNSFWFilter(ctx context.Context, guildID string) (bool, error) {
	var enabled bool
	err := repo.dbConn.QueryRowContext(ctx, toggleFilter, guildID).Scan(&enabled)
	return enabled, err
}
