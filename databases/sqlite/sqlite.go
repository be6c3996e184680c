package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const DefaultPath = "image_bot.sqlite"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS tag_cache (
		query TEXT PRIMARY KEY,
		tags  TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS user_defaults (
		user_id              TEXT PRIMARY KEY,
		base_prompt          TEXT,
		base_negative_prompt TEXT,
		resolution           TEXT NOT NULL,
		guidance             REAL NOT NULL,
		guidance_rescale     REAL NOT NULL,
		sampler              TEXT NOT NULL,
		sampler_version      TEXT NOT NULL,
		noise_schedule       TEXT NOT NULL,
		decrisper            BOOLEAN NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS bot_settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS guild_settings (
		guild_id    TEXT PRIMARY KEY,
		nsfw_filter BOOLEAN NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS image_generations (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		message_id      TEXT NOT NULL,
		interaction_id  TEXT NOT NULL,
		member_id       TEXT NOT NULL,
		channel_id      TEXT NOT NULL,
		prompt          TEXT NOT NULL,
		negative_prompt TEXT NOT NULL,
		width           INTEGER NOT NULL,
		height          INTEGER NOT NULL,
		seed            INTEGER NOT NULL,
		sampler         TEXT NOT NULL,
		scale           REAL NOT NULL,
		created_at      DATETIME NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_image_generations_message_id ON image_generations (message_id);`,
}

// New opens (or creates) the database at path and brings the schema up to date.
func New(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("error applying %q: %w", pragma, err)
		}
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("Opened sqlite database %s", path)
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, migration := range migrations {
		if _, err := tx.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("error running migration %d: %w", i, err)
		}
	}
	return tx.Commit()
}
