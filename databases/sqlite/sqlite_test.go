package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMigrates(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bot.sqlite")

	db, err := New(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"tag_cache", "user_defaults", "bot_settings", "guild_settings", "image_generations"} {
		var name string
		err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}

	// migrations are idempotent
	require.NoError(t, migrate(ctx, db))
}

func TestNewMissingDirectory(t *testing.T) {
	_, err := New(context.Background(), filepath.Join(t.TempDir(), "missing", "bot.sqlite"))
	require.Error(t, err)
}
