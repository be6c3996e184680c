package tag_cache

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

const (
	selectAll = `SELECT query, tags FROM tag_cache;`
	upsert    = `INSERT INTO tag_cache (query, tags) VALUES (?, ?)
	             ON CONFLICT(query) DO UPDATE SET tags = excluded.tags;`
	deleteAll = `DELETE FROM tag_cache;`
)

type Repository interface {
	All(ctx context.Context) (map[string][]string, error)
	Put(ctx context.Context, query string, tags []string) error
	Clear(ctx context.Context) error
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

// All returns every cached query. Tags are stored space separated.
func (repo *sqliteRepo) All(ctx context.Context) (map[string][]string, error) {
	rows, err := repo.dbConn.QueryContext(ctx, selectAll)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	all := make(map[string][]string)
	for rows.Next() {
		var query, tags string
		if err := rows.Scan(&query, &tags); err != nil {
			return nil, err
		}
		all[query] = strings.Fields(tags)
	}
	return all, rows.Err()
}

func (repo *sqliteRepo) Put(ctx context.Context, query string, tags []string) error {
	_, err := repo.dbConn.ExecContext(ctx, upsert, query, strings.Join(tags, " "))
	return err
}

func (repo *sqliteRepo) Clear(ctx context.Context) error {
	_, err := repo.dbConn.ExecContext(ctx, deleteAll)
	return err
}
