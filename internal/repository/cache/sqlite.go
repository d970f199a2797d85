package cache

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/jaennil/brutile/internal/tiling"
	"github.com/jaennil/brutile/pkg/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

type SQLiteCache struct {
	db     *sql.DB
	logger logger.Logger
}

var _ TileCache = (*SQLiteCache)(nil)

func NewSQLiteCache(path string, l logger.Logger) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// sqlite serializes writers anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	c := &SQLiteCache{
		db:     db,
		logger: l,
	}

	err = c.runMigrations()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	l.Info("sqlite cache initialized", "path", path)

	return c, nil
}

func (c *SQLiteCache) runMigrations() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	err := goose.SetDialect("sqlite3")
	if err != nil {
		return err
	}

	return goose.Up(c.db, "migrations")
}

func (c *SQLiteCache) Find(ctx context.Context, k tiling.TileIndex) ([]byte, bool, error) {
	c.logger.Debug("sqlite cache find", "tile", k)

	query := `SELECT tile_data
	FROM tile_cache
	WHERE tile_level = ? AND tile_col = ? AND tile_row = ?`

	var tileData []byte
	err := c.db.QueryRowContext(ctx, query, k.Level, k.Col, k.Row).Scan(&tileData)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		c.logger.Error("sqlite cache find failed", "tile", k, "error", err)
		return nil, false, err
	}

	return tileData, true, nil
}

func (c *SQLiteCache) Add(ctx context.Context, k tiling.TileIndex, v []byte) error {
	c.logger.Debug("sqlite cache add", "tile", k)

	query := `INSERT INTO tile_cache (tile_level, tile_col, tile_row, tile_data)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(tile_level, tile_col, tile_row) DO UPDATE SET tile_data = excluded.tile_data`

	_, err := c.db.ExecContext(ctx, query, k.Level, k.Col, k.Row, v)
	if err != nil {
		c.logger.Error("sqlite cache add failed", "tile", k, "error", err)
		return err
	}

	return nil
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
