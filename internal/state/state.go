// Package state persists what survives a restart: the player settings and,
// through the playlists store, the saved playlists.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"

	dbutil "github.com/llehouerou/reyvr/internal/db"
	"github.com/llehouerou/reyvr/internal/playlists"
)

// migrations are applied in order; append, never edit.
var migrations = []string{
	`CREATE TABLE player_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		volume REAL,
		last_folder TEXT
	)`,
	playlists.Schema,
}

// Manager owns the application database.
type Manager struct {
	db *sql.DB
}

// Open opens $XDG_DATA_HOME/reyvr/reyvr.db.
func Open(ctx context.Context) (*Manager, error) {
	path, err := xdg.DataFile(filepath.Join("reyvr", "reyvr.db"))
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	return OpenPath(ctx, path)
}

// OpenPath opens and migrates the database at path; dbutil.Memory gives a
// throwaway one.
func OpenPath(ctx context.Context, path string) (*Manager, error) {
	db, err := dbutil.Open(path)
	if err != nil {
		return nil, err
	}
	if err := dbutil.Migrate(ctx, db, migrations); err != nil {
		db.Close()
		return nil, err
	}
	return &Manager{db: db}, nil
}

func (m *Manager) Close() error { return m.db.Close() }

// DB is shared with the saved-playlist store.
func (m *Manager) DB() *sql.DB { return m.db }
