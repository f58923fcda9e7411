package state

import (
	"context"
	"database/sql"
	"errors"

	dbutil "github.com/llehouerou/reyvr/internal/db"
)

// PlayerState is what survives a restart besides saved playlists.
type PlayerState struct {
	Volume     float64
	LastFolder string
}

// GetPlayerState returns the persisted state. def is returned for anything
// never saved.
func (m *Manager) GetPlayerState(ctx context.Context, def PlayerState) (PlayerState, error) {
	var (
		volume sql.Null[float64]
		folder sql.Null[string]
	)
	row := m.db.QueryRowContext(ctx, `SELECT volume, last_folder FROM player_state WHERE id = 1`)
	err := row.Scan(&volume, &folder)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return def, err
	}

	st := PlayerState{
		Volume:     dbutil.Or(volume, def.Volume),
		LastFolder: dbutil.Or(folder, def.LastFolder),
	}
	if st.LastFolder == "" {
		st.LastFolder = def.LastFolder
	}
	return st, nil
}

// SaveVolume persists the volume level.
func (m *Manager) SaveVolume(ctx context.Context, volume float64) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO player_state (id, volume) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET volume = excluded.volume
	`, volume)
	return err
}

// SaveLastFolder persists the most recently loaded folder.
func (m *Manager) SaveLastFolder(ctx context.Context, folder string) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO player_state (id, last_folder) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET last_folder = excluded.last_folder
	`, folder)
	return err
}
