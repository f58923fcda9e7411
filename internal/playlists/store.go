package playlists

import (
	"context"
	"database/sql"
	"fmt"

	dbutil "github.com/llehouerou/reyvr/internal/db"
)

// Schema creates the saved-playlist tables.
const Schema = `
	CREATE TABLE IF NOT EXISTS saved_playlists (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		position INTEGER NOT NULL,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS saved_playlist_tracks (
		playlist_id INTEGER NOT NULL REFERENCES saved_playlists(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		uri TEXT NOT NULL,
		PRIMARY KEY (playlist_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_saved_playlists_position ON saved_playlists(position);
`

// EnsureSchema creates the saved-playlist tables if missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}

// Store loads and saves the saved-playlist collection.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over db. The schema must already exist.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Load reads every saved playlist. Failures are soft: the caller always gets
// a usable (possibly empty) collection alongside the error.
func (s *Store) Load(ctx context.Context) (SavedPlaylists, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, t.uri
		FROM saved_playlists p
		LEFT JOIN saved_playlist_tracks t ON t.playlist_id = p.id
		ORDER BY p.position, t.position
	`)
	if err != nil {
		return SavedPlaylists{}, fmt.Errorf("query saved playlists: %w", err)
	}
	defer rows.Close()

	var (
		result SavedPlaylists
		lastID int64 = -1
	)
	for rows.Next() {
		var (
			id   int64
			name string
			uri  sql.Null[string]
		)
		if err := rows.Scan(&id, &name, &uri); err != nil {
			return SavedPlaylists{}, fmt.Errorf("scan saved playlist: %w", err)
		}
		if id != lastID {
			result.Playlists = append(result.Playlists, SavedPlaylist{Name: name})
			lastID = id
		}
		if uri.Valid {
			cur := &result.Playlists[len(result.Playlists)-1]
			cur.URIs = append(cur.URIs, uri.V)
		}
	}
	if err := rows.Err(); err != nil {
		return SavedPlaylists{}, fmt.Errorf("read saved playlists: %w", err)
	}
	return result, nil
}

// Save replaces the persisted collection with s in a single transaction.
func (s *Store) Save(ctx context.Context, all SavedPlaylists) error {
	return dbutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM saved_playlist_tracks`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM saved_playlists`); err != nil {
			return err
		}

		insertPlaylist, err := tx.PrepareContext(ctx,
			`INSERT INTO saved_playlists (position, name) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		defer insertPlaylist.Close()

		insertTrack, err := tx.PrepareContext(ctx,
			`INSERT INTO saved_playlist_tracks (playlist_id, position, uri) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer insertTrack.Close()

		for i, p := range all.Playlists {
			res, err := insertPlaylist.ExecContext(ctx, i, p.Name)
			if err != nil {
				return fmt.Errorf("save playlist %q: %w", p.Name, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			for j, uri := range p.URIs {
				if _, err := insertTrack.ExecContext(ctx, id, j, uri); err != nil {
					return fmt.Errorf("save playlist %q: %w", p.Name, err)
				}
			}
		}
		return nil
	})
}
