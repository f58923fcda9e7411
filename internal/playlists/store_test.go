package playlists

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbutil "github.com/llehouerou/reyvr/internal/db"
)

// setupTestDB creates an in-memory SQLite database with the schema initialized.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := dbutil.Open(dbutil.Memory)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, EnsureSchema(context.Background(), db))
	return db
}

func sample() SavedPlaylists {
	return SavedPlaylists{Playlists: []SavedPlaylist{
		{Name: "morning", URIs: []string{"/m/b.mp3", "/m/a.mp3", "/m/c.flac"}},
		{Name: "empty"},
		{Name: "evening", URIs: []string{"file:///m/z.ogg"}},
	}}
}

func TestLoad_EmptyDatabase(t *testing.T) {
	s := NewStore(setupTestDB(t))

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := NewStore(setupTestDB(t))
	ctx := context.Background()
	want := sample()

	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSave_IdempotentAfterLoad(t *testing.T) {
	s := NewStore(setupTestDB(t))
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sample()))

	first, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, first))
	second, err := s.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSave_ReplacesEverything(t *testing.T) {
	s := NewStore(setupTestDB(t))
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sample()))

	smaller := SavedPlaylists{Playlists: []SavedPlaylist{{Name: "only", URIs: []string{"/x.mp3"}}}}
	require.NoError(t, s.Save(ctx, smaller))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, smaller, got)
}

func TestSave_DuplicateNameRollsBack(t *testing.T) {
	s := NewStore(setupTestDB(t))
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sample()))

	bad := SavedPlaylists{Playlists: []SavedPlaylist{
		{Name: "dup", URIs: []string{"/a.mp3"}},
		{Name: "dup", URIs: []string{"/b.mp3"}},
	}}
	require.Error(t, s.Save(ctx, bad))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample(), got, "failed save must leave the previous collection intact")
}

func TestLoad_SoftFailure(t *testing.T) {
	db, err := dbutil.Open(dbutil.Memory)
	require.NoError(t, err)
	defer db.Close()

	// no schema: the query fails
	got, err := NewStore(db).Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestSave_CancelledContext(t *testing.T) {
	s := NewStore(setupTestDB(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, s.Save(ctx, sample()))
}
