package player

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeID3File(t *testing.T, build func(*id3v2.Tag)) string {
	t.Helper()
	tag := id3v2.NewEmptyTag()
	build(tag)

	path := filepath.Join(t.TempDir(), "track.mp3")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = tag.WriteTo(f)
	require.NoError(t, err)
	_, err = f.Write([]byte("audio frames"))
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return path
}

func TestReadID3v2(t *testing.T) {
	art := []byte("\x89PNG fake")
	path := writeID3File(t, func(tag *id3v2.Tag) {
		tag.SetTitle("Song")
		tag.SetArtist("Artist")
		tag.SetAlbum("Album")
		tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, "Band")
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    "image/png",
			PictureType: id3v2.PTFrontCover,
			Picture:     art,
		})
	})

	tf, err := readID3v2(path, true)
	require.NoError(t, err)
	assert.Equal(t, "Song", tf.title)
	assert.Equal(t, "Artist", tf.artist)
	assert.Equal(t, "Album", tf.album)
	assert.Equal(t, "Band", tf.albumArtist)
	assert.Equal(t, art, tf.picture)

	tf, err = readID3v2(path, false)
	require.NoError(t, err)
	assert.Nil(t, tf.picture)
}

func TestReadID3v2_NoFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.mp3")
	require.NoError(t, os.WriteFile(path, []byte("no tag here"), 0o600))

	_, err := readID3v2(path, false)
	assert.ErrorIs(t, err, errNoTags)
}

func TestReadTagFields_UnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o600))

	_, err := readTagFields(path, false)
	assert.Error(t, err)
}

func TestReadTags_ArtistFallsBackToAlbumArtist(t *testing.T) {
	path := writeID3File(t, func(tag *id3v2.Tag) {
		tag.SetTitle("Song")
		tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, "A; B")
	})

	track, _, err := readTags(path, false)
	require.NoError(t, err)
	assert.Equal(t, "Song", track.Title)
	assert.Equal(t, []string{"A", "B"}, track.Artists)
}
