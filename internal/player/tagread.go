package player

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sorrow446/go-mp4tag"
	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"
	"go.senan.xyz/taglib"
)

var errNoTags = errors.New("no tags")

// tagFields is what the player needs from a file's tags.
type tagFields struct {
	title       string
	artist      string
	albumArtist string
	album       string
	picture     []byte
}

// readTagFields reads path with dhowden/tag and falls back to a
// format-specific reader when that fails.
func readTagFields(path string, withPicture bool) (tagFields, error) {
	f, err := os.Open(path)
	if err != nil {
		return tagFields{}, err
	}
	m, err := tag.ReadFrom(f)
	f.Close()
	if err != nil {
		switch strings.ToLower(filepath.Ext(path)) {
		case extMP3:
			// dhowden/tag has issues with some UTF-16 encoded ID3 tags
			return readID3v2(path, withPicture)
		case extFLAC:
			return readFLACComments(path, withPicture)
		case extM4A:
			// ffmpeg-written atoms trip dhowden/tag
			return readMP4Tags(path, withPicture)
		case extOGG, extOGA, extOpus:
			return readTaglib(path)
		}
		return tagFields{}, err
	}

	tf := tagFields{
		title:       m.Title(),
		artist:      m.Artist(),
		albumArtist: m.AlbumArtist(),
		album:       m.Album(),
	}
	if withPicture {
		if p := m.Picture(); p != nil && len(p.Data) > 0 {
			tf.picture = p.Data
		}
	}
	return tf, nil
}

func readID3v2(path string, withPicture bool) (tagFields, error) {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return tagFields{}, err
	}
	defer t.Close()
	if t.Count() == 0 {
		return tagFields{}, errNoTags
	}

	tf := tagFields{
		title:  t.Title(),
		artist: t.Artist(),
		album:  t.Album(),
	}
	if frames := t.GetFrames("TPE2"); len(frames) > 0 {
		if text, ok := frames[0].(id3v2.TextFrame); ok {
			tf.albumArtist = text.Text
		}
	}
	if withPicture {
		for _, f := range t.GetFrames(t.CommonID("Attached picture")) {
			if pic, ok := f.(id3v2.PictureFrame); ok && len(pic.Picture) > 0 {
				tf.picture = pic.Picture
				break
			}
		}
	}
	return tf, nil
}

func readFLACComments(path string, withPicture bool) (tagFields, error) {
	f, err := goflac.ParseFile(path)
	if err != nil {
		return readTaglib(path)
	}

	var tf tagFields
	for _, meta := range f.Meta {
		switch meta.Type {
		case goflac.VorbisComment:
			cmts, err := flacvorbis.ParseFromMetaDataBlock(*meta)
			if err != nil {
				continue
			}
			tf.title = firstComment(cmts, flacvorbis.FIELD_TITLE)
			tf.artist = firstComment(cmts, flacvorbis.FIELD_ARTIST)
			tf.album = firstComment(cmts, flacvorbis.FIELD_ALBUM)
			tf.albumArtist = firstComment(cmts, "ALBUMARTIST")
		case goflac.Picture:
			if !withPicture || tf.picture != nil {
				continue
			}
			if pic, err := flacpicture.ParseFromMetaDataBlock(*meta); err == nil {
				tf.picture = pic.ImageData
			}
		}
	}
	return tf, nil
}

func firstComment(c *flacvorbis.MetaDataBlockVorbisComment, field string) string {
	vals, err := c.Get(field)
	if err != nil || len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func readMP4Tags(path string, withPicture bool) (tagFields, error) {
	mp4, err := mp4tag.Open(path)
	if err != nil {
		return readTaglib(path)
	}
	defer mp4.Close()

	tags, err := mp4.Read()
	if err != nil {
		return tagFields{}, err
	}
	tf := tagFields{
		title:       tags.Title,
		artist:      tags.Artist,
		albumArtist: tags.AlbumArtist,
		album:       tags.Album,
	}
	if withPicture && len(tags.Pictures) > 0 {
		tf.picture = tags.Pictures[0].Data
	}
	return tf, nil
}

// readTaglib is the last resort. It carries no pictures.
func readTaglib(path string) (tagFields, error) {
	raw, err := taglib.ReadTags(path)
	if err != nil {
		return tagFields{}, err
	}
	first := func(key string) string {
		if v := raw[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	return tagFields{
		title:       first(taglib.Title),
		artist:      first(taglib.Artist),
		albumArtist: first(taglib.AlbumArtist),
		album:       first(taglib.Album),
	}, nil
}

// taglibDuration reads the length from the stream properties, for files
// the decoders cannot open.
func taglibDuration(path string) (time.Duration, error) {
	props, err := taglib.ReadProperties(path)
	if err != nil {
		return 0, err
	}
	return props.Length, nil
}
