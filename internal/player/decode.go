package player

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/wav"

	"github.com/llehouerou/reyvr/internal/playlist"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extOGG  = ".ogg"
	extOGA  = ".oga"
	extOpus = ".opus"
	extM4A  = ".m4a"
	extWAV  = ".wav"
)

// openStream decodes the file at uri. The returned streamer owns the file.
func openStream(uri string) (beep.StreamSeekCloser, beep.Format, error) {
	path := playlist.PathFromURI(uri)
	ext := strings.ToLower(filepath.Ext(path))
	if !playlist.IsAudioFile(path) {
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch ext {
	case extMP3:
		s, format, err = decodeMP3(f)
	case extFLAC:
		if err = skipID3v2(f); err == nil {
			s, format, err = flac.Decode(f)
		}
	case extOGG, extOGA, extOpus:
		s, format, err = decodeOgg(f)
	case extM4A:
		s, format, err = decodeM4A(f)
	case extWAV:
		s, format, err = wav.Decode(f)
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return s, format, nil
}

// probeDuration decodes just enough of uri to report its length.
func probeDuration(uri string) (time.Duration, error) {
	s, format, err := openStream(uri)
	if err != nil {
		return 0, err
	}
	defer s.Close()
	return format.SampleRate.D(s.Len()), nil
}

// skipID3v2 moves r past a leading ID3v2 tag, which some taggers prepend to
// FLAC files and the FLAC decoder rejects.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := io.ReadFull(r, header)
	if err != nil && n < len(header) {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}
	if string(header[:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}
	// syncsafe integer: 7 bits per byte
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
	_, err = r.Seek(10+size, io.SeekStart)
	return err
}
