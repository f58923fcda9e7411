package player

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// oggPageBytes builds a page carrying segs. The checksum is left zero.
func oggPageBytes(serial uint32, granule int64, continued bool, segs ...[]byte) []byte {
	var lacing, body []byte
	for _, s := range segs {
		rest := len(s)
		for rest >= 255 {
			lacing = append(lacing, 255)
			rest -= 255
		}
		lacing = append(lacing, byte(rest))
		body = append(body, s...)
	}
	h := make([]byte, oggHeaderLen)
	copy(h, "OggS")
	if continued {
		h[5] = oggContinued
	}
	binary.LittleEndian.PutUint64(h[6:14], uint64(granule))
	binary.LittleEndian.PutUint32(h[14:18], serial)
	h[26] = byte(len(lacing))
	return append(append(h, lacing...), body...)
}

// rawPage builds a page from an explicit lacing table, for packets that
// continue onto the next page.
func rawPage(serial uint32, granule int64, continued bool, lacing []byte, body []byte) []byte {
	h := make([]byte, oggHeaderLen)
	copy(h, "OggS")
	if continued {
		h[5] = oggContinued
	}
	binary.LittleEndian.PutUint64(h[6:14], uint64(granule))
	binary.LittleEndian.PutUint32(h[14:18], serial)
	h[26] = byte(len(lacing))
	return append(append(h, lacing...), body...)
}

func TestOggPackets_Reassembly(t *testing.T) {
	long := bytes.Repeat([]byte{'x'}, 300)
	var file []byte
	file = append(file, oggPageBytes(1, 0, false, []byte("head"))...)
	file = append(file, oggPageBytes(2, 0, false, []byte("other stream"))...)
	// 300-byte packet split 255 | 45 across two pages
	file = append(file, rawPage(1, -1, false, []byte{255}, long[:255])...)
	file = append(file, rawPage(1, 10, true, []byte{45, 3}, append(long[255:], "end"...))...)

	o, err := newOggPackets(bytes.NewReader(file))
	require.NoError(t, err)

	var got []string
	for {
		pkt, err := o.next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got = append(got, string(pkt))
	}
	assert.Equal(t, []string{"head", string(long), "end"}, got)
}

func TestReadOggPage_Errors(t *testing.T) {
	_, err := readOggPage(bytes.NewReader([]byte("NotAnOggPageHeaderAtAll.....")), false)
	assert.ErrorIs(t, err, errOggCapture)

	page := oggPageBytes(1, 0, false, []byte("payload"))
	_, err = readOggPage(bytes.NewReader(page[:len(page)-2]), false)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = readOggPage(bytes.NewReader(nil), false)
	assert.ErrorIs(t, err, io.EOF)
}

func audioFile() []byte {
	run := bytes.Repeat([]byte{'s'}, 255)
	var file []byte
	file = append(file, oggPageBytes(7, 0, false, []byte("head"))...)
	// "p1" ends here, a 256-byte packet starts and spills onto the next page
	file = append(file, rawPage(7, 100, false, []byte{2, 255}, append([]byte("p1"), run...))...)
	file = append(file, rawPage(7, 200, true, []byte{1, 2}, []byte("sp2"))...)
	file = append(file, oggPageBytes(7, 300, false, []byte("p3"))...)
	file = append(file, oggPageBytes(9, 999, false, []byte("foreign"))...)
	return file
}

func TestOggPackets_SeekGranule(t *testing.T) {
	o, err := newOggPackets(bytes.NewReader(audioFile()))
	require.NoError(t, err)
	pkt, err := o.next()
	require.NoError(t, err)
	require.Equal(t, "head", string(pkt))
	require.NoError(t, o.markDataStart())

	tests := []struct {
		target int64
		start  int64
		first  string
	}{
		{150, 100, "p2"}, // lands mid-packet; its tail is dropped
		{250, 200, "p3"},
		{50, 0, "p1"},
	}
	for _, tt := range tests {
		start, err := o.seekGranule(tt.target)
		require.NoError(t, err)
		assert.Equal(t, tt.start, start, "target %d", tt.target)
		pkt, err := o.next()
		require.NoError(t, err)
		assert.Equal(t, tt.first, string(pkt), "target %d", tt.target)
	}
}

func TestOggPackets_LastGranule(t *testing.T) {
	o, err := newOggPackets(bytes.NewReader(audioFile()))
	require.NoError(t, err)

	last, err := o.lastGranule()
	require.NoError(t, err)
	assert.Equal(t, int64(300), last, "pages of other streams are ignored")

	for _, want := range []string{"head", "p1"} {
		pkt, err := o.next()
		require.NoError(t, err)
		assert.Equal(t, want, string(pkt), "read position is restored")
	}
}

func TestDecodeOgg_UnknownCodec(t *testing.T) {
	file := oggPageBytes(1, 0, false, []byte("\x80theora-ish header"))
	_, _, err := decodeOgg(nopCloser{bytes.NewReader(file)})
	assert.ErrorIs(t, err, errOggCodec)
}

type nopCloser struct{ io.ReadSeeker }

func (nopCloser) Close() error { return nil }

func TestPCMFrames(t *testing.T) {
	// 16-bit stereo: 0x4000 = 0.5, 0xC000 = -0.5
	frames := pcmFrames([]byte{0x00, 0x40, 0x00, 0xC0}, 2, 16)
	assert.Equal(t, [][2]float64{{0.5, -0.5}}, frames)

	// 24-bit mono, duplicated: 0xC00000 = -0.5
	frames = pcmFrames([]byte{0x00, 0x00, 0xC0}, 1, 24)
	assert.Equal(t, [][2]float64{{-0.5, -0.5}}, frames)

	assert.Nil(t, pcmFrames([]byte{1, 2}, 2, 12))
}

func TestInt16Frames(t *testing.T) {
	assert.Equal(t, [][2]float64{{0.5, 0.5}}, int16Frames([]int16{16384}, 1))
	assert.Equal(t, [][2]float64{{0.5, -0.5}}, int16Frames([]int16{16384, -16384, 99}, 3))
	assert.Nil(t, int16Frames([]int16{1}, 0))
}
