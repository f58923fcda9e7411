package player

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/jfreymuth/vorbis"
	"github.com/jj11hh/opus"
)

const (
	opusRate = 48000
	// 120 ms at 48 kHz, the longest Opus packet
	opusMaxFrame = 5760
	// Opus needs this much decoded audio before a seek target to converge.
	opusPreroll = 3840
)

var errOggCodec = errors.New("ogg: stream is neither Opus nor Vorbis")

// oggCodec decodes the packets of an Ogg bitstream to interleaved float PCM.
type oggCodec interface {
	rate() int
	channels() int
	// preSkip is the number of leading samples to discard.
	preSkip() int
	preroll() int
	decode(pkt []byte) ([]float32, error)
	reset()
}

// openOggCodec reads the codec headers from o.
func openOggCodec(o *oggPackets) (oggCodec, error) {
	ident, err := o.next()
	if err != nil {
		return nil, fmt.Errorf("read identification header: %w", err)
	}
	switch {
	case len(ident) >= 19 && string(ident[:8]) == "OpusHead":
		return openOpus(o, ident)
	case len(ident) >= 16 && ident[0] == 0x01 && string(ident[1:7]) == "vorbis":
		return openVorbis(o, ident)
	}
	return nil, errOggCodec
}

type opusCodec struct {
	dec  *opus.Decoder
	ch   int
	skip int
	buf  []float32
}

func openOpus(o *oggPackets, head []byte) (*opusCodec, error) {
	if head[8] != 1 {
		return nil, fmt.Errorf("opus: unsupported header version %d", head[8])
	}
	ch := int(head[9])
	dec, err := opus.NewDecoder(opusRate, ch)
	if err != nil {
		return nil, err
	}
	// OpusTags
	if _, err := o.next(); err != nil {
		return nil, fmt.Errorf("read comment header: %w", err)
	}
	return &opusCodec{
		dec:  dec,
		ch:   ch,
		skip: int(binary.LittleEndian.Uint16(head[10:12])),
		buf:  make([]float32, opusMaxFrame*ch),
	}, nil
}

func (c *opusCodec) rate() int     { return opusRate }
func (c *opusCodec) channels() int { return c.ch }
func (c *opusCodec) preSkip() int  { return c.skip }
func (c *opusCodec) preroll() int  { return opusPreroll }
func (c *opusCodec) reset()        {}

func (c *opusCodec) decode(pkt []byte) ([]float32, error) {
	n, err := c.dec.DecodeFloat32(pkt, c.buf)
	if err != nil {
		return nil, err
	}
	return c.buf[:n*c.ch], nil
}

type vorbisCodec struct {
	dec vorbis.Decoder
	ch  int
	sr  int
}

func openVorbis(o *oggPackets, ident []byte) (*vorbisCodec, error) {
	if binary.LittleEndian.Uint32(ident[7:11]) != 0 {
		return nil, errors.New("vorbis: unsupported version")
	}
	c := &vorbisCodec{
		ch: int(ident[11]),
		sr: int(binary.LittleEndian.Uint32(ident[12:16])),
	}
	if err := c.dec.ReadHeader(ident); err != nil {
		return nil, err
	}
	// comment and setup headers
	for range 2 {
		pkt, err := o.next()
		if err != nil {
			return nil, fmt.Errorf("read vorbis header: %w", err)
		}
		if err := c.dec.ReadHeader(pkt); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *vorbisCodec) rate() int     { return c.sr }
func (c *vorbisCodec) channels() int { return c.ch }
func (c *vorbisCodec) preSkip() int  { return 0 }
func (c *vorbisCodec) preroll() int  { return 0 }
func (c *vorbisCodec) reset()        { c.dec.Clear() }

func (c *vorbisCodec) decode(pkt []byte) ([]float32, error) {
	return c.dec.Decode(pkt)
}

// oggStream plays an Ogg Opus or Ogg Vorbis file.
type oggStream struct {
	closer io.Closer
	pk     *oggPackets
	codec  oggCodec

	pcm   []float32
	off   int
	drop  int   // samples per channel still to discard
	pos   int64 // samples played
	total int64
	err   error
}

func decodeOgg(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	pk, err := newOggPackets(rc)
	if err != nil {
		return nil, beep.Format{}, err
	}
	codec, err := openOggCodec(pk)
	if err != nil {
		return nil, beep.Format{}, err
	}
	if codec.channels() < 1 {
		return nil, beep.Format{}, errors.New("ogg: no audio channels")
	}
	if err := pk.markDataStart(); err != nil {
		return nil, beep.Format{}, err
	}
	last, err := pk.lastGranule()
	if err != nil {
		return nil, beep.Format{}, err
	}

	s := &oggStream{
		closer: rc,
		pk:     pk,
		codec:  codec,
		drop:   codec.preSkip(),
		total:  max(last-int64(codec.preSkip()), 0),
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(codec.rate()),
		NumChannels: 2,
		Precision:   2,
	}
	return s, format, nil
}

func (s *oggStream) Stream(samples [][2]float64) (int, bool) {
	if s.err != nil {
		return 0, false
	}
	ch := s.codec.channels()
	n := 0
	for n < len(samples) {
		if s.off >= len(s.pcm) {
			if !s.refill() {
				return n, n > 0
			}
			continue
		}
		if s.drop > 0 {
			skip := min(s.drop, (len(s.pcm)-s.off)/ch)
			s.off += skip * ch
			s.drop -= skip
			continue
		}
		left := float64(s.pcm[s.off])
		right := left
		if ch > 1 {
			right = float64(s.pcm[s.off+1])
		}
		samples[n] = [2]float64{left, right}
		s.off += ch
		s.pos++
		n++
	}
	return n, true
}

// refill decodes the next packet. Corrupt packets are skipped.
func (s *oggStream) refill() bool {
	for {
		pkt, err := s.pk.next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.err = err
			}
			return false
		}
		pcm, err := s.codec.decode(pkt)
		if err != nil || len(pcm) == 0 {
			continue
		}
		s.pcm, s.off = pcm, 0
		return true
	}
}

func (s *oggStream) Err() error    { return s.err }
func (s *oggStream) Len() int      { return int(s.total) }
func (s *oggStream) Position() int { return int(s.pos) }

// Seek restarts decoding at the page before p, minus the codec preroll,
// and discards up to p.
func (s *oggStream) Seek(p int) error {
	p = min(max(p, 0), int(s.total))
	target := int64(p + s.codec.preSkip())

	start, err := s.pk.seekGranule(max(target-int64(s.codec.preroll()), 0))
	if err != nil {
		return err
	}
	s.codec.reset()
	s.pcm, s.off = nil, 0
	s.drop = int(target - start)
	s.pos = int64(p)
	s.err = nil
	return nil
}

func (s *oggStream) Close() error {
	return s.closer.Close()
}
