package player

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/alac"
	"github.com/llehouerou/go-faad2"
	"github.com/llehouerou/go-m4a"
)

// ALAC's default frames per packet
const alacFrameSize = 4096

// m4aStream plays AAC or ALAC audio from an MP4 container, one container
// sample (an encoded packet) at a time.
type m4aStream struct {
	box    *m4a.Reader
	closer io.Closer
	rate   int
	total  int

	aac    *faad2.Decoder
	alac   *alac.Alac
	unpack func([]byte) [][2]float64

	next    int // container sample to decode next
	pending [][2]float64
	err     error
}

func decodeM4A(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	box, err := m4a.Open(rc)
	if err != nil {
		return nil, beep.Format{}, err
	}
	rate := int(box.SampleRate())
	ch := int(box.Channels())
	depth := int(box.SampleSize())

	s := &m4aStream{
		box:    box,
		closer: rc,
		rate:   rate,
		total:  int(box.Duration().Seconds() * float64(rate)),
	}
	format := beep.Format{SampleRate: beep.SampleRate(rate), NumChannels: 2, Precision: 2}

	ctx := context.Background()
	switch box.Codec() {
	case m4a.CodecAAC:
		dec, err := faad2.NewDecoder(ctx)
		if err != nil {
			return nil, beep.Format{}, err
		}
		if err := dec.Init(ctx, box.CodecConfig()); err != nil {
			dec.Close(ctx)
			return nil, beep.Format{}, fmt.Errorf("aac: %w", err)
		}
		s.aac = dec

	case m4a.CodecALAC:
		dec, err := alac.NewWithConfig(alac.Config{
			SampleRate:  rate,
			SampleSize:  depth,
			NumChannels: ch,
			FrameSize:   alacFrameSize,
		})
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("alac: %w", err)
		}
		s.alac = dec
		if depth == 24 {
			format.Precision = 3
		}
		s.unpack = func(b []byte) [][2]float64 { return pcmFrames(b, ch, depth) }

	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s in mp4 container", ErrUnsupportedFormat, box.Codec())
	}
	return s, format, nil
}

func (s *m4aStream) Stream(samples [][2]float64) (int, bool) {
	if s.err != nil {
		return 0, false
	}
	n := 0
	for n < len(samples) {
		if len(s.pending) == 0 {
			if !s.decodeNext() {
				return n, n > 0
			}
			continue
		}
		c := copy(samples[n:], s.pending)
		s.pending = s.pending[c:]
		n += c
	}
	return n, true
}

func (s *m4aStream) decodeNext() bool {
	if s.next >= s.box.SampleCount() {
		return false
	}
	data, err := s.box.ReadSample(s.next)
	if err != nil {
		s.err = err
		return false
	}
	s.next++

	if s.aac != nil {
		pcm, err := s.aac.Decode(context.Background(), data)
		if err != nil {
			s.err = err
			return false
		}
		s.pending = int16Frames(pcm, int(s.box.Channels()))
		return true
	}
	s.pending = s.unpack(s.alac.Decode(data))
	return true
}

func (s *m4aStream) Err() error { return s.err }
func (s *m4aStream) Len() int   { return s.total }

func (s *m4aStream) Position() int {
	return int(s.box.SampleTime(s.next).Seconds() * float64(s.rate))
}

// Seek lands on the container sample holding p; MP4 packets are the
// finest seek granularity.
func (s *m4aStream) Seek(p int) error {
	p = min(max(p, 0), s.total)
	s.next = s.box.SeekToTime(time.Duration(float64(p) / float64(s.rate) * float64(time.Second)))
	s.pending = nil
	s.err = nil
	return nil
}

func (s *m4aStream) Close() error {
	if s.aac != nil {
		s.aac.Close(context.Background())
	}
	return s.closer.Close()
}

// int16Frames converts interleaved 16-bit PCM to stereo frames. Mono is
// duplicated; channels past the second are dropped.
func int16Frames(pcm []int16, ch int) [][2]float64 {
	if ch < 1 {
		return nil
	}
	frames := make([][2]float64, len(pcm)/ch)
	for i := range frames {
		l := float64(pcm[i*ch]) / 32768
		r := l
		if ch > 1 {
			r = float64(pcm[i*ch+1]) / 32768
		}
		frames[i] = [2]float64{l, r}
	}
	return frames
}

// pcmFrames converts little-endian 16- or 24-bit PCM bytes to stereo frames.
func pcmFrames(b []byte, ch, depth int) [][2]float64 {
	width := depth / 8
	if ch < 1 || (width != 2 && width != 3) {
		return nil
	}
	sample := func(off int) float64 {
		if width == 2 {
			return float64(int16(uint16(b[off])|uint16(b[off+1])<<8)) / 32768
		}
		v := int32(b[off]) | int32(b[off+1])<<8 | int32(b[off+2])<<16
		v = v << 8 >> 8 // sign-extend 24 bits
		return float64(v) / (1 << 23)
	}

	stride := width * ch
	frames := make([][2]float64, len(b)/stride)
	for i := range frames {
		off := i * stride
		l := sample(off)
		r := l
		if ch > 1 {
			r = sample(off + width)
		}
		frames[i] = [2]float64{l, r}
	}
	return frames
}
