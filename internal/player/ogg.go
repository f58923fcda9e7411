package player

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	oggHeaderLen  = 27
	oggContinued  = 0x01
	oggTailWindow = 64 << 10
)

var (
	errOggCapture = errors.New("ogg: missing capture pattern")
	errOggVersion = errors.New("ogg: unsupported stream version")
)

// oggPage is one page of an Ogg bitstream. body is nil when the page was
// only scanned.
type oggPage struct {
	continued bool
	granule   int64
	serial    uint32
	lacing    []byte
	body      []byte
	size      int64 // header, lacing table and body
}

// readOggPage reads the next page. With skipBody the body is seeked over.
func readOggPage(r io.ReadSeeker, skipBody bool) (oggPage, error) {
	var h [oggHeaderLen]byte
	if _, err := io.ReadFull(r, h[:]); err != nil {
		return oggPage{}, err
	}
	if string(h[:4]) != "OggS" {
		return oggPage{}, errOggCapture
	}
	if h[4] != 0 {
		return oggPage{}, errOggVersion
	}

	p := oggPage{
		continued: h[5]&oggContinued != 0,
		granule:   int64(binary.LittleEndian.Uint64(h[6:14])),
		serial:    binary.LittleEndian.Uint32(h[14:18]),
		lacing:    make([]byte, h[26]),
	}
	if _, err := io.ReadFull(r, p.lacing); err != nil {
		return oggPage{}, noEOF(err)
	}
	var bodyLen int64
	for _, l := range p.lacing {
		bodyLen += int64(l)
	}
	p.size = oggHeaderLen + int64(len(p.lacing)) + bodyLen

	if skipBody {
		_, err := r.Seek(bodyLen, io.SeekCurrent)
		return p, err
	}
	p.body = make([]byte, bodyLen)
	if _, err := io.ReadFull(r, p.body); err != nil {
		return oggPage{}, noEOF(err)
	}
	return p, nil
}

// noEOF reports a stream cut inside a page as truncated.
func noEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// oggPackets reassembles the packets of one logical bitstream.
type oggPackets struct {
	r       io.ReadSeeker
	serial  uint32
	queue   [][]byte
	partial []byte
	// resync drops the tail of a packet begun before a seek.
	resync bool
	// dataStart is the offset of the first audio page.
	dataStart int64
}

func newOggPackets(r io.ReadSeeker) (*oggPackets, error) {
	first, err := readOggPage(r, false)
	if err != nil {
		return nil, fmt.Errorf("read first page: %w", err)
	}
	o := &oggPackets{r: r, serial: first.serial}
	o.split(first)
	return o, nil
}

func (o *oggPackets) next() ([]byte, error) {
	for len(o.queue) == 0 {
		p, err := readOggPage(o.r, false)
		if err != nil {
			return nil, err
		}
		if p.serial == o.serial {
			o.split(p)
		}
	}
	pkt := o.queue[0]
	o.queue = o.queue[1:]
	return pkt, nil
}

// split appends the packets completed on p to the queue. A lacing value
// below 255 ends a packet.
func (o *oggPackets) split(p oggPage) {
	drop := o.resync && p.continued
	o.resync = false

	off := 0
	for _, l := range p.lacing {
		seg := p.body[off : off+int(l)]
		off += int(l)
		if !drop {
			o.partial = append(o.partial, seg...)
		}
		if l < 255 {
			if !drop {
				o.queue = append(o.queue, o.partial)
			}
			o.partial = nil
			drop = false
		}
	}
}

// markDataStart records the current offset as the start of audio. Codec
// headers always end on a page boundary.
func (o *oggPackets) markDataStart() error {
	off, err := o.r.Seek(0, io.SeekCurrent)
	o.dataStart = off
	return err
}

// seekGranule positions the reader on the first page after the last page
// ending before target and returns that page's granule, or 0 when decoding
// has to restart from the first audio page.
func (o *oggPackets) seekGranule(target int64) (int64, error) {
	if _, err := o.r.Seek(o.dataStart, io.SeekStart); err != nil {
		return 0, err
	}
	var (
		at     = o.dataStart
		resume = o.dataStart
		start  int64
	)
	for {
		p, err := readOggPage(o.r, true)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
		at += p.size
		if p.serial != o.serial || p.granule < 0 {
			continue
		}
		if p.granule >= target {
			break
		}
		resume, start = at, p.granule
	}

	if _, err := o.r.Seek(resume, io.SeekStart); err != nil {
		return 0, err
	}
	o.queue, o.partial = nil, nil
	o.resync = resume != o.dataStart
	return start, nil
}

// lastGranule returns the granule of the last page of the stream, which
// is its length in samples.
func (o *oggPackets) lastGranule() (int64, error) {
	saved, err := o.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	defer o.r.Seek(saved, io.SeekStart) //nolint:errcheck // restored on the next read

	end, err := o.r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	from := max(end-oggTailWindow, 0)
	if _, err := o.r.Seek(from, io.SeekStart); err != nil {
		return 0, err
	}
	tail, err := io.ReadAll(o.r)
	if err != nil {
		return 0, err
	}

	for i := bytes.LastIndex(tail, []byte("OggS")); i >= 0; i = bytes.LastIndex(tail[:i], []byte("OggS")) {
		if len(tail)-i < oggHeaderLen {
			continue
		}
		h := tail[i : i+oggHeaderLen]
		granule := int64(binary.LittleEndian.Uint64(h[6:14]))
		if binary.LittleEndian.Uint32(h[14:18]) == o.serial && granule >= 0 {
			return granule, nil
		}
	}
	return 0, errors.New("ogg: no granule position in stream tail")
}
