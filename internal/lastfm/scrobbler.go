package lastfm

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/reyvr/internal/playback"
	"github.com/llehouerou/reyvr/internal/player"
	"github.com/llehouerou/reyvr/internal/playlist"
	"github.com/llehouerou/reyvr/internal/ringbuf"
)

const (
	// Last.fm ignores tracks shorter than this.
	minScrobbleLength = 30 * time.Second
	// A play counts after half the track or this long, whichever comes first.
	maxScrobbleWait = 4 * time.Minute
	// Position ticks further apart than this are seeks, not listening.
	maxTickGap = 2 * time.Second
)

// API is the subset of Client the scrobbler calls.
type API interface {
	UpdateNowPlaying(Track) error
	Scrobble(Track) error
	ScrobbleBatch([]Track) error
}

// play is the listening progress of the current track.
type play struct {
	track     Track
	uri       string
	listened  time.Duration
	lastTick  time.Duration
	scrobbled bool
}

// Scrobbler reports what the controller plays to Last.fm. Failed scrobbles
// are kept and resubmitted with the next successful one.
type Scrobbler struct {
	api     API
	now     func() time.Time
	playing bool
	current *play
	pending []Track
}

func NewScrobbler(api API) *Scrobbler {
	return &Scrobbler{api: api, now: time.Now}
}

// Run handles responses from rx until it closes or ctx is done.
func (s *Scrobbler) Run(ctx context.Context, rx *ringbuf.Receiver[playback.Response]) error {
	for {
		r, err := rx.Recv(ctx)
		if errors.Is(err, ringbuf.ErrClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		s.Handle(r)
	}
}

// Handle updates listening progress from r. Metadata may arrive after the
// new track already started playing.
func (s *Scrobbler) Handle(r playback.Response) {
	switch r := r.(type) {
	case playback.StreamStart:
		s.current = nil

	case playback.Metadata:
		if s.current != nil && s.current.uri == r.Track.URI {
			return
		}
		s.current = newPlay(r.Track)
		if s.current != nil && s.playing {
			s.start(s.current)
		}

	case playback.StateChanged:
		was := s.playing
		s.playing = r.State == player.Playing
		p := s.current
		if p == nil {
			return
		}
		switch r.State {
		case player.Playing:
			if !was && p.track.StartedAt.IsZero() {
				s.start(p)
			}
		case player.Stopped:
			restart(p)
		}

	case playback.Position:
		if p := s.current; p != nil && s.playing {
			s.tick(p, r.Elapsed)
		}

	case playback.EndOfStream:
		if s.current != nil {
			restart(s.current)
		}
	}
}

// newPlay returns nil for tracks Last.fm cannot identify.
func newPlay(t playlist.Track) *play {
	if len(t.Artists) == 0 || t.Title == "" {
		return nil
	}
	p := &play{
		uri: t.URI,
		track: Track{
			Artist:   t.Artists[0],
			Title:    t.Title,
			Album:    t.Album,
			Duration: t.Duration,
		},
	}
	if len(t.Artists) > 1 {
		p.track.AlbumArtist = t.Artist()
	}
	return p
}

func (s *Scrobbler) start(p *play) {
	p.track.StartedAt = s.now()
	if err := s.api.UpdateNowPlaying(p.track); err != nil {
		log.Debug().Err(err).Str("track", p.track.Title).Msg("now playing update failed")
	}
}

// restart makes the next play of the same track count anew.
func restart(p *play) {
	p.track.StartedAt = time.Time{}
	p.listened, p.lastTick = 0, 0
	p.scrobbled = false
}

func (s *Scrobbler) tick(p *play, elapsed time.Duration) {
	if d := elapsed - p.lastTick; d > 0 && d <= maxTickGap {
		p.listened += d
	}
	p.lastTick = elapsed

	if !p.scrobbled && eligible(p.track.Duration, p.listened) {
		p.scrobbled = true
		s.scrobble(p.track)
	}
}

// eligible reports whether listened counts as a play of a track lasting
// length. Unknown lengths need the full four minutes.
func eligible(length, listened time.Duration) bool {
	if length == 0 {
		return listened >= maxScrobbleWait
	}
	if length < minScrobbleLength {
		return false
	}
	return listened >= min(length/2, maxScrobbleWait)
}

func (s *Scrobbler) scrobble(t Track) {
	if err := s.api.Scrobble(t); err != nil {
		log.Warn().Err(err).Str("track", t.Title).Msg("scrobble failed, queued for retry")
		if len(s.pending) < maxBatch {
			s.pending = append(s.pending, t)
		}
		return
	}
	log.Debug().Str("track", t.Title).Msg("scrobbled")

	if len(s.pending) == 0 {
		return
	}
	if err := s.api.ScrobbleBatch(s.pending); err != nil {
		log.Warn().Err(err).Int("pending", len(s.pending)).Msg("retrying queued scrobbles failed")
		return
	}
	s.pending = nil
}
