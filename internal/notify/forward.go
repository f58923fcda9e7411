package notify

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/reyvr/internal/playback"
	"github.com/llehouerou/reyvr/internal/player"
	"github.com/llehouerou/reyvr/internal/ringbuf"
)

const (
	appTitle          = "reyvr"
	messageTimeout    = 5000
	nowPlayingTimeout = 4000
)

// Forwarder turns controller responses into desktop notifications:
// errors and warnings, plus a "now playing" bubble on each new track.
type Forwarder struct {
	n            Notifier
	nowPlayingID uint32
	lastURI      string
}

// NewForwarder creates a forwarder sending through n.
func NewForwarder(n Notifier) *Forwarder {
	return &Forwarder{n: n}
}

// Run forwards responses from rx until it closes or ctx is done.
func (f *Forwarder) Run(ctx context.Context, rx *ringbuf.Receiver[playback.Response]) error {
	for {
		r, err := rx.Recv(ctx)
		if errors.Is(err, ringbuf.ErrClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		f.Handle(r)
	}
}

// Handle sends the notification for r, if any.
func (f *Forwarder) Handle(r playback.Response) {
	switch r := r.(type) {
	case playback.Error:
		f.send(Notification{Title: appTitle, Body: r.Message, Timeout: messageTimeout, Urgency: UrgencyCritical})
	case playback.Warning:
		f.send(Notification{Title: appTitle, Body: r.Message, Timeout: messageTimeout, Urgency: UrgencyNormal})
	case playback.Metadata:
		if r.Track.URI == f.lastURI {
			return
		}
		f.lastURI = r.Track.URI

		var body []string
		if a := r.Track.Artist(); a != "" {
			body = append(body, a)
		}
		if r.Track.Album != "" {
			body = append(body, r.Track.Album)
		}
		id := f.send(Notification{
			Title:      r.Track.Title,
			Body:       strings.Join(body, " - "),
			Icon:       player.FindAlbumArt(r.Track.Path()),
			Timeout:    nowPlayingTimeout,
			ReplacesID: f.nowPlayingID,
			Urgency:    UrgencyLow,
		})
		if id != 0 {
			f.nowPlayingID = id
		}
	}
}

func (f *Forwarder) send(n Notification) uint32 {
	id, err := f.n.Notify(n)
	if err != nil {
		log.Debug().Err(err).Str("title", n.Title).Msg("desktop notification failed")
		return 0
	}
	return id
}
