package remote

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"time"

	"github.com/llehouerou/reyvr/internal/playback"
	"github.com/llehouerou/reyvr/internal/player"
	"github.com/llehouerou/reyvr/internal/playlist"
	"github.com/llehouerou/reyvr/internal/playlists"
)

var (
	errMissingArg = errors.New("missing argument")
	errUnknown    = errors.New("unknown event")
)

// Commander is the command side of the controller. *playback.Handle
// implements it.
type Commander interface {
	Play() error
	Pause() error
	Stop() error
	Next() error
	Previous() error
	Seek(pos time.Duration) error
	SetVolume(v float64) error
	PlayByID(index int) error
	Load(path string) error
	GetTracks() error
	GetMetadata() error
	LoadSavedPlaylists() error
	AddSavedPlaylist(p playlists.SavedPlaylist) error
	WriteSavedPlaylists() error
	PlaySavedPlaylist(name string) error
}

// Status reads controller snapshots. *playback.Controller implements it.
type Status interface {
	Playlist() *playlist.Playlist
	Volume() float64
	Position() time.Duration
	State() player.State
}

// inbound event names
const (
	evPlay              = "play"
	evPause             = "pause"
	evStop              = "stop"
	evNext              = "next"
	evPrev              = "prev"
	evSeek              = "seek"
	evVolume            = "volume"
	evPlayByID          = "playById"
	evLoad              = "load"
	evGetState          = "getState"
	evGetTracks         = "getTracks"
	evGetMetadata       = "getMetadata"
	evGetSavedPlaylists = "getSavedPlaylists"
	evSavePlaylist      = "savePlaylist"
	evPlaySavedPlaylist = "playSavedPlaylist"
)

// inboundEvents lists every event a client may send.
var inboundEvents = []string{
	evPlay, evPause, evStop, evNext, evPrev, evSeek, evVolume, evPlayByID, evLoad,
	evGetState, evGetTracks, evGetMetadata, evGetSavedPlaylists, evSavePlaylist, evPlaySavedPlaylist,
}

// outbound event names
const (
	pushState          = "pushState"
	pushPosition       = "pushPosition"
	pushTracks         = "pushTracks"
	pushMetadata       = "pushMetadata"
	pushThumbnail      = "pushThumbnail"
	pushSavedPlaylists = "pushSavedPlaylists"
	pushToast          = "pushToast"
	pushStreamStart    = "pushStreamStart"
	pushEndOfStream    = "pushEndOfStream"
)

// StatePayload is sent with pushState.
type StatePayload struct {
	Status string  `json:"status"`   // "play", "pause" or "stop"
	Seek   float64 `json:"seek"`     // seconds
	Volume int     `json:"volume"`   // 0-100
	Index  int     `json:"position"` // current track, -1 when nothing is loaded
}

// TrackPayload describes one track.
type TrackPayload struct {
	URI      string  `json:"uri"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Album    string  `json:"album"`
	Duration float64 `json:"duration"` // seconds
}

// SavedPlaylistPayload describes one saved playlist.
type SavedPlaylistPayload struct {
	Name   string `json:"name"`
	Tracks int    `json:"tracks"`
}

// ToastPayload is sent with pushToast.
type ToastPayload struct {
	Type    string `json:"type"` // "error", "warning" or "info"
	Message string `json:"message"`
}

// dispatch runs the command for an inbound event.
func dispatch(ctl Commander, st Status, event string, args []any) error {
	switch event {
	case evPlay:
		return ctl.Play()
	case evPause:
		return ctl.Pause()
	case evStop:
		return ctl.Stop()
	case evNext:
		return ctl.Next()
	case evPrev:
		return ctl.Previous()
	case evSeek:
		secs, ok := number(args)
		if !ok {
			return fmt.Errorf("%s: %w", event, errMissingArg)
		}
		return ctl.Seek(time.Duration(secs * float64(time.Second)))
	case evVolume:
		v, ok := number(args)
		if !ok {
			return fmt.Errorf("%s: %w", event, errMissingArg)
		}
		return ctl.SetVolume(v / 100)
	case evPlayByID:
		i, ok := number(args)
		if !ok {
			return fmt.Errorf("%s: %w", event, errMissingArg)
		}
		return ctl.PlayByID(int(i))
	case evLoad:
		path, ok := text(args, "path")
		if !ok {
			return fmt.Errorf("%s: %w", event, errMissingArg)
		}
		return ctl.Load(path)
	case evGetTracks:
		return ctl.GetTracks()
	case evGetMetadata:
		return ctl.GetMetadata()
	case evGetSavedPlaylists:
		return ctl.LoadSavedPlaylists()
	case evSavePlaylist:
		name, ok := text(args, "name")
		if !ok || name == "" {
			return fmt.Errorf("%s: %w", event, errMissingArg)
		}
		err := ctl.AddSavedPlaylist(playlists.SavedPlaylist{Name: name, URIs: st.Playlist().URIs()})
		if err != nil {
			return err
		}
		return ctl.WriteSavedPlaylists()
	case evPlaySavedPlaylist:
		name, ok := text(args, "name")
		if !ok {
			return fmt.Errorf("%s: %w", event, errMissingArg)
		}
		return ctl.PlaySavedPlaylist(name)
	}
	return fmt.Errorf("%s: %w", event, errUnknown)
}

// number reads a numeric argument, bare or as {"value": n}.
func number(args []any) (float64, bool) {
	if len(args) == 0 {
		return 0, false
	}
	switch v := args[0].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case map[string]any:
		f, ok := v["value"].(float64)
		return f, ok
	}
	return 0, false
}

// text reads a string argument, bare or as {key: "..."}.
func text(args []any, key string) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	switch v := args[0].(type) {
	case string:
		return v, true
	case map[string]any:
		s, ok := v[key].(string)
		return s, ok
	}
	return "", false
}

// outbound maps a controller response to a client event and its payload.
// ok is false for responses that are not forwarded.
func outbound(r playback.Response, st Status) (event string, payload any, ok bool) {
	switch r := r.(type) {
	case playback.StateChanged:
		return pushState, statePayload(r.State, st), true
	case playback.Position:
		return pushPosition, map[string]float64{"seek": r.Elapsed.Seconds()}, true
	case playback.Tracks:
		out := make([]TrackPayload, len(r.Tracks))
		for i, t := range r.Tracks {
			out[i] = trackPayload(t)
		}
		return pushTracks, out, true
	case playback.Metadata:
		return pushMetadata, trackPayload(r.Track), true
	case playback.Thumbnail:
		url, err := dataURL(r.Image)
		if err != nil {
			return "", nil, false
		}
		return pushThumbnail, map[string]string{"image": url}, true
	case playback.SavedPlaylists:
		out := make([]SavedPlaylistPayload, len(r.Playlists.Playlists))
		for i, p := range r.Playlists.Playlists {
			out[i] = SavedPlaylistPayload{Name: p.Name, Tracks: len(p.URIs)}
		}
		return pushSavedPlaylists, out, true
	case playback.Error:
		return pushToast, ToastPayload{Type: "error", Message: r.Message}, true
	case playback.Warning:
		return pushToast, ToastPayload{Type: "warning", Message: r.Message}, true
	case playback.Info:
		return pushToast, ToastPayload{Type: "info", Message: r.Message}, true
	case playback.StreamStart:
		return pushStreamStart, struct{}{}, true
	case playback.EndOfStream:
		return pushEndOfStream, struct{}{}, true
	}
	return "", nil, false
}

func statePayload(s player.State, st Status) StatePayload {
	status := "stop"
	switch s {
	case player.Playing:
		status = "play"
	case player.Paused:
		status = "pause"
	}
	return StatePayload{
		Status: status,
		Seek:   st.Position().Seconds(),
		Volume: int(st.Volume()*100 + 0.5),
		Index:  st.Playlist().CurrentIndex(),
	}
}

func trackPayload(t playlist.Track) TrackPayload {
	return TrackPayload{
		URI:      t.URI,
		Title:    t.Title,
		Artist:   t.Artist(),
		Album:    t.Album,
		Duration: t.Duration.Seconds(),
	}
}

// dataURL encodes a thumbnail as a PNG data URL.
func dataURL(th *playlist.Thumbnail) (string, error) {
	if th == nil {
		return "", errMissingArg
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, th.Image()); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
