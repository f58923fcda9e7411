package lastfm

import (
	"errors"
	"fmt"

	"github.com/shkh/lastfm-go/lastfm"
)

// ErrNotAuthenticated is returned when an operation requires a session.
var ErrNotAuthenticated = errors.New("not authenticated")

// maxBatch is the most scrobbles Last.fm accepts in one call.
const maxBatch = 50

// Client wraps the Last.fm API calls the scrobbler needs.
type Client struct {
	api        *lastfm.Api
	apiKey     string
	sessionKey string
}

func New(apiKey, apiSecret string) *Client {
	return &Client{
		api:    lastfm.New(apiKey, apiSecret),
		apiKey: apiKey,
	}
}

// SetSessionKey sets the authenticated session key.
func (c *Client) SetSessionKey(key string) {
	c.sessionKey = key
	c.api.SetSession(key)
}

func (c *Client) IsAuthenticated() bool {
	return c.sessionKey != ""
}

// GetToken requests an authentication token.
func (c *Client) GetToken() (string, error) {
	token, err := c.api.GetToken()
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}
	return token, nil
}

// AuthURL is the page where the user grants access for token. Last.fm
// redirects to callback afterwards, when set.
func (c *Client) AuthURL(token, callback string) string {
	u := fmt.Sprintf("https://www.last.fm/api/auth/?api_key=%s&token=%s", c.apiKey, token)
	if callback != "" {
		u += "&cb=" + callback
	}
	return u
}

// GetSession exchanges an authorized token for a session key.
func (c *Client) GetSession(token string) (username, sessionKey string, err error) {
	if err := c.api.LoginWithToken(token); err != nil {
		return "", "", fmt.Errorf("get session: %w", err)
	}
	c.sessionKey = c.api.GetSessionKey()

	info, err := c.api.User.GetInfo(nil)
	if err != nil {
		// the session is valid even when the profile lookup fails
		return "unknown", c.sessionKey, nil //nolint:nilerr // username is optional
	}
	return info.Name, c.sessionKey, nil
}

// UpdateNowPlaying tells Last.fm what is playing.
func (c *Client) UpdateNowPlaying(t Track) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if _, err := c.api.Track.UpdateNowPlaying(lastfm.P(t.params())); err != nil {
		return fmt.Errorf("update now playing: %w", err)
	}
	return nil
}

// Scrobble submits one play.
func (c *Client) Scrobble(t Track) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	p := lastfm.P(t.params())
	p["timestamp"] = t.StartedAt.Unix()
	if _, err := c.api.Track.Scrobble(p); err != nil {
		return fmt.Errorf("scrobble: %w", err)
	}
	return nil
}

// ScrobbleBatch submits up to 50 plays; the rest are ignored.
func (c *Client) ScrobbleBatch(tracks []Track) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if len(tracks) == 0 {
		return nil
	}
	tracks = tracks[:min(len(tracks), maxBatch)]

	artists := make([]string, len(tracks))
	titles := make([]string, len(tracks))
	albums := make([]string, len(tracks))
	timestamps := make([]int64, len(tracks))
	for i, t := range tracks {
		artists[i] = t.Artist
		titles[i] = t.Title
		albums[i] = t.Album
		timestamps[i] = t.StartedAt.Unix()
	}

	_, err := c.api.Track.Scrobble(lastfm.P{
		"artist":    artists,
		"track":     titles,
		"album":     albums,
		"timestamp": timestamps,
	})
	if err != nil {
		return fmt.Errorf("batch scrobble: %w", err)
	}
	return nil
}
