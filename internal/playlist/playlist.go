package playlist

// Playlist holds an ordered collection of tracks with a playback cursor.
//
// The cursor is only meaningful once a track has been handed to the
// backend (Loaded). Playing implies Loaded.
type Playlist struct {
	tracks  []Track
	current int // -1 until a track is loaded
	loaded  bool
	playing bool
}

// New creates an unloaded playlist holding copies of tracks.
func New(tracks ...Track) *Playlist {
	p := &Playlist{
		tracks:  make([]Track, len(tracks)),
		current: -1,
	}
	for i := range tracks {
		p.tracks[i] = tracks[i].Clone()
	}
	return p
}

// Len returns the number of tracks.
func (p *Playlist) Len() int {
	return len(p.tracks)
}

// IsEmpty returns true if the playlist has no tracks.
func (p *Playlist) IsEmpty() bool {
	return len(p.tracks) == 0
}

// CurrentIndex returns the cursor position, or -1 if nothing is loaded.
func (p *Playlist) CurrentIndex() int {
	if !p.loaded {
		return -1
	}
	return p.current
}

// Loaded reports whether a track has been handed to the backend.
func (p *Playlist) Loaded() bool {
	return p.loaded
}

// Playing reports whether the backend is producing audio.
func (p *Playlist) Playing() bool {
	return p.playing
}

// Tracks returns a deep copy of all tracks.
func (p *Playlist) Tracks() []Track {
	result := make([]Track, len(p.tracks))
	for i := range p.tracks {
		result[i] = p.tracks[i].Clone()
	}
	return result
}

// Track returns a copy of the track at index.
func (p *Playlist) Track(index int) (Track, bool) {
	if !p.InRange(index) {
		return Track{}, false
	}
	return p.tracks[index].Clone(), true
}

// Current returns a copy of the loaded track.
func (p *Playlist) Current() (Track, bool) {
	if !p.loaded {
		return Track{}, false
	}
	return p.Track(p.current)
}

// InRange reports whether index addresses a track.
func (p *Playlist) InRange(index int) bool {
	return index >= 0 && index < len(p.tracks)
}

// HasNext returns true if there's a track after the loaded one.
func (p *Playlist) HasNext() bool {
	return p.loaded && p.current+1 < len(p.tracks)
}

// HasPrevious returns true if there's a track before the loaded one.
func (p *Playlist) HasPrevious() bool {
	return p.loaded && p.current > 0
}

// NextIndex returns the index after the cursor. Navigation never wraps.
func (p *Playlist) NextIndex() (int, bool) {
	if !p.HasNext() {
		return 0, false
	}
	return p.current + 1, true
}

// PreviousIndex returns the index before the cursor. Navigation never wraps.
func (p *Playlist) PreviousIndex() (int, bool) {
	if !p.HasPrevious() {
		return 0, false
	}
	return p.current - 1, true
}

// MarkLoaded records that the track at index is now loaded in the backend.
// The new track is not playing yet. Returns false if index is out of range,
// leaving the playlist untouched.
func (p *Playlist) MarkLoaded(index int) bool {
	if !p.InRange(index) {
		return false
	}
	p.current = index
	p.loaded = true
	p.playing = false
	return true
}

// SetPlaying records whether the backend is producing audio.
// Returns false if playing is requested on an unloaded playlist.
func (p *Playlist) SetPlaying(playing bool) bool {
	if playing && !p.loaded {
		return false
	}
	p.playing = playing
	return true
}

// URIs returns the track identities in playback order.
func (p *Playlist) URIs() []string {
	uris := make([]string, len(p.tracks))
	for i := range p.tracks {
		uris[i] = p.tracks[i].URI
	}
	return uris
}

// Clone returns a deep copy of the playlist, cursor and flags included.
func (p *Playlist) Clone() *Playlist {
	c := New(p.tracks...)
	c.current = p.current
	c.loaded = p.loaded
	c.playing = p.playing
	return c
}
