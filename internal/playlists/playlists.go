// Package playlists persists named playlists of track URIs.
package playlists

import "slices"

// SavedPlaylist is a named, ordered list of track URIs.
type SavedPlaylist struct {
	Name string
	URIs []string
}

// Clone returns a deep copy.
func (p SavedPlaylist) Clone() SavedPlaylist {
	return SavedPlaylist{Name: p.Name, URIs: slices.Clone(p.URIs)}
}

// SavedPlaylists is the whole collection, in insertion order with unique names.
type SavedPlaylists struct {
	Playlists []SavedPlaylist
}

// Clone returns a deep copy.
func (s SavedPlaylists) Clone() SavedPlaylists {
	if s.Playlists == nil {
		return SavedPlaylists{}
	}
	out := make([]SavedPlaylist, len(s.Playlists))
	for i := range s.Playlists {
		out[i] = s.Playlists[i].Clone()
	}
	return SavedPlaylists{Playlists: out}
}

// Len returns the number of playlists.
func (s SavedPlaylists) Len() int {
	return len(s.Playlists)
}

// Find returns the playlist called name.
func (s SavedPlaylists) Find(name string) (SavedPlaylist, bool) {
	for _, p := range s.Playlists {
		if p.Name == name {
			return p.Clone(), true
		}
	}
	return SavedPlaylist{}, false
}

// Add stores a copy of p. A playlist with the same name is replaced in place;
// otherwise p is appended.
func (s *SavedPlaylists) Add(p SavedPlaylist) {
	p = p.Clone()
	for i := range s.Playlists {
		if s.Playlists[i].Name == p.Name {
			s.Playlists[i] = p
			return
		}
	}
	s.Playlists = append(s.Playlists, p)
}

// Names returns playlist names in order.
func (s SavedPlaylists) Names() []string {
	names := make([]string, len(s.Playlists))
	for i, p := range s.Playlists {
		names[i] = p.Name
	}
	return names
}
