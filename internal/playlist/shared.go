package playlist

import "sync"

// Shared guards the live playlist for concurrent readers.
//
// Accessors copy in and out under the lock and never call out while holding
// it, so no backend call can ever run inside the critical section.
type Shared struct {
	mu sync.RWMutex
	p  *Playlist
}

// NewShared creates a guard around a copy of p. A nil p starts empty.
func NewShared(p *Playlist) *Shared {
	if p == nil {
		p = New()
	}
	return &Shared{p: p.Clone()}
}

// Snapshot returns a deep copy of the guarded playlist.
func (s *Shared) Snapshot() *Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.p.Clone()
}

// Replace swaps the guarded playlist for a copy of p.
func (s *Shared) Replace(p *Playlist) {
	c := p.Clone()
	s.mu.Lock()
	s.p = c
	s.mu.Unlock()
}

// Status returns the cursor and flags without copying tracks.
func (s *Shared) Status() (index int, loaded, playing bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.p.CurrentIndex(), s.p.loaded, s.p.playing
}

// Len returns the number of tracks.
func (s *Shared) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.p.Len()
}
