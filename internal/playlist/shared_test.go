package playlist

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShared_SnapshotIsCopy(t *testing.T) {
	s := NewShared(New(threeTracks()...))

	snap := s.Snapshot()
	snap.MarkLoaded(2)

	idx, loaded, _ := s.Status()
	assert.Equal(t, -1, idx)
	assert.False(t, loaded)
}

func TestShared_Replace(t *testing.T) {
	s := NewShared(nil)
	assert.Equal(t, 0, s.Len())

	p := New(threeTracks()...)
	p.MarkLoaded(1)
	p.SetPlaying(true)
	s.Replace(p)

	// mutating the caller's value must not leak in
	p.MarkLoaded(0)

	idx, loaded, playing := s.Status()
	assert.Equal(t, 1, idx)
	assert.True(t, loaded)
	assert.True(t, playing)
	assert.Equal(t, 3, s.Len())
}

func TestShared_ConcurrentReaders(t *testing.T) {
	s := NewShared(New(threeTracks()...))

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				if i%2 == 0 {
					p := s.Snapshot()
					p.MarkLoaded(i % 3)
					s.Replace(p)
				} else {
					_ = s.Snapshot().Len()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, s.Len())
}
