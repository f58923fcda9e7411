package playback

import (
	"context"
	"errors"
	"fmt"

	"github.com/llehouerou/reyvr/internal/errmsg"
	"github.com/llehouerou/reyvr/internal/player"
	"github.com/llehouerou/reyvr/internal/playlist"
)

const msgNotLoaded = "Playlist is not loaded."

var (
	errNoStore        = errors.New("no playlist store configured")
	errSavedNotLoaded = errors.New("saved playlists were never loaded from the store")
)

func (c *Controller) dispatch(ctx context.Context, cmd Command) {
	c.log.Debug().Type("command", cmd).Msg("dispatch")

	switch cmd := cmd.(type) {
	case Play:
		c.play(ctx)
	case Pause:
		c.pause(ctx)
	case Stop:
		c.stop(ctx)
	case SetVolume:
		c.changeVolume(ctx, cmd.Volume)
	case GetMetadata:
		c.metadata(ctx)
	case GetTracks:
		c.tracks()
	case Next:
		p := c.shared.Snapshot()
		if i, ok := p.NextIndex(); ok {
			c.playTrack(ctx, p, i)
		}
	case Previous:
		p := c.shared.Snapshot()
		if i, ok := p.PreviousIndex(); ok {
			c.playTrack(ctx, p, i)
		}
	case Seek:
		c.seek(ctx, cmd)
	case PlayByID:
		c.playByID(ctx, cmd.Index)
	case LoadFromFolder:
		c.loadFolder(ctx, cmd.Path)
	case LoadFolder:
		c.pickFolder(ctx)
	case folderPicked:
		c.folderPicked(ctx, cmd)
	case LoadSavedPlaylists:
		c.loadSaved(ctx)
	case WriteSavedPlaylists:
		c.writeSaved(ctx)
	case AddSavedPlaylist:
		c.addSaved(cmd)
	case PlaySavedPlaylist:
		c.playSaved(ctx, cmd.Name)
	default:
		c.log.Warn().Type("command", cmd).Msg("unknown command")
	}
}

func (c *Controller) play(ctx context.Context) {
	p := c.shared.Snapshot()
	if p.IsEmpty() || !p.Loaded() {
		c.emit(Error{Message: msgNotLoaded})
		return
	}
	if p.Playing() {
		return
	}
	if err := c.backend.Play(ctx); err != nil {
		c.fail(errmsg.OpPlaybackStart, err)
		return
	}
	p.SetPlaying(true)
	c.shared.Replace(p)
	c.setState(player.Playing)
	c.emit(StateChanged{State: player.Playing})
	c.emit(Info{Message: "Playback started."})
}

func (c *Controller) pause(ctx context.Context) {
	p := c.shared.Snapshot()
	if !p.Playing() {
		c.log.Debug().Msg("pause ignored: not playing")
		return
	}
	if err := c.backend.Pause(ctx); err != nil {
		c.fail(errmsg.OpPlaybackPause, err)
		return
	}
	p.SetPlaying(false)
	c.shared.Replace(p)
	c.setState(player.Paused)
	c.emit(StateChanged{State: player.Paused})
	c.emit(Info{Message: "Playback paused."})
}

func (c *Controller) stop(ctx context.Context) {
	p := c.shared.Snapshot()
	if !p.Loaded() {
		c.log.Debug().Msg("stop ignored: not loaded")
		return
	}
	if err := c.backend.Stop(ctx); err != nil {
		c.fail(errmsg.OpPlaybackStop, err)
		return
	}
	p.SetPlaying(false)
	c.shared.Replace(p)
	c.setState(player.Stopped)
	c.emit(StateChanged{State: player.Stopped})
}

func (c *Controller) changeVolume(ctx context.Context, v float64) {
	if !c.shared.Snapshot().Loaded() {
		c.log.Debug().Float64("volume", v).Msg("volume ignored: not loaded")
		return
	}
	v = player.ClampVolume(v)
	if err := c.backend.SetVolume(ctx, v); err != nil {
		c.fail(errmsg.OpPlaybackVolume, err)
		return
	}
	c.setVolume(v)
	c.emit(Info{Message: fmt.Sprintf("Volume set to %g", v)})
}

// applyVolume reapplies the stored volume after a track change.
func (c *Controller) applyVolume(ctx context.Context) {
	if err := c.backend.SetVolume(ctx, c.Volume()); err != nil {
		c.fail(errmsg.OpPlaybackVolume, err)
	}
}

func (c *Controller) metadata(ctx context.Context) {
	p := c.shared.Snapshot()
	t, ok := p.Current()
	if !ok {
		return
	}
	if t.Thumbnail == nil || t.Duration == 0 {
		full, err := c.backend.Meta(ctx, t.URI)
		if err != nil {
			c.log.Debug().Err(err).Str("uri", t.URI).Msg("backend metadata unavailable")
		} else {
			t = full
		}
	}
	c.emit(Metadata{Track: t})
	if t.Thumbnail != nil {
		c.emit(Thumbnail{Image: t.Thumbnail})
	}
}

func (c *Controller) tracks() {
	p := c.shared.Snapshot()
	if !p.Loaded() {
		return
	}
	c.emit(Tracks{Tracks: p.Tracks()})
}

func (c *Controller) seek(ctx context.Context, cmd Seek) {
	if !c.shared.Snapshot().Playing() {
		c.log.Debug().Dur("position", cmd.Position).Msg("seek ignored: not playing")
		return
	}
	if err := c.backend.Seek(ctx, max(cmd.Position, 0)); err != nil {
		c.fail(errmsg.OpPlaybackSeek, err)
	}
}

func (c *Controller) playByID(ctx context.Context, index int) {
	p := c.shared.Snapshot()
	if !p.InRange(index) {
		c.emit(Error{Message: fmt.Sprintf("track index %d out of range (%d tracks)", index, p.Len())})
		return
	}
	if !p.Loaded() {
		c.emit(Error{Message: msgNotLoaded})
		return
	}
	c.playTrack(ctx, p, index)
}

// playTrack stops the current track, loads the one at index, starts it and
// reapplies the stored volume. p is a snapshot of the live playlist.
func (c *Controller) playTrack(ctx context.Context, p *playlist.Playlist, index int) {
	t, _ := p.Track(index)

	if err := c.backend.Stop(ctx); err != nil {
		c.fail(errmsg.OpPlaybackStop, err)
		return
	}
	wasPlaying := p.Playing()
	p.SetPlaying(false)

	if err := c.backend.Load(ctx, t.URI); err != nil {
		c.shared.Replace(p)
		c.markStopped(wasPlaying)
		c.failWith(errmsg.OpTrackLoad, t.Title, err)
		return
	}
	p.MarkLoaded(index)
	c.shared.Replace(p)

	if err := c.backend.Play(ctx); err != nil {
		c.markStopped(wasPlaying)
		c.fail(errmsg.OpPlaybackStart, err)
		return
	}
	p.SetPlaying(true)
	c.shared.Replace(p)
	c.applyVolume(ctx)
	c.setState(player.Playing)
	c.emit(StateChanged{State: player.Playing})
}

// markStopped records that the backend no longer plays after a failed
// transition, telling observers if they last saw it playing.
func (c *Controller) markStopped(wasPlaying bool) {
	c.setState(player.Stopped)
	if wasPlaying {
		c.emit(StateChanged{State: player.Stopped})
	}
}

func (c *Controller) loadFolder(ctx context.Context, path string) {
	next, err := playlist.FromDir(ctx, path, c.meta)
	if err != nil {
		c.failWith(errmsg.OpFolderLoad, path, err)
		return
	}
	if c.loadPlaylist(ctx, next) && c.folderLoaded != nil {
		c.folderLoaded(path)
	}
}

// pickFolder runs the picker off the loop; its answer comes back as a
// folderPicked command.
func (c *Controller) pickFolder(ctx context.Context) {
	if c.picker == nil {
		c.emit(Warning{Message: "No folder picker available."})
		return
	}
	if c.picking {
		c.log.Debug().Msg("folder picker already open")
		return
	}
	c.picking = true

	c.pickers.Add(1)
	go func() {
		defer c.pickers.Done()
		path, err := c.picker(ctx)
		if ctx.Err() != nil {
			return
		}
		if err := c.cmds.Send(folderPicked{path: path, err: err}); err != nil {
			c.log.Debug().Err(err).Msg("dropping picked folder")
		}
	}()
}

func (c *Controller) folderPicked(ctx context.Context, res folderPicked) {
	c.picking = false
	if errors.Is(res.err, ErrPickCancelled) || (res.err == nil && res.path == "") {
		c.emit(Warning{Message: "No folder selected."})
		return
	}
	if res.err != nil {
		c.fail(errmsg.OpFolderPick, res.err)
		return
	}
	c.loadFolder(ctx, res.path)
}

// loadPlaylist loads the first track of next into the backend and makes
// next the live playlist. On failure the live playlist is kept.
func (c *Controller) loadPlaylist(ctx context.Context, next *playlist.Playlist) bool {
	cur := c.shared.Snapshot()
	wasPlaying := cur.Playing()
	if wasPlaying {
		if err := c.backend.Stop(ctx); err != nil {
			c.fail(errmsg.OpPlaybackStop, err)
			return false
		}
	}

	first, _ := next.Track(0)
	if err := c.backend.Load(ctx, first.URI); err != nil {
		if wasPlaying {
			cur.SetPlaying(false)
			c.shared.Replace(cur)
		}
		c.markStopped(wasPlaying)
		c.failWith(errmsg.OpTrackLoad, first.Title, err)
		return false
	}
	c.applyVolume(ctx)

	next.MarkLoaded(0)
	c.shared.Replace(next)
	c.markStopped(wasPlaying)
	c.emit(Tracks{Tracks: next.Tracks()})
	return true
}

func (c *Controller) loadSaved(ctx context.Context) {
	if c.store == nil {
		c.emit(Warning{Message: errmsg.Format(errmsg.OpSavedLoad, errNoStore)})
		return
	}
	ctx, cancel := context.WithTimeout(ctx, c.storeTimeout)
	defer cancel()

	all, err := c.store.Load(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("loading saved playlists")
		c.emit(Warning{Message: errmsg.Format(errmsg.OpSavedLoad, err)})
	} else {
		c.saved = all
		c.savedLoaded = true
	}
	c.emit(SavedPlaylists{Playlists: c.saved.Clone()})
}

func (c *Controller) writeSaved(ctx context.Context) {
	if c.store == nil {
		c.fail(errmsg.OpSavedSave, errNoStore)
		return
	}
	// Save replaces every stored row
	if !c.savedLoaded {
		c.fail(errmsg.OpSavedSave, errSavedNotLoaded)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, c.storeTimeout)
	defer cancel()

	if err := c.store.Save(ctx, c.saved.Clone()); err != nil {
		c.fail(errmsg.OpSavedSave, err)
		return
	}
	c.emit(Info{Message: "Playlists saved."})
}

func (c *Controller) addSaved(cmd AddSavedPlaylist) {
	if cmd.Playlist.Name == "" {
		c.emit(Warning{Message: "Playlist name is empty."})
		return
	}
	c.saved.Add(cmd.Playlist)
	c.emit(SavedPlaylists{Playlists: c.saved.Clone()})
}

func (c *Controller) playSaved(ctx context.Context, name string) {
	saved, ok := c.saved.Find(name)
	if !ok {
		c.emit(Error{Message: fmt.Sprintf("saved playlist %q not found", name)})
		return
	}
	next, err := playlist.FromURIs(ctx, saved.URIs, c.meta)
	if err != nil {
		c.failWith(errmsg.OpPlaylistLoad, name, err)
		return
	}
	c.loadPlaylist(ctx, next)
}
