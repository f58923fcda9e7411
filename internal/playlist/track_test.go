package playlist

import (
	"image"
	"image/color"
	"testing"
)

func TestNewTrack_TitleFromFileName(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"/music/01 - Intro.mp3", "01 - Intro"},
		{"file:///music/song.flac", "song"},
		{"relative.ogg", "relative"},
		{"/music/noext", "noext"},
	}

	for _, tt := range tests {
		got := NewTrack(tt.uri)
		if got.Title != tt.want {
			t.Errorf("NewTrack(%q).Title = %q, want %q", tt.uri, got.Title, tt.want)
		}
		if got.URI != tt.uri {
			t.Errorf("NewTrack(%q).URI = %q", tt.uri, got.URI)
		}
	}
}

func TestTrack_Artist(t *testing.T) {
	tr := Track{Artists: []string{"A", "B"}}
	if got := tr.Artist(); got != "A, B" {
		t.Errorf("Artist() = %q, want %q", got, "A, B")
	}
	if got := (Track{}).Artist(); got != "" {
		t.Errorf("Artist() on empty = %q, want empty", got)
	}
}

func TestTrack_Path(t *testing.T) {
	tr := Track{URI: "file:///a/b.mp3"}
	if got := tr.Path(); got != "/a/b.mp3" {
		t.Errorf("Path() = %q, want /a/b.mp3", got)
	}
}

func TestTrack_CloneDeep(t *testing.T) {
	orig := Track{
		URI:       "/a.mp3",
		Artists:   []string{"A"},
		Thumbnail: &Thumbnail{Width: 1, Height: 1, Pix: []byte{1, 2, 3, 4}},
	}

	c := orig.Clone()
	c.Artists[0] = "Z"
	c.Thumbnail.Pix[0] = 9

	if orig.Artists[0] != "A" {
		t.Error("Clone shares Artists slice")
	}
	if orig.Thumbnail.Pix[0] != 1 {
		t.Error("Clone shares thumbnail pixels")
	}
}

func TestNewThumbnail_FitsBox(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 200))
	for x := range 400 {
		for y := range 200 {
			src.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	th := NewThumbnail(src, 100)
	if th == nil {
		t.Fatal("NewThumbnail returned nil")
	}
	if th.Width != 100 || th.Height != 50 {
		t.Errorf("size = %dx%d, want 100x50", th.Width, th.Height)
	}
	if len(th.Pix) != th.Width*th.Height*4 {
		t.Errorf("len(Pix) = %d, want %d", len(th.Pix), th.Width*th.Height*4)
	}

	img := th.Image()
	if img.Bounds().Dx() != 100 {
		t.Errorf("Image width = %d", img.Bounds().Dx())
	}
}

func TestNewThumbnail_Nil(t *testing.T) {
	if NewThumbnail(nil, 64) != nil {
		t.Error("expected nil thumbnail for nil image")
	}
	var th *Thumbnail
	if th.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}
