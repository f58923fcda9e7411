package errmsg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		op   Op
		err  error
		want string
	}{
		{"nil", OpTrackLoad, nil, ""},
		{"plain", OpPlaybackStart, errors.New("no audio device"), "Failed to start playback: no audio device"},
		{"timeout", OpSavedSave, fmt.Errorf("write: %w", context.DeadlineExceeded), "Failed to save playlists: timed out"},
		{"cancelled", OpFolderPick, context.Canceled, "Failed to choose folder: cancelled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.op, tt.err))
		})
	}
}

func TestFormatWith(t *testing.T) {
	notFound := &fs.PathError{Op: "open", Path: "/music/x", Err: os.ErrNotExist}

	assert.Empty(t, FormatWith(OpFolderLoad, "/music", nil))
	assert.Equal(t, "Failed to load folder '/music': not found",
		FormatWith(OpFolderLoad, "/music", notFound))
	assert.Equal(t, "Failed to load playlist 'Road': permission denied",
		FormatWith(OpPlaylistLoad, "Road", fmt.Errorf("read: %w", os.ErrPermission)))
	assert.Equal(t, "Failed to load track: bad header",
		FormatWith(OpTrackLoad, "", errors.New("bad header")))
}
