// Package errmsg turns controller failures into the one-line messages
// carried by Error and Warning responses.
package errmsg

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Op names the operation that failed, phrased to follow "Failed to".
type Op string

const (
	OpPlaybackStart  Op = "start playback"
	OpPlaybackPause  Op = "pause playback"
	OpPlaybackStop   Op = "stop playback"
	OpPlaybackSeek   Op = "seek"
	OpPlaybackVolume Op = "set volume"
	OpTrackLoad      Op = "load track"
	OpTrackMeta      Op = "read track metadata"

	OpFolderLoad   Op = "load folder"
	OpFolderPick   Op = "choose folder"
	OpPlaylistLoad Op = "load playlist"

	OpSavedLoad Op = "load saved playlists"
	OpSavedSave Op = "save playlists"

	OpBackend    Op = "talk to the audio backend"
	OpInitialize Op = "initialize application"
)

// Format renders "Failed to <op>: <cause>", or "" for a nil err.
func Format(op Op, err error) string {
	return FormatWith(op, "", err)
}

// FormatWith is Format with the target of the operation (a path, a track
// title, a playlist name) quoted after op.
func FormatWith(op Op, target string, err error) string {
	if err == nil {
		return ""
	}
	if target == "" {
		return fmt.Sprintf("Failed to %s: %s", op, cause(err))
	}
	return fmt.Sprintf("Failed to %s '%s': %s", op, target, cause(err))
}

// cause shortens well-known errors to something a listener can act on.
func cause(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, os.ErrNotExist):
		return "not found"
	case errors.Is(err, os.ErrPermission):
		return "permission denied"
	}
	return err.Error()
}
