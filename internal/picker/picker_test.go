package picker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/reyvr/internal/playback"
)

func script(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestNew_ReturnsChosenFolder(t *testing.T) {
	bin := script(t, "dialog", `echo "/music/jazz"`)

	path, err := New(bin)(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "/music/jazz", path)
}

func TestNew_DismissedIsCancelled(t *testing.T) {
	bin := script(t, "dialog", "exit 1")

	_, err := New(bin)(context.Background())

	assert.ErrorIs(t, err, playback.ErrPickCancelled)
}

func TestNew_EmptyOutputIsCancelled(t *testing.T) {
	bin := script(t, "dialog", "true")

	_, err := New(bin)(context.Background())

	assert.ErrorIs(t, err, playback.ErrPickCancelled)
}

func TestNew_OtherFailure(t *testing.T) {
	bin := script(t, "dialog", "exit 3")

	_, err := New(bin)(context.Background())

	require.Error(t, err)
	assert.NotErrorIs(t, err, playback.ErrPickCancelled)
}

func TestNew_PassesArgs(t *testing.T) {
	bin := script(t, "dialog", `echo "$2"`)

	path, err := New(bin, "--title", "/from/args")(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "/from/args", path)
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PATH", dir)
	assert.Nil(t, Find())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "kdialog"), []byte("#!/bin/sh\necho /picked\n"), 0o755))
	p := Find()
	require.NotNil(t, p)
	path, err := p(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/picked", path)
}
