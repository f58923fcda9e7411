// Package picker asks the user for a folder through a desktop dialog tool.
package picker

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/llehouerou/reyvr/internal/playback"
)

// Dialog is an external folder chooser.
type Dialog struct {
	Name string
	Args []string
}

// Dialogs lists the supported tools in lookup order.
var Dialogs = []Dialog{
	{Name: "zenity", Args: []string{"--file-selection", "--directory", "--title=Choose a music folder"}},
	{Name: "kdialog", Args: []string{"--getexistingdirectory", "--title", "Choose a music folder"}},
}

// Find returns a picker backed by the first dialog tool found in PATH,
// or nil when none is installed.
func Find() playback.Picker {
	for _, d := range Dialogs {
		if path, err := exec.LookPath(d.Name); err == nil {
			return New(path, d.Args...)
		}
	}
	return nil
}

// New returns a picker running bin with args. The chosen folder is read
// from stdout; exit status 1 means the dialog was dismissed.
func New(bin string, args ...string) playback.Picker {
	return func(ctx context.Context) (string, error) {
		out, err := exec.CommandContext(ctx, bin, args...).Output()
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
				return "", playback.ErrPickCancelled
			}
			return "", fmt.Errorf("run %s: %w", bin, err)
		}
		path := strings.TrimSpace(string(out))
		if path == "" {
			return "", playback.ErrPickCancelled
		}
		return path, nil
	}
}
