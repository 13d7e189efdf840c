// Package clipboard copies text to the system clipboard via shell commands.
package clipboard

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ErrClipboardUnavailable is returned when no clipboard tool is installed.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// IsAvailable reports whether a clipboard tool can be found.
func IsAvailable() bool {
	_, err := getClipboardCommand(runtime.GOOS, exec.LookPath)
	return err == nil
}

// Copy copies text to the system clipboard.
func Copy(text string) error {
	args, err := getClipboardCommand(runtime.GOOS, exec.LookPath)
	if err != nil {
		return err
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

// getClipboardCommand picks the clipboard command line for goos. xclip is
// preferred over xsel, and wl-copy is used when neither is installed.
func getClipboardCommand(goos string, lookPath func(string) (string, error)) ([]string, error) {
	candidates := map[string][][]string{
		"darwin": {{"pbcopy"}},
		"linux": {
			{"xclip", "-selection", "clipboard"},
			{"xsel", "--clipboard", "--input"},
			{"wl-copy"},
		},
	}

	for _, args := range candidates[goos] {
		if _, err := lookPath(args[0]); err == nil {
			return args, nil
		}
	}
	return nil, ErrClipboardUnavailable
}
