// Package clipboard copies text to the system clipboard through whichever
// clipboard command the platform provides.
package clipboard

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ErrUnavailable is returned when no clipboard command is installed.
var ErrUnavailable = errors.New("no clipboard command found")

// command is a clipboard tool and the arguments that make it read stdin.
type command struct {
	name string
	args []string
}

// candidates lists the clipboard tools for goos, preferred first.
func candidates(goos string) []command {
	switch goos {
	case "darwin":
		return []command{{"pbcopy", nil}}
	case "windows":
		return []command{{"clip", nil}}
	default:
		return []command{
			{"wl-copy", nil},
			{"xclip", []string{"-selection", "clipboard"}},
			{"xsel", []string{"--clipboard", "--input"}},
		}
	}
}

func find() (command, error) {
	for _, c := range candidates(runtime.GOOS) {
		if _, err := exec.LookPath(c.name); err == nil {
			return c, nil
		}
	}
	return command{}, ErrUnavailable
}

// Available reports whether Copy can work on this system.
func Available() bool {
	_, err := find()
	return err == nil
}

// Copy places text on the clipboard.
func Copy(text string) error {
	c, err := find()
	if err != nil {
		return err
	}
	cmd := exec.Command(c.name, c.args...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", c.name, err)
	}
	return nil
}
