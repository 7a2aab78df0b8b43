// Package launcher provides an abstraction layer for menu programs.
// It supports rofi, dmenu, fzf, bemenu and fuzzel with a unified interface,
// so settings can be picked from a desktop menu.
package launcher

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrCancelled is returned when the user closes the menu without a choice.
	ErrCancelled = errors.New("cancelled by user")

	// ErrNoLauncher is returned when no menu program is installed.
	ErrNoLauncher = errors.New("no launcher available - please install rofi, dmenu, fzf, bemenu, or fuzzel")
)

// Launcher shows a list of options and returns the selected or typed line.
type Launcher interface {
	Name() string
	IsAvailable() bool
	Show(options []string, prompt string) (string, error)
}

// IsCancelled checks if err comes from a cancelled menu
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// Command runs a menu program reading options on stdin and printing the
// choice on stdout.
type Command struct {
	name       string
	args       []string
	promptArgs func(prompt string) []string
}

// NewCommand creates a launcher running name with args. promptArgs renders
// the prompt as extra arguments; nil ignores the prompt.
func NewCommand(name string, args []string, promptArgs func(prompt string) []string) *Command {
	return &Command{name: name, args: args, promptArgs: promptArgs}
}

func (c *Command) Name() string {
	return c.name
}

func (c *Command) IsAvailable() bool {
	_, err := exec.LookPath(c.name)
	return err == nil
}

// Show pipes options to the program. Exit status 1 or an empty answer
// (ESC in dmenu/rofi/fzf) is reported as ErrCancelled.
func (c *Command) Show(options []string, prompt string) (string, error) {
	args := append([]string{}, c.args...)
	if c.promptArgs != nil {
		args = append(args, c.promptArgs(prompt)...)
	}

	cmd := exec.Command(c.name, args...)
	cmd.Stdin = strings.NewReader(strings.Join(options, "\n"))

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("%s exited with error: %w", c.name, err)
	}

	result := strings.TrimSpace(strings.SplitN(string(output), "\n", 2)[0])
	if result == "" {
		return "", ErrCancelled
	}
	return result, nil
}

// NewRofi creates a rofi launcher in dmenu mode.
func NewRofi(args []string) *Command {
	return NewCommand("rofi", args, func(prompt string) []string {
		return []string{"-p", prompt, "-dmenu"}
	})
}

// NewDmenu creates a dmenu launcher.
func NewDmenu(args []string) *Command {
	return NewCommand("dmenu", args, func(prompt string) []string {
		return []string{"-p", prompt}
	})
}

// NewFzf creates a fzf launcher for terminals.
func NewFzf(args []string) *Command {
	return NewCommand("fzf", args, func(prompt string) []string {
		return []string{"--prompt", prompt + "> "}
	})
}

// NewBemenu creates a bemenu launcher.
func NewBemenu(args []string) *Command {
	return NewCommand("bemenu", args, func(prompt string) []string {
		return []string{"-p", prompt}
	})
}

// NewFuzzel creates a fuzzel launcher in dmenu mode.
func NewFuzzel(args []string) *Command {
	return NewCommand("fuzzel", args, func(prompt string) []string {
		return []string{"--dmenu", "--prompt", prompt + "> "}
	})
}

// Priority: rofi > dmenu > fzf > bemenu > fuzzel
var builtin = []func(args []string) *Command{NewRofi, NewDmenu, NewFzf, NewBemenu, NewFuzzel}

// GetByName returns the launcher called name run with the extra args, or nil.
func GetByName(name string, args []string) Launcher {
	for _, build := range builtin {
		if l := build(args); l.Name() == name {
			return l
		}
	}
	return nil
}

// Names lists the supported launchers by priority.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for _, build := range builtin {
		names = append(names, build(nil).Name())
	}
	return names
}

// DetectAvailable returns the first installed launcher.
func DetectAvailable() (Launcher, error) {
	for _, build := range builtin {
		if l := build(nil); l.IsAvailable() {
			return l, nil
		}
	}
	return nil, ErrNoLauncher
}
