package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/lvim-tech/callrecorder/pkg/utils"
)

// PreferencesFileName holds the preferences of the callrecorder command,
// next to the settings file.
const PreferencesFileName = "callrecorder-cli.toml"

// Preferences tune the interactive commands. They are never read by the
// recorder itself.
type Preferences struct {
	// DefaultLauncher is the menu program used by "menu" when no
	// --launcher is given. Empty picks the first installed one.
	DefaultLauncher string                     `toml:"default_launcher"`
	Launchers       map[string]LauncherCommand `toml:"launchers"`
	Notification    utils.NotificationConfig   `toml:"notification"`
}

// LauncherCommand holds extra arguments for a menu program.
type LauncherCommand struct {
	Args []string `toml:"args"`
}

// preferencesFile is the on-disk form; nil fields keep their default.
type preferencesFile struct {
	DefaultLauncher *string                    `toml:"default_launcher"`
	Launchers       map[string]LauncherCommand `toml:"launchers"`
	Notification    struct {
		Tool    *string `toml:"tool"`
		Timeout *int    `toml:"timeout"`
		Urgency *string `toml:"urgency"`
	} `toml:"notification"`
}

// DefaultPreferences returns the preferences used without a file.
func DefaultPreferences() Preferences {
	return Preferences{
		Launchers:    map[string]LauncherCommand{},
		Notification: utils.DefaultNotificationConfig(),
	}
}

// PreferencesPath returns the path of the command preferences file.
func (e Environment) PreferencesPath() string {
	return filepath.Join(e.ConfigDir, e.AppName, PreferencesFileName)
}

// LauncherArgs returns the extra arguments configured for launcher name.
func (p Preferences) LauncherArgs(name string) []string {
	return p.Launchers[name].Args
}

// LoadPreferences merges the file at path over the defaults. A missing file
// is not an error; a broken one yields the defaults and the error.
func LoadPreferences(path string) (Preferences, error) {
	prefs := DefaultPreferences()

	var file preferencesFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return prefs, nil
		}
		return prefs, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if file.DefaultLauncher != nil {
		prefs.DefaultLauncher = *file.DefaultLauncher
	}
	for name, command := range file.Launchers {
		if len(command.Args) > 0 {
			prefs.Launchers[name] = command
		}
	}
	if file.Notification.Tool != nil && *file.Notification.Tool != "" {
		prefs.Notification.Tool = *file.Notification.Tool
	}
	if file.Notification.Timeout != nil {
		prefs.Notification.Timeout = *file.Notification.Timeout
	}
	if file.Notification.Urgency != nil && *file.Notification.Urgency != "" {
		prefs.Notification.Urgency = *file.Notification.Urgency
	}
	return prefs, nil
}
