// Command callrecorder inspects and edits the call recorder settings.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lvim-tech/callrecorder/internal/logger"
	"github.com/lvim-tech/callrecorder/pkg/audio"
	"github.com/lvim-tech/callrecorder/pkg/config"
	"github.com/lvim-tech/callrecorder/pkg/settings"
)

const defaultAppName = "harbour-callrecorder"

// options are the persistent flags shared by every command.
type options struct {
	appName   string
	configDir string
	dataDir   string
	logLevel  string
	debug     bool

	log logger.Logger
	// devices is replaced in tests.
	devices audio.Enumerator
}

func newRootCmd() *cobra.Command {
	return buildRootCmd(&options{})
}

func buildRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "callrecorder",
		Short: "Inspect and edit the call recorder settings",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := logger.DefaultConfiguration()
			cfg.Level = opts.logLevel
			if opts.debug {
				cfg.Level = "debug"
			}
			l, err := logger.New(cfg, os.Stderr)
			if err != nil {
				return err
			}
			opts.log = l
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.appName, "app-name", defaultAppName, "application name used to namespace the config path")
	flags.StringVar(&opts.configDir, "config-dir", "", "config directory (default $XDG_CONFIG_HOME)")
	flags.StringVar(&opts.dataDir, "data-dir", "", "application data directory (default $XDG_DATA_HOME/<app-name>)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.BoolVarP(&opts.debug, "debug", "d", false, "enable debug logs")

	root.AddCommand(
		newPathCmd(opts),
		newShowCmd(opts),
		newGetCmd(opts),
		newSetCmd(opts),
		newInitCmd(opts),
		newDevicesCmd(opts),
		newFormatCmd(opts),
		newWatchCmd(opts),
		newMenuCmd(opts),
	)
	return root
}

func (o *options) environment() config.Environment {
	env := config.DefaultEnvironment(o.appName)
	if o.configDir != "" {
		env.ConfigDir = o.configDir
	}
	if o.dataDir != "" {
		env.DataDir = o.dataDir
	}
	return env
}

// preferences loads the command preferences. A broken file is logged and
// the defaults are used.
func (o *options) preferences() config.Preferences {
	path := o.environment().PreferencesPath()
	prefs, err := config.LoadPreferences(path)
	if err != nil {
		o.log.Warn().Err(err).Str("path", path).Msg("unable to read preferences, using defaults")
	}
	return prefs
}

func (o *options) openStore() *settings.Store {
	devices := o.devices
	if devices == nil {
		devices = audio.NewPulseEnumerator()
	}
	return settings.New(o.log, o.environment(), devices)
}

// formatValue renders an event or setting value for the terminal.
func formatValue(value any) string {
	switch v := value.(type) {
	case audio.Device:
		return v.Name
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprint(v)
	}
}
