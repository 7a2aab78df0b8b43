package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lvim-tech/callrecorder/pkg/config"
	"github.com/lvim-tech/callrecorder/pkg/settings"
	"github.com/lvim-tech/callrecorder/pkg/utils"
)

func newPathCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), opts.environment().ConfigPath())
			return nil
		},
	}
}

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print every setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := opts.openStore()
			return config.Encode(cmd.OutOrStdout(), store.Config())
		},
	}
}

func newGetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "get <key>",
		Short:     "Print one setting",
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.Keys,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := opts.openStore()
			value, err := store.Config().Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func newSetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting and save",
		Long: `Change one setting and save the settings file.

deviceName and encoder.sampleSize are read-only.`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.Keys,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := opts.openStore()
			out := cmd.OutOrStdout()
			store.Subscribe(func(e settings.Event) {
				if e.Field == settings.SettingsChanged {
					return
				}
				fmt.Fprintf(out, "%s = %s\n", e.Field, formatValue(e.Value))
			})
			if err := store.Set(args[0], args[1]); err != nil {
				return err
			}
			return store.Save()
		},
	}
}

func newInitCmd(opts *options) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := opts.environment()
			path := env.ConfigPath()
			if utils.FileExists(path) && !force {
				return fmt.Errorf("config already exists: %s", path)
			}
			if err := config.Save(path, config.Defaults(env)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config initialized at: %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing settings file")
	return cmd
}

func newDevicesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List input devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := opts.openStore()
			devices, err := store.Devices()
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				return errors.New("no input device found")
			}
			out := cmd.OutOrStdout()
			for _, device := range devices {
				mark := " "
				if device.Name == store.InputDevice().Name {
					mark = "*"
				}
				if device.Description != "" {
					fmt.Fprintf(out, "%s %s (%s)\n", mark, device.Name, device.Description)
				} else {
					fmt.Fprintf(out, "%s %s\n", mark, device.Name)
				}
			}
			return nil
		},
	}
}

func newFormatCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "format",
		Short: "Print the capture format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := opts.openStore()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", store.InputDevice().Name, store.AudioFormat())
			return nil
		},
	}
}
