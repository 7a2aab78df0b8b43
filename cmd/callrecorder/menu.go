package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lvim-tech/callrecorder/pkg/config"
	"github.com/lvim-tech/callrecorder/pkg/launcher"
	"github.com/lvim-tech/callrecorder/pkg/settings"
	"github.com/lvim-tech/callrecorder/pkg/utils"
)

const backOption = "← Back"

// editableKeys are the settings offered by the menu, in file order.
var editableKeys = []string{
	config.KeyOutputLocation,
	config.KeyOperationMode,
	config.KeySampleRate,
	config.KeyCompression,
	config.KeyLocale,
	config.KeyLimitStorage,
	config.KeyMaxStorageAge,
	config.KeyMaxStorageSize,
	config.KeyRequireApproval,
}

func newMenuCmd(opts *options) *cobra.Command {
	var launcherName string
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Edit the settings from a desktop menu (rofi, dmenu, fzf, bemenu, fuzzel)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs := opts.preferences()
			name := launcherName
			if name == "" {
				name = prefs.DefaultLauncher
			}
			if name == "" {
				detected, err := launcher.DetectAvailable()
				if err != nil {
					return err
				}
				name = detected.Name()
			}
			l := launcher.GetByName(name, prefs.LauncherArgs(name))
			if l == nil {
				return fmt.Errorf("unknown launcher %q (available: %s)",
					name, strings.Join(launcher.Names(), ", "))
			}

			report := func(err error) {
				opts.log.Warn().Err(err).Msg("setting rejected")
				if err := utils.Notify(prefs.Notification, "Call recorder", err.Error()); err != nil {
					opts.log.Warn().Err(err).Msg("unable to send notification")
				}
			}
			return runMenu(l, opts.openStore(), report)
		},
	}
	cmd.Flags().StringVarP(&launcherName, "launcher", "l", "", "menu program to use (default: preferences, then first installed)")
	return cmd
}

// runMenu lets the user pick a setting and a new value until the menu is
// closed. Every change is saved immediately. A rejected choice or value is
// passed to report and the menu is shown again.
func runMenu(l launcher.Launcher, store *settings.Store, report func(error)) error {
	for {
		cfg := store.Config()
		options := make([]string, 0, len(editableKeys))
		optionToKey := make(map[string]string, len(editableKeys))
		for _, key := range editableKeys {
			value, err := cfg.Get(key)
			if err != nil {
				return err
			}
			option := fmt.Sprintf("%s = %v", key, value)
			options = append(options, option)
			optionToKey[option] = key
		}

		choice, err := l.Show(options, "Call recorder")
		if launcher.IsCancelled(err) {
			return nil
		}
		if err != nil {
			return err
		}
		key, ok := optionToKey[choice]
		if !ok {
			report(fmt.Errorf("unknown choice: %s", choice))
			continue
		}

		value, err := l.Show(append([]string{backOption}, valueOptions(store, key)...), key)
		if launcher.IsCancelled(err) || value == backOption {
			continue
		}
		if err != nil {
			return err
		}
		if err := store.Set(key, value); err != nil {
			report(err)
			continue
		}
		if err := store.Save(); err != nil {
			return err
		}
	}
}

// valueOptions suggests values for key. Free-form settings offer their current
// value; launchers accepting typed input allow anything else.
func valueOptions(store *settings.Store, key string) []string {
	current, _ := store.Config().Get(key)
	switch key {
	case config.KeyOperationMode:
		return []string{config.WhiteList.String(), config.BlackList.String()}
	case config.KeyLimitStorage, config.KeyRequireApproval:
		return []string{"true", "false"}
	case config.KeySampleRate:
		var rates []string
		for _, rate := range store.InputDevice().SampleRates {
			rates = append(rates, strconv.Itoa(rate))
		}
		return rates
	default:
		return []string{fmt.Sprint(current)}
	}
}
