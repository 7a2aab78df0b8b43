package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/lvim-tech/callrecorder/internal/logger"
	"github.com/lvim-tech/callrecorder/pkg/settings"
	"github.com/lvim-tech/callrecorder/pkg/utils"
)

func newWatchCmd(opts *options) *cobra.Command {
	var notify bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload the settings when the file changes and print what changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := opts.openStore()
			out := cmd.OutOrStdout()
			notification := opts.preferences().Notification
			store.Subscribe(func(e settings.Event) {
				if e.Field == settings.SettingsChanged {
					return
				}
				line := fmt.Sprintf("%s = %s", e.Field, formatValue(e.Value))
				fmt.Fprintln(out, line)
				if notify {
					if err := utils.Notify(notification, "Call recorder settings", line); err != nil {
						opts.log.Warn().Err(err).Msg("unable to send notification")
					}
				}
			})

			w, err := newConfigWatcher(opts.log, store)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Watching %s\n", store.ConfigPath())
			return w.run(cmd.Context())
		},
	}
	cmd.Flags().BoolVarP(&notify, "notify", "n", false, "send a desktop notification for each change")
	return cmd
}

// configWatcher reloads a store when its settings file is written.
type configWatcher struct {
	log     logger.Logger
	store   *settings.Store
	path    string
	watcher *fsnotify.Watcher
}

// newConfigWatcher watches the directory of the settings file, so the file
// can be created or replaced while watching.
func newConfigWatcher(log logger.Logger, store *settings.Store) (*configWatcher, error) {
	path := filepath.Clean(store.ConfigPath())
	dir := filepath.Dir(path)
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("cannot create config directory: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Err(err).Msg("cannot setup watcher for settings")
		return nil, fmt.Errorf("cannot setup watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		log.Err(err).Msg("cannot watch config directory")
		return nil, fmt.Errorf("cannot watch config directory: %w", err)
	}
	return &configWatcher{
		log:     log.New("watch"),
		store:   store,
		path:    path,
		watcher: watcher,
	}, nil
}

// run reloads the store until ctx is done. The store is only touched from
// this goroutine.
func (w *configWatcher) run(ctx context.Context) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Err(err).Msg("settings watcher error")
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// Editors truncate before writing the new content.
			if info, err := os.Stat(w.path); err != nil || info.Size() == 0 {
				w.log.Debug().Str("event", event.Op.String()).Msg("settings file empty or gone, waiting")
				continue
			}
			w.log.Debug().Str("event", event.Op.String()).Msg("settings file changed")
			w.store.Reload()
		}
	}
}
