package main

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/common-build/commonopt/pkg/api"
)

func newWatchCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "watch <source-file>",
		Short: "Re-run Optimize on a file every time it or its config changes, printing the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourcePath := args[0]
			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("starting watcher: %w", err)
			}
			defer watcher.Close()

			if err := watcher.Add(sourcePath); err != nil {
				return fmt.Errorf("watching %s: %w", sourcePath, err)
			}
			if configPath != "" {
				if err := watcher.Add(configPath); err != nil {
					return fmt.Errorf("watching %s: %w", configPath, err)
				}
			}

			runOnce := func() {
				source, err := os.ReadFile(sourcePath)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					return
				}
				configJSON, err := readConfig(configPath)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					return
				}
				out, err := api.Optimize(string(source), configJSON)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					return
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}

			runOnce()
			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
						runOnce()
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					fmt.Fprintln(cmd.ErrOrStderr(), err)
				}
			}
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the config JSON file (defaults to {})")
	return cmd
}
