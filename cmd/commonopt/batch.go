package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/common-build/commonopt/internal/exitcode"
	"github.com/common-build/commonopt/pkg/api"
)

// batchPartialFailureCode is distinct from any single-file logger.Error's
// own exit code (see internal/logger.Error.ExitCode): a batch run that
// fails on more than one file is a different condition than any one file's
// own error kind, so it gets its own reserved code via exitcode.Set rather
// than surfacing whichever file happened to fail first.
const batchPartialFailureCode = 10

func newBatchCmd() *cobra.Command {
	var configPath string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "batch <source-file>...",
		Short: "Optimize many files against one config, in place, concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configJSON, err := readConfig(configPath)
			if err != nil {
				return err
			}

			// The core holds no mutable state and is safe to call from many
			// goroutines at once (§5's reentrancy guarantee), so each file
			// in the batch runs on its own pool worker.
			p := pool.NewWithResults[error]().WithMaxGoroutines(concurrency)
			for _, path := range args {
				path := path
				p.Go(func() error {
					source, err := os.ReadFile(path)
					if err != nil {
						return fmt.Errorf("%s: reading source: %w", path, err)
					}
					out, err := api.Optimize(string(source), configJSON)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
						return fmt.Errorf("%s: writing result: %w", path, err)
					}
					return nil
				})
			}

			var failures []error
			for _, err := range p.Wait() {
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					failures = append(failures, err)
				}
			}
			switch len(failures) {
			case 0:
				return nil
			case 1:
				return failures[0]
			default:
				return exitcode.Set(errors.Join(failures...), batchPartialFailureCode)
			}
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the config JSON file (defaults to {})")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "maximum number of files optimized at once")
	return cmd
}
