package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/common-build/commonopt/pkg/api"
)

func newRunCmd() *cobra.Command {
	var configPath string
	var outPath string

	cmd := &cobra.Command{
		Use:   "run <source-file>",
		Short: "Resolve macros in a single file against a config and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading source: %w", err)
			}
			configJSON, err := readConfig(configPath)
			if err != nil {
				return err
			}
			out, err := api.Optimize(string(source), configJSON)
			if err != nil {
				return err
			}
			if outPath == "" {
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			}
			return os.WriteFile(outPath, []byte(out), 0o644)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the config JSON file (defaults to {}) ")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the result here instead of stdout")
	return cmd
}

func readConfig(path string) (string, error) {
	if path == "" {
		return "{}", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading config: %w", err)
	}
	return string(b), nil
}
