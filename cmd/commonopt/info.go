package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/common-build/commonopt/pkg/api"
)

func newInfoCmd() *cobra.Command {
	var configPath string
	var pretty bool

	cmd := &cobra.Command{
		Use:   "info <source-file>",
		Short: "Report whether optimizing a file against a config is worthwhile, without rewriting it",
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
			raw, err := api.OptimizationInfo(string(source), configJSON)
			if err != nil {
				return err
			}
			if !pretty {
				fmt.Fprintln(cmd.OutOrStdout(), raw)
				return nil
			}
			var info api.Info
			if err := json.Unmarshal([]byte(raw), &info); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderInfo(info))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the config JSON file (defaults to {})")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "render a human-friendly report instead of raw JSON")
	return cmd
}

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	noteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

func renderInfo(info api.Info) string {
	fastPath := "no"
	if info.FastPathUsed {
		fastPath = goodStyle.Render("yes")
	}
	lines := []string{
		labelStyle.Render("fast path:") + " " + fastPath,
		labelStyle.Render("config:") + fmt.Sprintf("    %d/%d values enabled", info.EnabledCount, info.TotalConfigValues),
		labelStyle.Render("should optimize:") + fmt.Sprintf(" %v", info.ShouldOptimize),
	}
	for _, r := range info.Recommendations {
		lines = append(lines, noteStyle.Render("  - "+r))
	}
	box := lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder())
	body := ""
	for i, l := range lines {
		if i > 0 {
			body += "\n"
		}
		body += l
	}
	return box.Render(body)
}
