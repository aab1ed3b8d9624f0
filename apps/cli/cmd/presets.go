package cmd

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/hit/packages/core/config"
	"github.com/spf13/cobra"
)

var presetsConfigFlag string

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List presets in a config file",
	Long: `List the presets declared in a TOML config file, in document order.

Examples:
  hit presets -c hit.toml`,
	RunE: presetsCommand,
}

func init() {
	presetsCmd.Flags().StringVarP(&presetsConfigFlag, "config", "c", "", "Path to TOML config file")
}

func presetsCommand(cmd *cobra.Command, args []string) error {
	if presetsConfigFlag == "" {
		return &exitError{code: ExitUsageError, err: fmt.Errorf("no config file given (use --config)")}
	}

	summaries, err := config.Presets(presetsConfigFlag)
	if err != nil {
		return &exitError{code: ExitConfigError, err: err}
	}
	if len(summaries) == 0 {
		return &exitError{code: ExitConfigError, err: fmt.Errorf("no presets found in config file")}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", presetsConfigFlag)
	for _, p := range summaries {
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s", p.Name)
		if p.URL != "" {
			method := p.Method
			if method == "" {
				method = config.DefaultMethod
			}
			fmt.Fprintf(cmd.OutOrStdout(), " (%s %s)", strings.ToUpper(method), p.URL)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n")
	}

	return nil
}
