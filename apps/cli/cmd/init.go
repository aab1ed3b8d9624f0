package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter preset file",
	Long: `Create a starter hit.toml preset file in the current directory.

Presets hold reusable request settings; any field can still be overridden
per run with the matching CLI flag.

Examples:
  hit init
  hit init --force
  hit -c hit.toml --preset dev`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing hit.toml")
}

const starterConfig = `# hit preset file. Select one with: hit -c hit.toml --preset <name>
# Omitting --preset picks the first preset in the file. Any field here can
# be overridden per run by the matching CLI flag.

[preset.dev]
url = "http://localhost:3000/health"
method = "GET"
timeout = 10
headers = ["Accept: application/json"]

[preset.staging]
url = "https://staging.api.example.com/health"
retry = 2
retry_delay = 1.5
timing = true

[preset.prod]
url = "https://api.example.com/health"
retry = 3
retry_delay = 2.0
silent = true
output = "health.json"

# Credentials and proxies go in nested tables:
#
# [preset.staging.basic_auth]
# user = "svc-health"
# pass = "s3cret"
#
# [preset.staging.proxy]
# host = "proxy.internal"
# port = "3128"
`

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, "hit.toml")
	if !forceInit {
		if _, err := os.Stat(configFile); err == nil {
			return fmt.Errorf("file already exists: %s (use --force to overwrite)", configFile)
		}
	}

	if err := os.WriteFile(configFile, []byte(starterConfig), 0644); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)
	fmt.Fprintf(cmd.OutOrStdout(), "\nTry it: hit -c hit.toml --preset dev\n")

	return nil
}
