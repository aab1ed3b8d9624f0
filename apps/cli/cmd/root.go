package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/abdul-hamid-achik/hit/packages/core/config"
	"github.com/abdul-hamid-achik/hit/packages/core/env"
	"github.com/abdul-hamid-achik/hit/packages/core/runner"
	"github.com/abdul-hamid-achik/hit/packages/http"
	"github.com/abdul-hamid-achik/hit/packages/output"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	noColorFlag bool
	debugFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "hit",
	Short: "Hit an endpoint once and show what came back.",
	Long: `hit issues a single HTTP request - with optional automatic retries -
and renders the response.

Every field resolves independently: CLI flag > preset field > environment
variable > built-in default. Presets live in TOML files under
[preset.<name>] tables; --preset without a name picks the first one in
the file.

Examples:
  hit -u https://api.example.com/users
  hit -u https://api.example.com/users -m POST -j '{"name":"ada"}'
  hit -u https://api.example.com/login --form user=ada --form pass=secret
  hit -u https://api.example.com/me --headers "Authorization: Bearer t0k"
  hit -u https://api.example.com/health -c hit.toml --preset staging
  hit -u https://flaky.example.com --retry 3 --retry-delay 2
  hit -u https://api.example.com/users -v --timing --pretty-json
  hit -u https://api.example.com/users --json-filter .name`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return &exitError{
				code: ExitUsageError,
				err:  fmt.Errorf("unexpected argument %q (the target is passed with --url)", args[0]),
			}
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          rootCommand,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		code := exitCodeFor(err)
		if !reported(err) {
			output.NewConsole().Error(err)
			if code == ExitUsageError {
				fmt.Fprintln(os.Stderr, "Run 'hit --help' for usage.")
			}
		}
		os.Exit(code)
	}
}

func init() {
	config.RegisterFlags(rootCmd.Flags())
	rootCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("HIT_NO_COLOR", false), "Disable colored output (env: HIT_NO_COLOR)")
	rootCmd.Flags().BoolVar(&debugFlag, "debug", getEnvBool("HIT_DEBUG", false), "Enable debug logging (env: HIT_DEBUG)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &exitError{code: ExitUsageError, err: err}
	})

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(presetsCmd)
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func rootCommand(cmd *cobra.Command, args []string) error {
	log := newLogger(debugFlag)

	configPath, _ := cmd.Flags().GetString("config")
	presetName, _ := cmd.Flags().GetString("preset")

	req, err := config.Resolve(cmd.Flags(), env.Capture(), configPath, presetName)
	if err != nil {
		output.NewConsole(output.WithNoColor(noColorFlag)).Error(err)
		return &exitError{code: ExitConfigError, err: err, reported: true}
	}

	console := output.NewConsole(
		output.WithVerbose(req.Verbose),
		output.WithSilent(req.Silent),
		output.WithNoColor(noColorFlag),
	)

	d, err := http.BuildDescriptor(req)
	if err != nil {
		console.Error(err)
		return &exitError{code: ExitConfigError, err: err, reported: true}
	}

	log.Debug().
		Str("method", d.Method).
		Stringer("url", d.URL).
		Int("retry", req.Retry).
		Float64("retry_delay", req.RetryDelay).
		Msg("request resolved")

	if req.DryRun {
		console.DryRun(d)
		return nil
	}

	console.RequestTrace(d)

	client := http.NewClient(
		http.WithTimeout(d.Timeout),
		http.WithProxyURL(d.ProxyURL),
	)
	session := runner.NewSession(client,
		runner.WithRetry(req.Retry),
		runner.WithRetryDelay(req.RetryDelay),
		runner.WithNotifier(console),
		runner.WithLogger(log),
	)

	outcome := session.Run(cmd.Context(), d)
	if outcome.Err != nil {
		failure := outcome.Err
		if outcome.Attempts > 1 {
			failure = fmt.Errorf("request failed after %d attempts: %w", outcome.Attempts, outcome.Err)
		}
		console.Error(failure)
		return &exitError{code: ExitNetworkError, err: failure, reported: true}
	}

	resp := outcome.Response
	console.ResponseTrace(resp)
	if req.Timing {
		console.TimingReport(resp.Timing, resp.Size())
	}

	processor := output.NewProcessor(req, output.WithConsole(console))
	if err := processor.Render(resp); err != nil {
		console.Error(err)
		return &exitError{code: ExitRequestFailure, err: err, reported: true}
	}

	if outcome.Failed {
		failure := fmt.Errorf("request failed with HTTP %d after %d attempts", resp.StatusCode, outcome.Attempts)
		console.Error(failure)
		return &exitError{code: ExitRequestFailure, err: failure, reported: true}
	}

	return nil
}

// newLogger builds the debug logger. Logging is off unless --debug is set,
// so normal runs keep stderr clean for traces and error summaries.
func newLogger(debug bool) zerolog.Logger {
	if !debug {
		return zerolog.Nop()
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(writer).
		Level(zerolog.DebugLevel).
		With().
		Timestamp().
		Str("request_id", uuid.NewString()).
		Logger()
}
