package cmd

import "errors"

// Exit codes for the hit CLI
const (
	// ExitSuccess indicates a response was delivered (any status, 4xx included)
	ExitSuccess = 0

	// ExitRequestFailure indicates a retry-eligible status survived the retry budget
	ExitRequestFailure = 1

	// ExitConfigError indicates invalid or conflicting configuration
	ExitConfigError = 3

	// ExitNetworkError indicates the transport failed on every attempt
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// exitError pairs an error with the process exit code it should produce.
// reported marks errors already rendered on the console so Execute does not
// print them twice.
type exitError struct {
	code     int
	err      error
	reported bool
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func exitCodeFor(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitRequestFailure
}

func reported(err error) bool {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.reported
	}
	return false
}
