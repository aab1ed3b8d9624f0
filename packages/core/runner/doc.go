// Package runner drives one request to a terminal outcome through the retry
// state machine.
//
// A Session owns the attempt counter and backoff schedule for a single
// invocation: Pending -> Sent -> {Succeeded, Retrying, Failed}, where
// Retrying re-enters Sent after a blocking exponential pause. Retry
// eligibility covers 5xx, 429, 408 and transport failures; every other
// status is terminal and forwarded untouched. When the budget runs out the
// last outcome is forwarded as-is; a persistently failing retryable
// response is still delivered, not converted into a hard error.
package runner
