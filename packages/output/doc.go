// Package output renders the user-facing views of an exchange.
//
// It has two halves:
//   - Console: verbose request/response traces, retry markers, the timing
//     report, and error summaries, all on the diagnostic stream
//   - Processor: the response body itself, with optional JSON filtering and
//     pretty-printing, routed to stdout or an output file
//
// Body bytes and diagnostics never share a stream, so the body can be piped
// while traces stay visible on the terminal.
package output
