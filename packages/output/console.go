package output

import (
	"fmt"
	"io"
	"os"

	"github.com/abdul-hamid-achik/hit/packages/http"
	"github.com/fatih/color"
)

// Console renders diagnostics: verbose request/response traces, retry
// markers, the timing report, and error summaries. Everything it writes
// goes to the diagnostic stream so response bytes on stdout stay pipeable.
type Console struct {
	writer  io.Writer
	verbose bool
	silent  bool
	noColor bool
}

type ConsoleOption func(*Console)

func NewConsole(opts ...ConsoleOption) *Console {
	c := &Console{
		writer: os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.noColor {
		color.NoColor = true
	}
	return c
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(c *Console) {
		c.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(c *Console) {
		c.verbose = v
	}
}

func WithSilent(s bool) ConsoleOption {
	return func(c *Console) {
		c.silent = s
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(c *Console) {
		c.noColor = nc
	}
}

// RequestTrace prints the outgoing request line and headers in send order.
// Shown only in verbose mode.
func (c *Console) RequestTrace(d *http.Descriptor) {
	if c.silent || !c.verbose {
		return
	}
	c.printRequest(d, false)
}

// DryRun prints the request that would have been sent, including its body.
func (c *Console) DryRun(d *http.Descriptor) {
	if c.silent {
		return
	}
	c.printRequest(d, true)
}

func (c *Console) printRequest(d *http.Descriptor, withBody bool) {
	fmt.Fprintf(c.writer, "> %s %s\n", d.Method, d.URL)
	for _, h := range d.Headers {
		fmt.Fprintf(c.writer, "> %s: %s\n", h.Name, h.Value)
	}
	fmt.Fprintf(c.writer, "\n")
	if withBody && len(d.Body) > 0 {
		fmt.Fprintf(c.writer, "%s\n", d.Body)
	}
}

// ResponseTrace prints the status line and response headers. Shown only in
// verbose mode.
func (c *Console) ResponseTrace(resp *http.Response) {
	if c.silent || !c.verbose {
		return
	}
	fmt.Fprintf(c.writer, "< %s %s\n", resp.Proto, statusColor(resp.StatusCode)(resp.Status))
	for _, h := range resp.Headers {
		fmt.Fprintf(c.writer, "< %s: %s\n", h.Name, h.Value)
	}
	fmt.Fprintf(c.writer, "\n")
}

func statusColor(status int) func(a ...interface{}) string {
	switch {
	case status >= 200 && status < 300:
		return color.New(color.FgGreen).SprintFunc()
	case status >= 300 && status < 400:
		return color.New(color.FgYellow).SprintFunc()
	default:
		return color.New(color.FgRed).SprintFunc()
	}
}

// TimingReport prints the timing block for the final attempt. The throughput
// line appears only when both the size and the total duration are non-zero.
func (c *Console) TimingReport(t http.Timing, size int) {
	if c.silent {
		return
	}
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintf(c.writer, "%s\n", cyan("--- Timing Information ---"))
	fmt.Fprintf(c.writer, "Response received: %v\n", t.ResponseTime)
	fmt.Fprintf(c.writer, "Body read time: %v\n", t.BodyReadTime)
	fmt.Fprintf(c.writer, "Total time: %v\n", t.TotalTime)
	fmt.Fprintf(c.writer, "Response size: %d bytes (%.2f KB)\n", size, float64(size)/1024)
	if size > 0 && t.TotalTime > 0 {
		fmt.Fprintf(c.writer, "Throughput: %.2f KB/s\n", float64(size)/t.TotalTime.Seconds()/1024)
	}
	fmt.Fprintf(c.writer, "\n")
}

// RetryAfterStatus announces a retry caused by a retry-eligible status code.
// It runs before the backoff pause.
func (c *Console) RetryAfterStatus(status int) {
	if c.silent || !c.verbose {
		return
	}
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(c.writer, "%s\n", yellow(fmt.Sprintf("HTTP %d - retrying after delay...", status)))
}

// RetryAfterFailure announces a retry caused by a transport failure. It runs
// before the backoff pause.
func (c *Console) RetryAfterFailure(err error) {
	if c.silent || !c.verbose {
		return
	}
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(c.writer, "%s\n", yellow(fmt.Sprintf("Request error: %v - retrying after delay...", err)))
}

// RetryAttempt prints the marker shown before each resend.
func (c *Console) RetryAttempt(n int) {
	if c.silent || !c.verbose {
		return
	}
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(c.writer, "%s\n", yellow(fmt.Sprintf("--- Retry Attempt %d ---", n)))
}

// Error prints an error summary. Silent mode does not suppress it: failures
// stay visible even when rendered output is muted.
func (c *Console) Error(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(c.writer, "%s %v\n", red("Error:"), err)
}
