package output

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/abdul-hamid-achik/hit/packages/core/config"
	"github.com/abdul-hamid-achik/hit/packages/filter"
	"github.com/abdul-hamid-achik/hit/packages/http"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Processor prepares the response body for delivery: optional JSON filtering
// and pretty-printing, then routing to stdout or an output file.
type Processor struct {
	writer  io.Writer
	console *Console
	pretty  bool
	filter  string
	silent  bool
	output  string
}

type ProcessorOption func(*Processor)

// NewProcessor builds a processor from the resolved display options.
func NewProcessor(req *config.Request, opts ...ProcessorOption) *Processor {
	p := &Processor{
		writer: os.Stdout,
		pretty: req.PrettyJSON,
		filter: req.JSONFilter,
		silent: req.Silent,
		output: req.Output,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithDestination redirects stdout rendering, mainly for tests.
func WithDestination(w io.Writer) ProcessorOption {
	return func(p *Processor) {
		p.writer = w
	}
}

// WithConsole sets the diagnostic console used to report filter errors.
func WithConsole(c *Console) ProcessorOption {
	return func(p *Processor) {
		p.console = c
	}
}

// Render delivers the response body. A failed filter is reported on the
// console and drops the body from the output without failing the run; the
// returned error covers delivery problems only.
func (p *Processor) Render(resp *http.Response) error {
	body := resp.Body

	filtered := false
	if p.filter != "" {
		matched, err := filter.Evaluate(p.filter, body)
		if err != nil {
			if p.console != nil {
				p.console.Error(err)
			}
			return nil
		}
		body = []byte(matched)
		filtered = true
	}

	switch {
	case p.pretty && gjson.ValidBytes(body):
		body = bytes.TrimSuffix(pretty.Pretty(body), []byte("\n"))
	case filtered:
		// Matched sub-values carry whitespace from the source document;
		// compact them into a single clean JSON value.
		body = pretty.Ugly(body)
	}

	return p.deliver(body)
}

func (p *Processor) deliver(body []byte) error {
	if p.output != "" {
		if err := os.WriteFile(p.output, body, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return nil
	}
	if p.silent {
		return nil
	}
	_, err := fmt.Fprintf(p.writer, "%s\n", body)
	return err
}
