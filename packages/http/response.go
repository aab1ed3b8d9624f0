package http

import (
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hit/packages/core/config"
)

// Timing holds the stopwatch samples for one attempt.
type Timing struct {
	ResponseTime time.Duration // request written to response headers received
	BodyReadTime time.Duration // response body drain
	TotalTime    time.Duration // both together, this attempt only
}

// Response is one complete HTTP exchange as seen by the rest of the tool.
// Headers are flattened into ordered name/value fields.
type Response struct {
	StatusCode int
	Status     string // "200 OK"
	Proto      string // "HTTP/1.1"
	Headers    []config.Field
	Body       []byte
	Timing     Timing
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

// Header returns the first value of the named header, case-insensitively.
func (r *Response) Header(name string) string {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// Size is the body length in bytes.
func (r *Response) Size() int {
	return len(r.Body)
}
