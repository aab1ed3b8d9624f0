package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	neturl "net/url"
	"sort"
	"time"

	"github.com/abdul-hamid-achik/hit/packages/core/config"
)

const (
	// DefaultTimeout is the fallback per-attempt timeout when the descriptor
	// carries none.
	DefaultTimeout = config.DefaultTimeout * time.Second
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool.
	DefaultMaxIdleConns = 100
	// DefaultMaxIdleConnsPerHost is the maximum number of idle connections per host.
	DefaultMaxIdleConnsPerHost = 10
	// DefaultIdleConnTimeout is how long idle connections stay in the pool.
	DefaultIdleConnTimeout = 90 * time.Second
)

// Client issues one attempt per Send call over a shared transport. Retrying
// is the caller's concern; every Send builds a fresh request from the
// descriptor so attempts never share body readers.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	proxyURL   *neturl.URL
}

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	transport := &http.Transport{
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
	}

	if c.proxyURL != nil {
		transport.Proxy = http.ProxyURL(c.proxyURL)
	}

	c.httpClient = &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
	}

	return c
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithProxyURL routes every request through the given proxy. A URL with
// userinfo makes the transport emit Proxy-Authorization on its own.
func WithProxyURL(u *neturl.URL) ClientOption {
	return func(c *Client) {
		c.proxyURL = u
	}
}

// Send issues the descriptor once and drains the response body. The timing
// samples cover exactly this attempt: time to response headers, body drain,
// and the sum of both.
func (c *Client) Send(ctx context.Context, d *Descriptor) (*Response, error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	var body io.Reader
	if len(d.Body) > 0 {
		body = bytes.NewReader(d.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, d.Method, d.URL.String(), body)
	if err != nil {
		return nil, err
	}

	for _, h := range d.Headers {
		httpReq.Header.Add(h.Name, h.Value)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	responseTime := time.Since(start)
	defer httpResp.Body.Close()

	bodyStart := time.Now()
	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}
	bodyReadTime := time.Since(bodyStart)

	return &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Proto:      httpResp.Proto,
		Headers:    responseHeaders(httpResp.Header),
		Body:       respBody,
		Timing: Timing{
			ResponseTime: responseTime,
			BodyReadTime: bodyReadTime,
			TotalTime:    time.Since(start),
		},
	}, nil
}

// responseHeaders flattens the header map into ordered fields. Go does not
// expose wire order, so names are sorted for deterministic output; repeated
// headers keep their per-name value order.
func responseHeaders(h http.Header) []config.Field {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]config.Field, 0, len(h))
	for _, name := range names {
		for _, value := range h[name] {
			fields = append(fields, config.Field{Name: name, Value: value})
		}
	}
	return fields
}

// FailureKind classifies transport failures for retry accounting and error
// reporting. HTTP statuses are never failures; only attempts that produced
// no response at all land here.
type FailureKind int

const (
	FailureTimeout FailureKind = iota
	FailureConnection
	FailureOther
)

func (k FailureKind) String() string {
	switch k {
	case FailureTimeout:
		return "timeout"
	case FailureConnection:
		return "connection error"
	default:
		return "I/O error"
	}
}

func ClassifyFailure(err error) FailureKind {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return FailureConnection
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return FailureConnection
	}

	return FailureOther
}
