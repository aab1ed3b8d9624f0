package http

import (
	"encoding/base64"
	"fmt"
	"net"
	neturl "net/url"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hit/packages/core/config"
)

// UserAgent identifies the tool on every outgoing request unless the caller
// supplies a User-Agent header of their own.
const UserAgent = "hit/1.0"

// Content types attached implicitly when a body variant is active and the
// caller has not set Content-Type explicitly.
const (
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeJSON = "application/json; charset=utf-8"
)

// Descriptor is the literal outgoing request: everything the transport needs
// and everything verbose or dry-run output shows. Headers hold the exact
// ordered set that will be sent, credentials included.
type Descriptor struct {
	Method   string
	URL      *neturl.URL
	Headers  []config.Field
	Body     []byte
	Timeout  time.Duration
	ProxyURL *neturl.URL
}

// BuildDescriptor turns a resolved request into the descriptor handed to the
// transport. Caller headers keep their order and always win over implicit
// ones; implicit headers (Content-Type, User-Agent, Cookie, Authorization)
// are appended after them. JSON bodies are sent as-is without re-validation.
func BuildDescriptor(req *config.Request) (*Descriptor, error) {
	target, err := neturl.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", req.URL, err)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q (only http and https are allowed)", target.Scheme)
	}
	if target.Host == "" {
		return nil, fmt.Errorf("invalid URL %q: missing host", req.URL)
	}

	d := &Descriptor{
		Method:  req.Method,
		URL:     target,
		Headers: append([]config.Field(nil), req.Headers...),
		Timeout: time.Duration(req.Timeout) * time.Second,
	}

	switch req.Body.Kind {
	case config.BodyJSON:
		d.Body = []byte(req.Body.Raw)
		d.setDefaultHeader("Content-Type", ContentTypeJSON)
	case config.BodyFormEncoded:
		d.Body = []byte(req.Body.Raw)
		d.setDefaultHeader("Content-Type", ContentTypeForm)
	case config.BodyFormFields:
		d.Body = []byte(EncodeFormFields(req.Body.Fields))
		d.setDefaultHeader("Content-Type", ContentTypeForm)
	}

	d.setDefaultHeader("User-Agent", UserAgent)

	if len(req.Cookies) > 0 {
		d.setDefaultHeader("Cookie", strings.Join(req.Cookies, "; "))
	}

	if req.BasicAuth != nil {
		creds := req.BasicAuth.User + ":" + req.BasicAuth.Pass
		encoded := base64.StdEncoding.EncodeToString([]byte(creds))
		d.setDefaultHeader("Authorization", "Basic "+encoded)
	}

	if req.Proxy != nil {
		d.ProxyURL = proxyURL(req.Proxy)
	}

	return d, nil
}

// HasHeader reports whether a header with the given name is present,
// case-insensitively.
func (d *Descriptor) HasHeader(name string) bool {
	for _, h := range d.Headers {
		if strings.EqualFold(h.Name, name) {
			return true
		}
	}
	return false
}

func (d *Descriptor) setDefaultHeader(name, value string) {
	if d.HasHeader(name) {
		return
	}
	d.Headers = append(d.Headers, config.Field{Name: name, Value: value})
}

// EncodeFormFields percent-encodes each key and value and joins them with
// "="/"&" in field order, producing the same wire text as a pre-encoded form
// string. url.Values is not used because its encoder sorts keys.
func EncodeFormFields(fields []config.Field) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(neturl.QueryEscape(f.Name))
		b.WriteByte('=')
		b.WriteString(neturl.QueryEscape(f.Value))
	}
	return b.String()
}

// proxyURL builds the http:// proxy URL, with userinfo embedded when proxy
// auth is configured so the transport emits Proxy-Authorization itself.
func proxyURL(p *config.Proxy) *neturl.URL {
	u := &neturl.URL{Scheme: "http", Host: net.JoinHostPort(p.Host, p.Port)}
	if p.User != "" && p.Pass != "" {
		u.User = neturl.UserPassword(p.User, p.Pass)
	}
	return u
}
