package config

import (
	"github.com/spf13/pflag"
)

// Built-in defaults, the lowest-precedence source.
const (
	DefaultMethod     = "GET"
	DefaultTimeout    = 30 // seconds
	DefaultRetry      = 0
	DefaultRetryDelay = 1.0 // seconds
)

// Field is one ordered name/value pair. Header and form field order is
// preserved exactly as supplied.
type Field struct {
	Name  string
	Value string
}

// BodyKind discriminates the request body variants.
type BodyKind int

const (
	// BodyNone means no payload.
	BodyNone BodyKind = iota
	// BodyJSON is a raw JSON payload, sent as-is.
	BodyJSON
	// BodyFormEncoded is a pre-encoded urlencoded payload, sent verbatim.
	BodyFormEncoded
	// BodyFormFields is an ordered list of key/value fields to encode.
	BodyFormFields
)

// Body is the request payload as a tagged union: exactly one variant is
// active, enforced during resolution.
type Body struct {
	Kind   BodyKind
	Raw    string  // BodyJSON and BodyFormEncoded
	Fields []Field // BodyFormFields, in the order supplied
}

// Credentials is a basic-auth user/password pair.
type Credentials struct {
	User string
	Pass string
}

// Proxy describes an HTTP proxy. User and Pass are both set or both empty.
type Proxy struct {
	Host string
	Port string
	User string
	Pass string
}

// Request is the immutable result of merging every configuration source.
// It is built once by Resolve and read-only afterwards.
type Request struct {
	URL       string
	Method    string
	Headers   []Field
	Cookies   []string
	Body      Body
	BasicAuth *Credentials
	Proxy     *Proxy

	Timeout    int     // seconds, per attempt
	Retry      int     // retries after the initial attempt
	RetryDelay float64 // seconds, base backoff delay

	Verbose    bool
	Silent     bool
	DryRun     bool
	Timing     bool
	PrettyJSON bool
	JSONFilter string // empty means no filter
	Output     string // empty means stdout
}

// RegisterFlags defines the request-surface flags on fs. The same set backs
// the CLI command and the resolver tests.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("url", "u", "", "Target URL (required unless a preset supplies one)")
	fs.StringP("method", "m", DefaultMethod, "HTTP method: GET, POST, PUT, DELETE, HEAD, PATCH")
	fs.StringArray("headers", nil, `Request header as "Name: value" (repeatable)`)
	fs.StringArray("cookies", nil, "Cookie pair as name=value (repeatable)")
	fs.StringP("json", "j", "", "Raw JSON request body")
	fs.StringP("form-data", "f", "", "Pre-encoded form body (application/x-www-form-urlencoded)")
	fs.StringArray("form", nil, "Form field as key=value (repeatable, order preserved)")
	fs.String("basic-user", "", "Basic auth user (env: BASIC_USER)")
	fs.String("basic-pass", "", "Basic auth password (env: BASIC_PASS)")
	fs.String("proxy-host", "", "Proxy host (env: PROXY_HOST)")
	fs.String("proxy-port", "", "Proxy port (env: PROXY_PORT)")
	fs.String("proxy-user", "", "Proxy auth user (env: PROXY_USER)")
	fs.String("proxy-pass", "", "Proxy auth password (env: PROXY_PASS)")
	fs.IntP("timeout", "t", DefaultTimeout, "Per-attempt timeout in seconds")
	fs.Int("retry", DefaultRetry, "Retries after the initial attempt")
	fs.Float64("retry-delay", DefaultRetryDelay, "Base backoff delay in seconds, doubled per retry")
	fs.StringP("output", "o", "", "Write the response body to a file instead of stdout")
	fs.BoolP("verbose", "v", false, "Trace the outgoing request and response headers")
	fs.BoolP("silent", "s", false, "Suppress all rendered output (exit code still reflects the outcome)")
	fs.Bool("dry-run", false, "Build and show the request without sending it")
	fs.Bool("timing", false, "Report timing and throughput for the final attempt")
	fs.Bool("pretty-json", false, "Pretty-print JSON responses (2-space indent, key order preserved)")
	fs.String("json-filter", "", "Extract a JSON sub-value, e.g. .items[0].id")
	fs.StringP("config", "c", "", "TOML config file with [preset.<name>] tables")
	fs.String("preset", "", "Preset name from the config file (default: first preset)")
}

func defaults() map[string]any {
	return map[string]any{
		"method":      DefaultMethod,
		"timeout":     DefaultTimeout,
		"retry":       DefaultRetry,
		"retry_delay": DefaultRetryDelay,
	}
}
