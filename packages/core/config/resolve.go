package config

import (
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/abdul-hamid-achik/hit/packages/core/env"
)

// options mirrors the merged key space before validation. Flag names map to
// these keys with dashes turned into underscores; basic-* and proxy-* flags
// map into the nested tables.
type options struct {
	URL        string            `koanf:"url"`
	Method     string            `koanf:"method"`
	Headers    []string          `koanf:"headers"`
	Cookies    []string          `koanf:"cookies"`
	JSON       string            `koanf:"json"`
	FormData   string            `koanf:"form_data"`
	Form       []string          `koanf:"form"`
	BasicAuth  credentialOptions `koanf:"basic_auth"`
	Proxy      proxyOptions      `koanf:"proxy"`
	Timeout    int               `koanf:"timeout"`
	Retry      int               `koanf:"retry"`
	RetryDelay float64           `koanf:"retry_delay"`
	Output     string            `koanf:"output"`
	Verbose    bool              `koanf:"verbose"`
	Silent     bool              `koanf:"silent"`
	DryRun     bool              `koanf:"dry_run"`
	Timing     bool              `koanf:"timing"`
	PrettyJSON bool              `koanf:"pretty_json"`
	JSONFilter string            `koanf:"json_filter"`
}

type credentialOptions struct {
	User string `koanf:"user"`
	Pass string `koanf:"pass"`
}

type proxyOptions struct {
	Host string `koanf:"host"`
	Port string `koanf:"port"`
	User string `koanf:"user"`
	Pass string `koanf:"pass"`
}

// flagKeys maps flag names to config keys. Flags absent from the map
// (config, preset, help and any command-level flags) never reach the merge.
var flagKeys = map[string]string{
	"url":         "url",
	"method":      "method",
	"headers":     "headers",
	"cookies":     "cookies",
	"json":        "json",
	"form-data":   "form_data",
	"form":        "form",
	"basic-user":  "basic_auth.user",
	"basic-pass":  "basic_auth.pass",
	"proxy-host":  "proxy.host",
	"proxy-port":  "proxy.port",
	"proxy-user":  "proxy.user",
	"proxy-pass":  "proxy.pass",
	"timeout":     "timeout",
	"retry":       "retry",
	"retry-delay": "retry_delay",
	"output":      "output",
	"verbose":     "verbose",
	"silent":      "silent",
	"dry-run":     "dry_run",
	"timing":      "timing",
	"pretty-json": "pretty_json",
	"json-filter": "json_filter",
}

// Resolve merges every configuration source into a validated Request.
// Precedence, highest first: CLI flag, preset field, environment variable,
// built-in default. Each field resolves independently, so overriding one never
// perturbs the rest of a preset.
func Resolve(flags *pflag.FlagSet, environ env.Snapshot, configPath, presetName string) (*Request, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, WrapError(KindInvalidValue, err, "loading defaults")
	}
	if err := k.Load(confmap.Provider(environ.Map(), "."), nil); err != nil {
		return nil, WrapError(KindInvalidValue, err, "loading environment variables")
	}

	if configPath != "" {
		if err := loadPreset(k, configPath, presetName); err != nil {
			return nil, err
		}
	} else if presetName != "" {
		return nil, NewError(KindInvalidPreset, "preset %q requested without a config file (use --config)", presetName)
	}

	// posflag skips flags the user never set when the key already has a
	// value, so an untouched flag default cannot shadow a preset or env
	// value.
	if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagValue(flags)), nil); err != nil {
		return nil, WrapError(KindInvalidValue, err, "loading command-line flags")
	}

	var opts options
	if err := k.Unmarshal("", &opts); err != nil {
		return nil, WrapError(KindInvalidValue, err, "invalid configuration values")
	}

	return buildRequest(opts)
}

func flagValue(flags *pflag.FlagSet) func(f *pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		return key, posflag.FlagVal(flags, f)
	}
}

// loadPreset merges one [preset.<name>] table from the TOML document at path
// into k. An empty name selects the first preset in document order.
func loadPreset(k *koanf.Koanf, path, name string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return WrapError(KindInvalidPreset, err, "reading config file %s", path)
	}

	doc := koanf.New(".")
	if err := doc.Load(rawbytes.Provider(raw), toml.Parser()); err != nil {
		return WrapError(KindInvalidPreset, err, "parsing config file %s", path)
	}

	if name == "" {
		name = firstPresetName(raw, doc)
		if name == "" {
			return NewError(KindInvalidPreset, "no presets found in config file")
		}
	}

	preset := doc.Cut("preset." + name)
	if len(preset.Keys()) == 0 {
		return NewError(KindInvalidPreset, "preset %q not found in config file", name)
	}

	return k.Merge(preset)
}

var presetHeader = regexp.MustCompile(`(?m)^\s*\[preset\.([^\]\s."']+)\]`)

// firstPresetName returns the name of the first preset declared in the
// document, or "" when there are none.
func firstPresetName(raw []byte, doc *koanf.Koanf) string {
	names := presetNames(raw, doc)
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

// presetNames lists preset names in document order. TOML decodes tables into
// maps with no stable order, so table headers are located in the raw text;
// quoted or otherwise unusual table names the scan cannot see are appended
// from the parsed document with a stable sort.
func presetNames(raw []byte, doc *koanf.Koanf) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range presetHeader.FindAllSubmatch(raw, -1) {
		name := string(m[1])
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	rest := doc.MapKeys("preset")
	sort.Strings(rest)
	for _, name := range rest {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// PresetSummary describes one preset table for listings.
type PresetSummary struct {
	Name   string
	URL    string
	Method string
}

// Presets returns the presets declared in the TOML document at path, in
// document order where the order is recoverable.
func Presets(path string) ([]PresetSummary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapError(KindInvalidPreset, err, "reading config file %s", path)
	}

	doc := koanf.New(".")
	if err := doc.Load(rawbytes.Provider(raw), toml.Parser()); err != nil {
		return nil, WrapError(KindInvalidPreset, err, "parsing config file %s", path)
	}

	names := presetNames(raw, doc)
	summaries := make([]PresetSummary, 0, len(names))
	for _, name := range names {
		summaries = append(summaries, PresetSummary{
			Name:   name,
			URL:    doc.String("preset." + name + ".url"),
			Method: doc.String("preset." + name + ".method"),
		})
	}
	return summaries, nil
}

func buildRequest(opts options) (*Request, error) {
	url := strings.TrimSpace(opts.URL)
	if url == "" {
		return nil, NewError(KindMissingURL, "no URL provided: set --url or select a preset that has one")
	}

	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if !validMethod(method) {
		return nil, NewError(KindInvalidMethod, "unknown HTTP method %q", opts.Method)
	}

	if opts.Timeout <= 0 {
		return nil, NewError(KindInvalidValue, "timeout must be positive, got %d", opts.Timeout)
	}
	if opts.Retry < 0 {
		return nil, NewError(KindInvalidValue, "retry must not be negative, got %d", opts.Retry)
	}
	if opts.RetryDelay <= 0 {
		return nil, NewError(KindInvalidValue, "retry delay must be positive, got %g", opts.RetryDelay)
	}

	headers, err := parseHeaders(opts.Headers)
	if err != nil {
		return nil, err
	}

	body, err := resolveBody(opts)
	if err != nil {
		return nil, err
	}

	req := &Request{
		URL:        url,
		Method:     method,
		Headers:    headers,
		Cookies:    opts.Cookies,
		Body:       body,
		Timeout:    opts.Timeout,
		Retry:      opts.Retry,
		RetryDelay: opts.RetryDelay,
		Verbose:    opts.Verbose,
		Silent:     opts.Silent,
		DryRun:     opts.DryRun,
		Timing:     opts.Timing,
		PrettyJSON: opts.PrettyJSON,
		JSONFilter: strings.TrimSpace(opts.JSONFilter),
		Output:     opts.Output,
	}

	if opts.BasicAuth.User != "" && opts.BasicAuth.Pass != "" {
		req.BasicAuth = &Credentials{User: opts.BasicAuth.User, Pass: opts.BasicAuth.Pass}
	}
	if opts.Proxy.Host != "" && opts.Proxy.Port != "" {
		proxy := &Proxy{Host: opts.Proxy.Host, Port: opts.Proxy.Port}
		if opts.Proxy.User != "" && opts.Proxy.Pass != "" {
			proxy.User = opts.Proxy.User
			proxy.Pass = opts.Proxy.Pass
		}
		req.Proxy = proxy
	}

	return req, nil
}

func validMethod(method string) bool {
	switch method {
	case "GET", "POST", "PUT", "DELETE", "HEAD", "PATCH":
		return true
	}
	return false
}

// parseHeaders splits "Name: value" entries, preserving order. A missing
// colon or empty name is a configuration error rather than a silent skip.
func parseHeaders(entries []string) ([]Field, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	headers := make([]Field, 0, len(entries))
	for _, entry := range entries {
		name, value, found := strings.Cut(entry, ":")
		if !found {
			return nil, NewError(KindInvalidValue, "invalid header %q: expected \"Name: value\"", entry)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, NewError(KindInvalidValue, "invalid header %q: empty name", entry)
		}
		headers = append(headers, Field{Name: name, Value: strings.TrimSpace(value)})
	}
	return headers, nil
}

// resolveBody folds the three body sources into the single-variant union.
// More than one active source is a configuration error regardless of which
// layers supplied them.
func resolveBody(opts options) (Body, error) {
	sources := 0
	if opts.JSON != "" {
		sources++
	}
	if opts.FormData != "" {
		sources++
	}
	if len(opts.Form) > 0 {
		sources++
	}
	if sources > 1 {
		return Body{}, NewError(KindConflictingBody, "conflicting body sources: only one of json, form-data, or form may be set")
	}

	switch {
	case opts.JSON != "":
		return Body{Kind: BodyJSON, Raw: opts.JSON}, nil
	case opts.FormData != "":
		return Body{Kind: BodyFormEncoded, Raw: opts.FormData}, nil
	case len(opts.Form) > 0:
		fields := make([]Field, 0, len(opts.Form))
		for _, entry := range opts.Form {
			key, value, found := strings.Cut(entry, "=")
			if !found {
				return Body{}, NewError(KindInvalidValue, "invalid form field %q: expected key=value", entry)
			}
			fields = append(fields, Field{Name: key, Value: value})
		}
		return Body{Kind: BodyFormFields, Fields: fields}, nil
	}

	return Body{Kind: BodyNone}, nil
}
