package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/hit/packages/core/env"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("hit", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hit.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestResolveDefaults(t *testing.T) {
	flags := newFlags(t, "--url", "https://example.com/get")

	req, err := Resolve(flags, env.Snapshot{}, "", "")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/get", req.URL)
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, DefaultTimeout, req.Timeout)
	assert.Equal(t, DefaultRetry, req.Retry)
	assert.Equal(t, DefaultRetryDelay, req.RetryDelay)
	assert.Equal(t, BodyNone, req.Body.Kind)
	assert.Nil(t, req.BasicAuth)
	assert.Nil(t, req.Proxy)
	assert.False(t, req.Verbose)
	assert.False(t, req.Silent)
}

func TestResolvePrecedence(t *testing.T) {
	path := writeConfig(t, `
[preset.api]
url = "https://api.example.com/users"
method = "POST"
timeout = 5
headers = ["X-Api-Key: secret"]

[preset.api.basic_auth]
user = "preset-user"
pass = "preset-pass"
`)

	environ := env.Snapshot{
		BasicUser: "env-user",
		BasicPass: "env-pass",
		ProxyHost: "proxy.internal",
		ProxyPort: "3128",
	}

	t.Run("flag overrides preset field", func(t *testing.T) {
		flags := newFlags(t, "--method", "PUT")

		req, err := Resolve(flags, environ, path, "api")
		require.NoError(t, err)

		assert.Equal(t, "PUT", req.Method)
		// The rest of the preset stays intact.
		assert.Equal(t, "https://api.example.com/users", req.URL)
		assert.Equal(t, 5, req.Timeout)
	})

	t.Run("preset overrides environment", func(t *testing.T) {
		flags := newFlags(t)

		req, err := Resolve(flags, environ, path, "api")
		require.NoError(t, err)

		require.NotNil(t, req.BasicAuth)
		assert.Equal(t, "preset-user", req.BasicAuth.User)
		assert.Equal(t, "preset-pass", req.BasicAuth.Pass)
	})

	t.Run("environment fills fields the preset leaves unset", func(t *testing.T) {
		flags := newFlags(t)

		req, err := Resolve(flags, environ, path, "api")
		require.NoError(t, err)

		require.NotNil(t, req.Proxy)
		assert.Equal(t, "proxy.internal", req.Proxy.Host)
		assert.Equal(t, "3128", req.Proxy.Port)
	})

	t.Run("untouched flag default does not shadow preset", func(t *testing.T) {
		flags := newFlags(t)

		req, err := Resolve(flags, environ, path, "api")
		require.NoError(t, err)

		assert.Equal(t, 5, req.Timeout)
	})

	t.Run("preset headers are parsed in order", func(t *testing.T) {
		flags := newFlags(t)

		req, err := Resolve(flags, environ, path, "api")
		require.NoError(t, err)

		require.Len(t, req.Headers, 1)
		assert.Equal(t, Field{Name: "X-Api-Key", Value: "secret"}, req.Headers[0])
	})
}

func TestResolveFirstPresetInDocumentOrder(t *testing.T) {
	path := writeConfig(t, `
[preset.zeta]
url = "https://zeta.example.com"

[preset.alpha]
url = "https://alpha.example.com"
`)

	req, err := Resolve(newFlags(t), env.Snapshot{}, path, "")
	require.NoError(t, err)
	assert.Equal(t, "https://zeta.example.com", req.URL)
}

func TestResolvePresetErrors(t *testing.T) {
	t.Run("named preset not found", func(t *testing.T) {
		path := writeConfig(t, `
[preset.api]
url = "https://api.example.com"
`)
		_, err := Resolve(newFlags(t), env.Snapshot{}, path, "missing")
		require.Error(t, err)
		assert.True(t, IsKind(err, KindInvalidPreset))
		assert.Contains(t, err.Error(), `preset "missing" not found in config file`)
	})

	t.Run("document without presets", func(t *testing.T) {
		path := writeConfig(t, `title = "not a preset"`)
		_, err := Resolve(newFlags(t), env.Snapshot{}, path, "")
		require.Error(t, err)
		assert.True(t, IsKind(err, KindInvalidPreset))
		assert.Contains(t, err.Error(), "no presets found in config file")
	})

	t.Run("malformed document", func(t *testing.T) {
		path := writeConfig(t, `[preset.broken`)
		_, err := Resolve(newFlags(t), env.Snapshot{}, path, "")
		require.Error(t, err)
		assert.True(t, IsKind(err, KindInvalidPreset))
	})

	t.Run("unreadable file", func(t *testing.T) {
		_, err := Resolve(newFlags(t), env.Snapshot{}, filepath.Join(t.TempDir(), "absent.toml"), "")
		require.Error(t, err)
		assert.True(t, IsKind(err, KindInvalidPreset))
	})

	t.Run("preset name without config file", func(t *testing.T) {
		_, err := Resolve(newFlags(t, "--url", "https://example.com"), env.Snapshot{}, "", "api")
		require.Error(t, err)
		assert.True(t, IsKind(err, KindInvalidPreset))
	})
}

func TestResolveMissingURL(t *testing.T) {
	_, err := Resolve(newFlags(t), env.Snapshot{}, "", "")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindMissingURL))
}

func TestResolveConflictingBody(t *testing.T) {
	cases := []struct {
		name string
		args []string
	}{
		{"json then form", []string{"--json", `{"a":1}`, "--form", "a=1"}},
		{"form then json", []string{"--form", "a=1", "--json", `{"a":1}`}},
		{"json then form-data", []string{"--json", `{"a":1}`, "--form-data", "a=1&b=2"}},
		{"form-data then form", []string{"--form-data", "a=1", "--form", "b=2"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			args := append([]string{"--url", "https://example.com"}, tc.args...)
			_, err := Resolve(newFlags(t, args...), env.Snapshot{}, "", "")
			require.Error(t, err)
			assert.True(t, IsKind(err, KindConflictingBody))
		})
	}
}

func TestResolveBodyVariants(t *testing.T) {
	t.Run("raw json", func(t *testing.T) {
		req, err := Resolve(newFlags(t, "--url", "https://example.com", "--json", `{"name":"dummy"}`), env.Snapshot{}, "", "")
		require.NoError(t, err)
		assert.Equal(t, BodyJSON, req.Body.Kind)
		assert.Equal(t, `{"name":"dummy"}`, req.Body.Raw)
	})

	t.Run("pre-encoded form", func(t *testing.T) {
		req, err := Resolve(newFlags(t, "--url", "https://example.com", "--form-data", "a=1&b=2"), env.Snapshot{}, "", "")
		require.NoError(t, err)
		assert.Equal(t, BodyFormEncoded, req.Body.Kind)
		assert.Equal(t, "a=1&b=2", req.Body.Raw)
	})

	t.Run("form fields keep order", func(t *testing.T) {
		req, err := Resolve(newFlags(t, "--url", "https://example.com",
			"--form", "zeta=1", "--form", "alpha=2", "--form", "mid dle=sp ace"), env.Snapshot{}, "", "")
		require.NoError(t, err)
		assert.Equal(t, BodyFormFields, req.Body.Kind)
		assert.Equal(t, []Field{
			{Name: "zeta", Value: "1"},
			{Name: "alpha", Value: "2"},
			{Name: "mid dle", Value: "sp ace"},
		}, req.Body.Fields)
	})

	t.Run("form field without equals fails", func(t *testing.T) {
		_, err := Resolve(newFlags(t, "--url", "https://example.com", "--form", "broken"), env.Snapshot{}, "", "")
		require.Error(t, err)
		assert.True(t, IsKind(err, KindInvalidValue))
	})
}

func TestResolveHeaders(t *testing.T) {
	t.Run("order preserved and values trimmed", func(t *testing.T) {
		req, err := Resolve(newFlags(t, "--url", "https://example.com",
			"--headers", "X-First: one",
			"--headers", "X-Second:two",
			"--headers", "X-First: again"), env.Snapshot{}, "", "")
		require.NoError(t, err)
		assert.Equal(t, []Field{
			{Name: "X-First", Value: "one"},
			{Name: "X-Second", Value: "two"},
			{Name: "X-First", Value: "again"},
		}, req.Headers)
	})

	t.Run("missing colon fails", func(t *testing.T) {
		_, err := Resolve(newFlags(t, "--url", "https://example.com", "--headers", "not-a-header"), env.Snapshot{}, "", "")
		require.Error(t, err)
		assert.True(t, IsKind(err, KindInvalidValue))
	})

	t.Run("empty name fails", func(t *testing.T) {
		_, err := Resolve(newFlags(t, "--url", "https://example.com", "--headers", ": value"), env.Snapshot{}, "", "")
		require.Error(t, err)
		assert.True(t, IsKind(err, KindInvalidValue))
	})
}

func TestResolveValidation(t *testing.T) {
	t.Run("unknown method", func(t *testing.T) {
		_, err := Resolve(newFlags(t, "--url", "https://example.com", "--method", "BREW"), env.Snapshot{}, "", "")
		require.Error(t, err)
		assert.True(t, IsKind(err, KindInvalidMethod))
	})

	t.Run("method is case-insensitive", func(t *testing.T) {
		req, err := Resolve(newFlags(t, "--url", "https://example.com", "--method", "delete"), env.Snapshot{}, "", "")
		require.NoError(t, err)
		assert.Equal(t, "DELETE", req.Method)
	})

	t.Run("zero timeout", func(t *testing.T) {
		_, err := Resolve(newFlags(t, "--url", "https://example.com", "--timeout", "0"), env.Snapshot{}, "", "")
		require.Error(t, err)
		assert.True(t, IsKind(err, KindInvalidValue))
	})

	t.Run("negative retry", func(t *testing.T) {
		_, err := Resolve(newFlags(t, "--url", "https://example.com", "--retry", "-1"), env.Snapshot{}, "", "")
		require.Error(t, err)
		assert.True(t, IsKind(err, KindInvalidValue))
	})

	t.Run("zero retry delay", func(t *testing.T) {
		_, err := Resolve(newFlags(t, "--url", "https://example.com", "--retry-delay", "0"), env.Snapshot{}, "", "")
		require.Error(t, err)
		assert.True(t, IsKind(err, KindInvalidValue))
	})
}

func TestResolveCredentialPairs(t *testing.T) {
	t.Run("basic auth requires both parts", func(t *testing.T) {
		req, err := Resolve(newFlags(t, "--url", "https://example.com", "--basic-user", "alice"), env.Snapshot{}, "", "")
		require.NoError(t, err)
		assert.Nil(t, req.BasicAuth)
	})

	t.Run("proxy requires host and port", func(t *testing.T) {
		req, err := Resolve(newFlags(t, "--url", "https://example.com", "--proxy-host", "proxy.internal"), env.Snapshot{}, "", "")
		require.NoError(t, err)
		assert.Nil(t, req.Proxy)
	})

	t.Run("proxy auth requires both parts", func(t *testing.T) {
		req, err := Resolve(newFlags(t, "--url", "https://example.com",
			"--proxy-host", "proxy.internal", "--proxy-port", "3128", "--proxy-user", "alice"), env.Snapshot{}, "", "")
		require.NoError(t, err)
		require.NotNil(t, req.Proxy)
		assert.Empty(t, req.Proxy.User)
		assert.Empty(t, req.Proxy.Pass)
	})

	t.Run("environment supplies basic auth", func(t *testing.T) {
		environ := env.Snapshot{BasicUser: "env-user", BasicPass: "env-pass"}
		req, err := Resolve(newFlags(t, "--url", "https://example.com"), environ, "", "")
		require.NoError(t, err)
		require.NotNil(t, req.BasicAuth)
		assert.Equal(t, "env-user", req.BasicAuth.User)
		assert.Equal(t, "env-pass", req.BasicAuth.Pass)
	})
}

func TestPresets(t *testing.T) {
	t.Run("document order with details", func(t *testing.T) {
		path := writeConfig(t, `
[preset.zeta]
url = "https://example.com/z"
method = "post"

[preset.alpha]
url = "https://example.com/a"

[preset.beta]
timeout = 5
`)
		summaries, err := Presets(path)
		require.NoError(t, err)
		require.Len(t, summaries, 3)
		assert.Equal(t, PresetSummary{Name: "zeta", URL: "https://example.com/z", Method: "post"}, summaries[0])
		assert.Equal(t, PresetSummary{Name: "alpha", URL: "https://example.com/a"}, summaries[1])
		assert.Equal(t, PresetSummary{Name: "beta"}, summaries[2])
	})

	t.Run("quoted names come after scanned ones", func(t *testing.T) {
		path := writeConfig(t, `
[preset."zz-quoted"]
url = "https://example.com/q"

[preset.plain]
url = "https://example.com/p"
`)
		summaries, err := Presets(path)
		require.NoError(t, err)
		require.Len(t, summaries, 2)
		assert.Equal(t, "plain", summaries[0].Name)
		assert.Equal(t, "zz-quoted", summaries[1].Name)
	})

	t.Run("no presets yields empty list", func(t *testing.T) {
		path := writeConfig(t, "# empty\n")
		summaries, err := Presets(path)
		require.NoError(t, err)
		assert.Empty(t, summaries)
	})

	t.Run("unreadable file", func(t *testing.T) {
		_, err := Presets(filepath.Join(t.TempDir(), "missing.toml"))
		require.Error(t, err)
		assert.True(t, IsKind(err, KindInvalidPreset))
	})
}
