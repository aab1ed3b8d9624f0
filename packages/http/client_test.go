package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	neturl "net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/hit/packages/core/config"
)

func newDescriptor(t *testing.T, method, rawURL string) *Descriptor {
	t.Helper()
	u, err := neturl.Parse(rawURL)
	require.NoError(t, err)
	return &Descriptor{Method: method, URL: u, Timeout: 5 * time.Second}
}

func TestClient_Send(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/test", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message": "hello"}`))
	}))
	defer server.Close()

	client := NewClient()
	resp, err := client.Send(context.Background(), newDescriptor(t, "GET", server.URL+"/test"))

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "200 OK", resp.Status)
	assert.Equal(t, "HTTP/1.1", resp.Proto)
	assert.Equal(t, "application/json", resp.Header("Content-Type"))
	assert.Contains(t, resp.BodyString(), "hello")
	assert.Greater(t, resp.Timing.TotalTime, time.Duration(0))
	assert.GreaterOrEqual(t, resp.Timing.TotalTime, resp.Timing.ResponseTime)
}

func TestClient_SendPost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, ContentTypeJSON, r.Header.Get("Content-Type"))
		body := make([]byte, r.ContentLength)
		_, _ = r.Body.Read(body)
		assert.Equal(t, `{"name": "test"}`, string(body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 123}`))
	}))
	defer server.Close()

	d := newDescriptor(t, "POST", server.URL)
	d.Body = []byte(`{"name": "test"}`)
	d.Headers = []config.Field{{Name: "Content-Type", Value: ContentTypeJSON}}

	client := NewClient()
	resp, err := client.Send(context.Background(), d)

	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)
	assert.Contains(t, resp.BodyString(), "123")
}

func TestClient_SendKeepsRepeatedHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, []string{"one", "again"}, r.Header.Values("X-First"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := newDescriptor(t, "GET", server.URL)
	d.Headers = []config.Field{
		{Name: "X-First", Value: "one"},
		{Name: "X-First", Value: "again"},
	}

	client := NewClient()
	resp, err := client.Send(context.Background(), d)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestClient_SendTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := newDescriptor(t, "GET", server.URL)
	d.Timeout = 50 * time.Millisecond

	client := NewClient()
	_, err := client.Send(context.Background(), d)

	require.Error(t, err)
	assert.Equal(t, FailureTimeout, ClassifyFailure(err))
}

func TestClient_SendConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient()
	_, err := client.Send(context.Background(), newDescriptor(t, "GET", url))

	require.Error(t, err)
	assert.Equal(t, FailureConnection, ClassifyFailure(err))
}

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"deadline exceeded", context.DeadlineExceeded, FailureTimeout},
		{"op error", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, FailureConnection},
		{"dns error", &net.DNSError{Err: "no such host", Name: "nowhere.invalid"}, FailureConnection},
		{"plain error", errors.New("mid-stream failure"), FailureOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyFailure(tt.err))
		})
	}
}

func TestFailureKind_String(t *testing.T) {
	assert.Equal(t, "timeout", FailureTimeout.String())
	assert.Equal(t, "connection error", FailureConnection.String())
	assert.Equal(t, "I/O error", FailureOther.String())
}

func TestResponse_Header(t *testing.T) {
	resp := &Response{Headers: []config.Field{
		{Name: "Content-Type", Value: "application/json"},
		{Name: "X-Request-Id", Value: "abc"},
	}}

	assert.Equal(t, "application/json", resp.Header("content-type"))
	assert.Equal(t, "abc", resp.Header("X-REQUEST-ID"))
	assert.Empty(t, resp.Header("Missing"))
}
