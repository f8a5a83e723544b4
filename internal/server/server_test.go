package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/intellimind/internal/api"
	apierrors "github.com/diogo/intellimind/internal/errors"
)

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func decode(t *testing.T, resp *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	return out
}

func TestChat_KeywordReply(t *testing.T) {
	s := New(Options{})

	resp := postJSON(t, s, "/chat", `{"message":"Tell me about Sentient"}`)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))
	body := decode(t, resp)
	assert.Equal(t, StatusSuccess, body["status"])
	assert.Contains(t, body["response"], "Sentient's framework provides")
	assert.Equal(t, 2, s.History().Len())
}

func TestChat_RejectsBlankMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", `{"message":""}`, EmptyMessageError},
		{"whitespace", `{"message":"  \n\t "}`, EmptyMessageError},
		{"missing field", `{}`, EmptyMessageError},
		{"not json", `hello`, "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Options{})
			resp := postJSON(t, s, "/chat", tt.body)

			assert.Equal(t, http.StatusBadRequest, resp.Code)
			body := decode(t, resp)
			assert.Equal(t, StatusError, body["status"])
			assert.Equal(t, tt.want, body["error"])
			assert.Zero(t, s.History().Len())
		})
	}
}

func TestReply(t *testing.T) {
	tests := []struct {
		message string
		prefix  string
	}{
		{"Hello there", "Hello! I'm IntelliMind Assistant"},
		{"HI", "Hello! I'm IntelliMind Assistant"},
		{"is this on?", "Hello! I'm IntelliMind Assistant"},
		{"what is sentient", "Sentient's framework provides"},
		{"FireworksAI?", "FireworksAI provides powerful"},
		{"your framework", "This app uses Flask"},
		{"compare to Next.js", "Great question!"},
		{"nextjs", "Great question!"},
		{"help me", "I can help you understand"},
		{"test", "Great! This demo is working"},
		{"ok", "I understand you said: 'ok'."},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			got := Reply(tt.message)
			assert.True(t, strings.HasPrefix(got, tt.prefix), "Reply(%q) = %q", tt.message, got)
		})
	}
}

func TestReply_EchoesOriginalCase(t *testing.T) {
	got := Reply("Good Morning")
	assert.Equal(t, "I understand you said: 'Good Morning'. This is a demo version of IntelliMind Assistant. To get full AI capabilities, please install FireworksAI and configure your API key. The interface is working perfectly!", got)
}

func TestClear(t *testing.T) {
	s := New(Options{})
	postJSON(t, s, "/chat", `{"message":"test"}`)
	require.Equal(t, 2, s.History().Len())

	resp := postJSON(t, s, "/clear", ``)

	require.Equal(t, http.StatusOK, resp.Code)
	body := decode(t, resp)
	assert.Equal(t, StatusSuccess, body["status"])
	assert.Equal(t, "Conversation cleared", body["message"])
	assert.Zero(t, s.History().Len())
}

func TestHealth(t *testing.T) {
	s := New(Options{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()

	s.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	body := decode(t, resp)
	assert.Equal(t, StatusHealthy, body["status"])
	assert.Equal(t, AppName, body["app"])
}

func TestRequestIDHeader(t *testing.T) {
	s := New(Options{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	resp := httptest.NewRecorder()

	s.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	s := New(Options{})
	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	resp := httptest.NewRecorder()

	s.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
}

func TestRateLimit(t *testing.T) {
	s := New(Options{Limit: 0.001, Burst: 2})

	for i := 0; i < 2; i++ {
		resp := postJSON(t, s, "/chat", `{"message":"hi"}`)
		require.Equal(t, http.StatusOK, resp.Code, "request %d", i)
	}

	resp := postJSON(t, s, "/chat", `{"message":"hi"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "1", resp.Header().Get("Retry-After"))
	assert.Equal(t, "2", resp.Header().Get("X-RateLimit-Limit"))

	// other endpoints are not limited
	health := httptest.NewRecorder()
	s.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestRateLimiter_PerClientAndSweep(t *testing.T) {
	l := NewRateLimiter(0.001, 1)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))
	assert.Equal(t, 2, l.Len())

	now = now.Add(limiterExpiry + 2*time.Minute)
	assert.True(t, l.Allow("10.0.0.3"))
	assert.Equal(t, 1, l.Len())
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:51234"
	assert.Equal(t, "192.0.2.7", clientKey(req))

	req.RemoteAddr = "192.0.2.8"
	assert.Equal(t, "192.0.2.8", clientKey(req))
}

func TestMetricsEndpoint(t *testing.T) {
	s := New(Options{})
	postJSON(t, s, "/chat", `{"message":"hello"}`)
	postJSON(t, s, "/chat", `{"message":" "}`)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	s.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	out := resp.Body.String()
	assert.Contains(t, out, `intellimind_http_requests_total{code="200",method="POST",route="/chat"} 1`)
	assert.Contains(t, out, `intellimind_http_requests_total{code="400",method="POST",route="/chat"} 1`)
	assert.Contains(t, out, "intellimind_chat_empty_messages_total 1")
	assert.Contains(t, out, "intellimind_http_request_duration_seconds_bucket")
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := New(Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/health"
	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get(url)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestListenAndServe_BadAddress(t *testing.T) {
	s := New(Options{})
	err := s.ListenAndServe(context.Background(), "256.0.0.1:bad")
	assert.Error(t, err)
}

// handlerDoer routes fhttp requests straight into an http.Handler
type handlerDoer struct {
	h http.Handler
}

func (d handlerDoer) Do(req *fhttp.Request) (*fhttp.Response, error) {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
	}
	r := httptest.NewRequest(req.Method, req.URL.String(), bytes.NewReader(body))
	for k, v := range req.Header {
		r.Header[k] = v
	}
	rec := httptest.NewRecorder()
	d.h.ServeHTTP(rec, r)

	return &fhttp.Response{
		StatusCode: rec.Code,
		Header:     fhttp.Header(rec.Header()),
		Body:       io.NopCloser(bytes.NewReader(rec.Body.Bytes())),
	}, nil
}

func TestClientAgainstServer(t *testing.T) {
	s := New(Options{})
	client, err := api.NewClient("http://demo.test", api.WithHTTPClient(handlerDoer{h: s}))
	require.NoError(t, err)
	ctx := context.Background()

	reply, err := client.Chat(ctx, "hello")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reply, "Hello! I'm IntelliMind Assistant"))

	// blank input never reaches the server
	_, err = client.Chat(ctx, "   ")
	assert.ErrorIs(t, err, apierrors.ErrEmptyInput)
	assert.Equal(t, 2, s.History().Len())

	require.NoError(t, client.Clear(ctx))
	assert.Zero(t, s.History().Len())

	status, err := client.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusHealthy, status)
}
