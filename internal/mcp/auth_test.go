package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serve(h http.Handler, authz, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "http://example.com/mcp", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	if remote != "" {
		req.RemoteAddr = remote
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestParseAuthTokens(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ParseAuthTokens(" a, ,b ,"))
	assert.Empty(t, ParseAuthTokens("  "))
}

func TestBearerAuthRejectsMissingOrBadToken(t *testing.T) {
	h := wrapHTTPHandler(okHandler(), HTTPHandlerConfig{AuthTokens: []string{"secret"}, RateLimitPerMin: 60})

	rec := serve(h, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")

	assert.Equal(t, http.StatusUnauthorized, serve(h, "Basic c2VjcmV0", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(h, "Bearer wrong", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer ", "").Code)
}

func TestBearerAuthAcceptsAnyConfiguredToken(t *testing.T) {
	h := wrapHTTPHandler(okHandler(), HTTPHandlerConfig{AuthTokens: []string{"old", "new"}, RateLimitPerMin: 60})

	assert.Equal(t, http.StatusOK, serve(h, "Bearer old", "").Code)
	assert.Equal(t, http.StatusOK, serve(h, "bearer new", "").Code)
}

func TestBearerAuthWithoutTokensRejectsEverything(t *testing.T) {
	h := wrapHTTPHandler(okHandler(), HTTPHandlerConfig{})
	assert.Equal(t, http.StatusForbidden, serve(h, "Bearer anything", "").Code)
}

func TestRateLimitPerClient(t *testing.T) {
	h := withRateLimit(okHandler(), newClientLimiter(1, time.Now))

	assert.Equal(t, http.StatusOK, serve(h, "Bearer a", "127.0.0.1:1234").Code)

	rec := serve(h, "Bearer a", "10.0.0.9:4321")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, serve(h, "Bearer b", "127.0.0.1:1234").Code)
}

func TestClientLimiterRefillsAndEvicts(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newClientLimiter(60, func() time.Time { return now })

	for i := 0; i < 60; i++ {
		_, ok := l.Allow("k")
		require.True(t, ok, "request %d", i)
	}
	wait, ok := l.Allow("k")
	require.False(t, ok)
	assert.LessOrEqual(t, wait, time.Second)

	now = now.Add(time.Second)
	_, ok = l.Allow("k")
	assert.True(t, ok)

	now = now.Add(limiterIdleTTL + time.Minute)
	_, ok = l.Allow("other")
	assert.True(t, ok)
	assert.Equal(t, 1, l.size())
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "ip:192.0.2.1", clientKey(req))

	req.Header.Set("Authorization", "Bearer secret")
	key := clientKey(req)
	assert.Contains(t, key, "tok:")
	assert.NotContains(t, key, "secret")
}

func TestHTTPTransportServesToolsWithToken(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv, _ := testServer()
	httpSrv := httptest.NewServer(NewHTTPTransportHandler(srv, HTTPHandlerConfig{AuthTokens: []string{"secret"}, RateLimitPerMin: 600}))
	defer httpSrv.Close()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "mcp-http-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{
		Endpoint:   httpSrv.URL,
		HTTPClient: &http.Client{Transport: &authRoundTripper{token: "secret"}},
	}, nil)
	require.NoError(t, err)
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "questionnaire_get", Arguments: map[string]any{}})
	require.NoError(t, err)
	assert.False(t, res.IsError, "unexpected tool error: %+v", res.Content)
}
