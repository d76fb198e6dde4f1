package tokensource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// loginRequest captures what the stub endpoint received.
type loginRequest struct {
	method      string
	path        string
	contentType string
	body        string
}

// newLoginServer starts a stub login endpoint replying with status and body.
func newLoginServer(t *testing.T, status int, body string) (*httptest.Server, *loginRequest) {
	t.Helper()
	got := &loginRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("reading body: %v", err)
		}
		got.method = r.Method
		got.path = r.URL.Path
		got.contentType = r.Header.Get("Content-Type")
		got.body = string(raw)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name         string
		respBody     string
		expectToken  string
		expectType   string
		expectExpiry bool
	}{
		{
			name:        "access token only",
			respBody:    `{"access_token":"tok-1"}`,
			expectToken: "tok-1",
		},
		{
			name:         "full token response",
			respBody:     `{"access_token":"T","token_type":"Bearer","expires_in":3600}`,
			expectToken:  "T",
			expectType:   "Bearer",
			expectExpiry: true,
		},
		{
			name:        "missing access token is not validated",
			respBody:    `{"token_type":"Bearer"}`,
			expectToken: "",
			expectType:  "Bearer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, got := newLoginServer(t, http.StatusOK, tt.respBody)

			token, err := NewAuthenticator(srv.URL).Authenticate(context.Background(), "abc", "xyz")
			require.NoError(t, err)

			assert.Equal(t, tt.expectToken, token.AccessToken)
			assert.Equal(t, tt.expectType, token.TokenType)
			assert.Equal(t, tt.expectExpiry, !token.Expiry.IsZero())
			if tt.expectExpiry {
				assert.WithinDuration(t, time.Now().Add(time.Hour), token.Expiry, time.Minute)
			}

			assert.Equal(t, http.MethodPost, got.method)
			assert.Equal(t, "/api/login", got.path)
			assert.Equal(t, "application/x-www-form-urlencoded", got.contentType)
			assert.Equal(t, "grant_type=client_credentials&client_id=abc&client_secret=xyz", got.body)
		})
	}
}

func TestAuthenticateTraceIncludesTokenDetails(t *testing.T) {
	srv, _ := newLoginServer(t, http.StatusOK, `{"access_token":"T","token_type":"Bearer","expires_in":60}`)

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	_, err := NewAuthenticator(srv.URL).Authenticate(context.Background(), "abc", "xyz")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "token=T")
	assert.Contains(t, out, "token_type=Bearer")
	assert.Contains(t, out, "expiry=")
}

func TestAuthenticateLiteralInterpolation(t *testing.T) {
	srv, got := newLoginServer(t, http.StatusOK, `{"access_token":"T"}`)

	_, err := NewAuthenticator(srv.URL).Authenticate(context.Background(), "id with space", "a&b=c%2F+")
	require.NoError(t, err)

	// No percent-encoding is applied; the secret leaks into extra form fields
	assert.Equal(t, "grant_type=client_credentials&client_id=id with space&client_secret=a&b=c%2F+", got.body)
}

func TestAuthenticateTransportError(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		expectCode string
	}{
		{name: "invalid client", status: http.StatusUnauthorized, body: `{"error":"invalid_client"}`, expectCode: "invalid_client"},
		{name: "server error with text body", status: http.StatusInternalServerError, body: "boom", expectCode: ""},
		{name: "forbidden empty body", status: http.StatusForbidden, body: "", expectCode: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newLoginServer(t, tt.status, tt.body)

			token, err := NewAuthenticator(srv.URL).Authenticate(context.Background(), "abc", "xyz")
			require.Error(t, err)
			assert.Nil(t, token)

			var te *TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.status, te.StatusCode)
			assert.Equal(t, tt.body, string(te.Body))
			assert.Contains(t, err.Error(), strconv.Itoa(tt.status))

			var re *oauth2.RetrieveError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.expectCode, re.ErrorCode)
			assert.Equal(t, tt.status, re.Response.StatusCode)
		})
	}
}

func TestAuthenticateNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	_, err := NewAuthenticator(baseURL).Authenticate(context.Background(), "abc", "xyz")
	require.Error(t, err)

	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, baseURL+"/api/login", ne.URL)

	var te *TransportError
	assert.False(t, errors.As(err, &te))
}

func TestAuthenticateCancelledContext(t *testing.T) {
	srv, _ := newLoginServer(t, http.StatusOK, `{"access_token":"T"}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAuthenticator(srv.URL).Authenticate(ctx, "abc", "xyz")
	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAuthenticateDecodeError(t *testing.T) {
	srv, _ := newLoginServer(t, http.StatusOK, "<html>login</html>")

	_, err := NewAuthenticator(srv.URL).Authenticate(context.Background(), "abc", "xyz")
	var de *DecodeError
	require.ErrorAs(t, err, &de)
}

// newRedirectServer redirects /api/login through hops 307 redirects before answering.
func newRedirectServer(t *testing.T, hops int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		if hops == 0 {
			_, _ = io.WriteString(w, `{"access_token":"redirected"}`)
			return
		}
		http.Redirect(w, r, "/hop/1", http.StatusTemporaryRedirect)
	})
	mux.HandleFunc("/hop/{n}", func(w http.ResponseWriter, r *http.Request) {
		n, _ := strconv.Atoi(r.PathValue("n"))
		if n < hops {
			http.Redirect(w, r, fmt.Sprintf("/hop/%d", n+1), http.StatusTemporaryRedirect)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "client_secret=xyz") {
			http.Error(w, "body lost", http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, `{"access_token":"redirected"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAuthenticateRedirects(t *testing.T) {
	t.Run("follows up to five redirects", func(t *testing.T) {
		srv := newRedirectServer(t, MaxRedirects)

		token, err := NewAuthenticator(srv.URL).Authenticate(context.Background(), "abc", "xyz")
		require.NoError(t, err)
		assert.Equal(t, "redirected", token.AccessToken)
	})

	t.Run("sixth redirect fails", func(t *testing.T) {
		srv := newRedirectServer(t, MaxRedirects+1)

		_, err := NewAuthenticator(srv.URL).Authenticate(context.Background(), "abc", "xyz")
		var ne *NetworkError
		require.ErrorAs(t, err, &ne)
		assert.Contains(t, err.Error(), "stopped after 5 redirects")
	})
}

type countingTransport struct {
	calls int
	base  http.RoundTripper
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.calls++
	return c.base.RoundTrip(req)
}

func TestAuthenticatorOptions(t *testing.T) {
	srv, _ := newLoginServer(t, http.StatusOK, `{"access_token":"T"}`)

	t.Run("custom transport", func(t *testing.T) {
		rt := &countingTransport{base: http.DefaultTransport}
		_, err := NewAuthenticator(srv.URL, WithTransport(rt)).Authenticate(context.Background(), "abc", "xyz")
		require.NoError(t, err)
		assert.Equal(t, 1, rt.calls)
	})

	t.Run("custom client keeps caller untouched", func(t *testing.T) {
		rt := &countingTransport{base: http.DefaultTransport}
		client := &http.Client{Transport: rt}
		_, err := NewAuthenticator(srv.URL, WithHTTPClient(client)).Authenticate(context.Background(), "abc", "xyz")
		require.NoError(t, err)
		assert.Equal(t, 1, rt.calls)
		assert.Nil(t, client.CheckRedirect)
	})

	t.Run("token url concatenates literally", func(t *testing.T) {
		assert.Equal(t, "https://host/api/login", NewAuthenticator("https://host").TokenURL())
		assert.Equal(t, "https://host//api/login", NewAuthenticator("https://host/").TokenURL())
	})
}
