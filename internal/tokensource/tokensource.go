package tokensource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Option configures an Authenticator.
type Option func(*authenticatorConfig)

// authenticatorConfig holds configuration for NewAuthenticator.
type authenticatorConfig struct {
	httpClient    *http.Client
	baseTransport http.RoundTripper
}

// WithHTTPClient sets the HTTP client used for the login request.
// A nil CheckRedirect is replaced by the MaxRedirects policy.
func WithHTTPClient(client *http.Client) Option {
	return func(c *authenticatorConfig) {
		c.httpClient = client
	}
}

// WithTransport sets a custom base transport for the login request.
// If not provided, http.DefaultTransport is used.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *authenticatorConfig) {
		c.baseTransport = transport
	}
}

// Authenticator exchanges client credentials for a meshStack bearer token.
type Authenticator struct {
	baseURL    string
	httpClient *http.Client
}

// NewAuthenticator creates an Authenticator for the meshStack instance at baseURL.
// No request timeout is configured; cancellation is driven by the caller's context.
func NewAuthenticator(baseURL string, opts ...Option) *Authenticator {
	cfg := &authenticatorConfig{
		baseTransport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var client http.Client
	if cfg.httpClient != nil {
		client = *cfg.httpClient
	} else {
		client.Transport = cfg.baseTransport
	}
	if client.CheckRedirect == nil {
		client.CheckRedirect = limitRedirects
	}

	return &Authenticator{
		baseURL:    baseURL,
		httpClient: &client,
	}
}

// limitRedirects stops after MaxRedirects hops. Go switches POST to GET on
// 301/302/303 and replays the body on 307/308.
func limitRedirects(_ *http.Request, via []*http.Request) error {
	if len(via) > MaxRedirects {
		return fmt.Errorf("stopped after %d redirects", MaxRedirects)
	}
	return nil
}

// TokenURL returns the login endpoint for the configured base URL.
func (a *Authenticator) TokenURL() string {
	return a.baseURL + LoginPath
}

// tokenResponse is the subset of the login response we read.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// errorResponse holds the RFC 6749 error fields of a failed login.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorURI         string `json:"error_uri"`
}

// Authenticate performs a single client-credentials login.
// The returned token's AccessToken is empty if the response did not carry one.
func (a *Authenticator) Authenticate(ctx context.Context, clientID, secret string) (*oauth2.Token, error) {
	// Sensitive values are traced at debug level; existing pipelines rely on this output
	slog.DebugContext(ctx, "client id", "client_id", clientID)
	slog.DebugContext(ctx, "key secret", "key_secret", secret)
	slog.DebugContext(ctx, "base url", "base_url", a.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.TokenURL(), strings.NewReader(formBody(clientID, secret)))
	if err != nil {
		return nil, fmt.Errorf("creating login request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeForm)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return nil, &NetworkError{Op: urlErr.Op, URL: urlErr.URL, Err: urlErr.Err}
		}
		return nil, &NetworkError{Op: http.MethodPost, URL: a.TokenURL(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: "read", URL: a.TokenURL(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newTransportError(resp, body)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, &DecodeError{Err: err}
	}

	token := &oauth2.Token{
		AccessToken:  tr.AccessToken,
		TokenType:    tr.TokenType,
		RefreshToken: tr.RefreshToken,
	}
	if tr.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	slog.DebugContext(ctx, "token", "token", token.AccessToken, "token_type", token.TokenType, "expiry", token.Expiry)

	return token, nil
}

// formBody builds the login form. Values are interpolated verbatim, without
// percent-encoding; reserved characters in a secret will corrupt the body.
func formBody(clientID, secret string) string {
	return "grant_type=" + grantTypeClientCredentials +
		"&client_id=" + clientID +
		"&client_secret=" + secret
}

func newTransportError(resp *http.Response, body []byte) *TransportError {
	retrieve := &oauth2.RetrieveError{
		Response: resp,
		Body:     body,
	}

	var er errorResponse
	if json.Unmarshal(body, &er) == nil {
		retrieve.ErrorCode = er.Error
		retrieve.ErrorDescription = er.ErrorDescription
		retrieve.ErrorURI = er.ErrorURI
	}

	return &TransportError{
		StatusCode: resp.StatusCode,
		Body:       body,
		Retrieve:   retrieve,
	}
}
