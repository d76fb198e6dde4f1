// Package tokensource obtains a meshStack bearer token using the OAuth2
// client-credentials grant.
//
// meshStack's login endpoint deviates from a textbook OAuth2 token endpoint in a
// few ways that require custom handling instead of golang.org/x/oauth2/clientcredentials:
//   - The endpoint lives at {base_url}/api/login
//   - Client id and secret are interpolated into the form body verbatim, without
//     percent-encoding, matching the behavior existing pipelines depend on
//   - A response without access_token is not an error at this layer
//
// # Authenticating
//
//	auth := tokensource.NewAuthenticator("https://meshstack.example.com")
//	token, err := auth.Authenticate(ctx, clientID, secret)
//
// Failures are reported as *TransportError (non-2xx response received),
// *NetworkError (request could not complete) or *DecodeError (2xx with a body
// that is not JSON).
//
// # Custom Base Transport
//
// Configure a custom base transport (e.g., for proxies or custom CAs):
//
//	auth := tokensource.NewAuthenticator(baseURL, tokensource.WithTransport(customTransport))
package tokensource
