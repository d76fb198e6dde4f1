package tokensource

const (
	// LoginPath is appended to the meshStack base URL to form the token endpoint.
	LoginPath = "/api/login"

	// MaxRedirects is the number of redirects followed before giving up.
	MaxRedirects = 5

	grantTypeClientCredentials = "client_credentials"
	contentTypeForm            = "application/x-www-form-urlencoded"
)
