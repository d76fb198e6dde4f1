package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/meshcloud/meshstack-auth/internal/action"
	"github.com/meshcloud/meshstack-auth/internal/tokensource"
	"github.com/meshcloud/meshstack-auth/internal/tokenstore"
)

// OutputTokenFile is the step output carrying the token file path.
const OutputTokenFile = "token_file"

// State is a step of the login run.
type State string

const (
	StateStart          State = "Start"
	StateAuthenticating State = "Authenticating"
	StateAuthenticated  State = "Authenticated"
	StateAuthFailed     State = "AuthFailed"
	StatePersisting     State = "Persisting"
	StatePersisted      State = "Persisted"
	StatePersistFailed  State = "PersistFailed"
)

// App runs a single login: authenticate, persist the token file, publish its path.
type App struct {
	cfg           *Config
	host          action.Host
	authenticator *tokensource.Authenticator
	store         tokenstore.TokenStore
}

// New creates a new App instance. Options are passed to the Authenticator.
func New(cfg *Config, host action.Host, opts ...tokensource.Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if host == nil {
		return nil, fmt.Errorf("missing host")
	}

	store, err := tokenstore.NewFileStore(tokenstore.ResolveDir(cfg.Token.Dir))
	if err != nil {
		return nil, fmt.Errorf("failed to create token store: %w", err)
	}

	return &App{
		cfg:           cfg,
		host:          host,
		authenticator: tokensource.NewAuthenticator(cfg.Auth.BaseURL, opts...),
		store:         store,
	}, nil
}

// TokenFile returns the path the token file is written to.
func (a *App) TokenFile() string {
	return a.store.Path()
}

// Run performs the login. Failures are logged by class and returned; every
// failure is terminal and nothing is retried. The token_file output is only
// set once the file has been written and verified.
func (a *App) Run(ctx context.Context) error {
	enter(ctx, StateStart)

	enter(ctx, StateAuthenticating)
	token, err := a.authenticator.Authenticate(ctx, a.cfg.Auth.ClientID, a.cfg.Auth.KeySecret)
	if err != nil {
		logFailure(ctx, err)
		enter(ctx, StateAuthFailed)
		return fmt.Errorf("authentication failed: %w", err)
	}
	enter(ctx, StateAuthenticated)

	enter(ctx, StatePersisting)
	record := tokenstore.TokenRecord{
		Token:   token.AccessToken,
		BaseURL: a.cfg.Auth.BaseURL,
	}
	path, err := tokenstore.Persist(ctx, a.store, record)
	if err != nil {
		logFailure(ctx, err)
		enter(ctx, StatePersistFailed)
		return fmt.Errorf("persisting token failed: %w", err)
	}
	slog.DebugContext(ctx, "token file path", "path", path)

	slog.InfoContext(ctx, "Login was successful.")
	a.host.SetOutput(OutputTokenFile, path)
	enter(ctx, StatePersisted)

	return nil
}

func enter(ctx context.Context, s State) {
	slog.DebugContext(ctx, "login state", "state", string(s))
}
