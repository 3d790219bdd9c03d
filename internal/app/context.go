// Package app wires a workspace into a ready-to-use coaching client: the
// local database, the session scope, the API client and one Root of stores.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"coachline/internal/api"
	"coachline/internal/cascade"
	"coachline/internal/config"
	"coachline/internal/db"
	"coachline/internal/domain"
	"coachline/internal/events"
	"coachline/internal/metrics"
	"coachline/internal/migrate"
	"coachline/internal/provider"
	"coachline/internal/sessionstore"
)

var ErrNotLoggedIn = errors.New("not logged in; run coach login")

// Env is everything one CLI invocation needs.
type Env struct {
	Workspace string
	Config    *config.Config
	Logger    zerolog.Logger
	DB        *sql.DB
	Scope     *sessionstore.SQLite
	Client    *api.Client
	Registry  *prometheus.Registry
	Root      *provider.Root
	Selector  *cascade.Selector
	Events    events.Writer
}

// Open prepares the workspace and restores the active session scope.
func Open(ctx context.Context, workspace string, cfg *config.Config, logger zerolog.Logger) (*Env, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if _, err := db.EnsureWorkspace(workspace); err != nil {
		return nil, err
	}
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return nil, err
	}
	if err := migrate.Migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	scope, err := sessionstore.CurrentOrBegin(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("session scope: %w", err)
	}

	reg := prometheus.NewRegistry()
	client := api.New(cfg.API.BaseURL)
	client.APIVersion = cfg.API.Version
	client.Timeout = cfg.API.Timeout
	client.HTTPClient.Timeout = cfg.API.Timeout
	client.Logger = logger.With().Str("component", "api").Logger()
	client.Metrics = metrics.NewCollector(reg)

	e := &Env{
		Workspace: workspace,
		Config:    cfg,
		Logger:    logger,
		DB:        conn,
		Scope:     scope,
		Client:    client,
		Registry:  reg,
		Events:    events.Writer{DB: conn},
	}
	e.mount(ctx)
	if cookies := e.Root.Auth.HTTPCookies(); len(cookies) > 0 {
		if err := client.RestoreSessionCookies(cookies); err != nil {
			logger.Warn().Err(err).Msg("restore session cookies")
		}
	}
	return e, nil
}

func (e *Env) mount(ctx context.Context) {
	e.Root = provider.NewRoot(ctx, e.Scope, e.Logger)
	e.Selector = cascade.New(e.Root, e.Client, e.Logger)
}

// Context returns ctx carrying the env's Root.
func (e *Env) Context(ctx context.Context) context.Context {
	return provider.WithRoot(ctx, e.Root)
}

// Login authenticates and starts a fresh session scope for the user.
func (e *Env) Login(ctx context.Context, email, password string) (domain.UserSession, error) {
	user, err := e.Client.Login(ctx, email, password)
	if err != nil {
		return domain.UserSession{}, err
	}
	e.Selector.Close()
	scope, err := sessionstore.Begin(ctx, e.DB, user.ID)
	if err != nil {
		return domain.UserSession{}, fmt.Errorf("begin session scope: %w", err)
	}
	if err := e.Scope.End(ctx); err != nil {
		e.Logger.Warn().Err(err).Msg("drop previous session scope")
	}
	e.Scope = scope
	e.mount(ctx)
	e.Root.Auth.Login(user, e.Client.SessionCookies())
	e.Logger.Info().Str("user_id", user.ID).Msg("logged in")
	e.Record(ctx, "auth.login", "user", user.ID, events.EventPayload{"email": user.Email})
	return user, nil
}

// Logout ends the backend session and wipes every store. Local state is
// cleared even when the backend call fails.
func (e *Env) Logout(ctx context.Context) error {
	userID := e.Root.Auth.UserID()
	callErr := e.Client.Logout(ctx)
	if callErr != nil {
		e.Logger.Warn().Err(callErr).Msg("backend logout")
	}
	e.Selector.Close()
	e.Root.ResetAll()
	if err := e.Scope.End(ctx); err != nil {
		return fmt.Errorf("end session scope: %w", err)
	}
	scope, err := sessionstore.Begin(ctx, e.DB, "")
	if err != nil {
		return err
	}
	e.Scope = scope
	e.mount(ctx)
	e.Record(ctx, "auth.logout", "user", userID, nil)
	return callErr
}

// Record appends to the activity log. Failures are logged only.
func (e *Env) Record(ctx context.Context, evtType, entityKind string, entityID domain.ID, payload events.EventPayload) {
	userID := ""
	if e.Root != nil {
		userID = e.Root.Auth.UserID()
	}
	if err := e.Events.Append(ctx, evtType, userID, entityKind, entityID, payload); err != nil {
		e.Logger.Warn().Err(err).Str("type", evtType).Msg("record event")
	}
}

// RequireLogin fails unless a user is signed in.
func (e *Env) RequireLogin() (domain.UserSession, error) {
	if !e.Root.Auth.IsLoggedIn() {
		return domain.UserSession{}, ErrNotLoggedIn
	}
	return e.Root.Auth.UserSession(), nil
}

// Close waits for outstanding fetches, writes metrics and releases the database.
func (e *Env) Close() error {
	e.Selector.Wait()
	e.Selector.Close()
	var errs []error
	if path := e.Config.Metrics.Textfile; path != "" {
		if err := metrics.WriteTextfile(path, e.Registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if err := e.DB.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
