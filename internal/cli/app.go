package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/syncup/syncup-go/api"
	"github.com/syncup/syncup-go/internal/config"
	"github.com/syncup/syncup-go/syncauth"
	"github.com/syncup/syncup-go/syncauth/pgstore"
	"github.com/syncup/syncup-go/syncauth/redisstore"
)

// ErrNotSignedIn is returned by protected commands when the guard denies
var ErrNotSignedIn = errors.New("not signed in")

// App bundles the session components one command invocation needs.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   syncauth.Store
	Auth    *syncauth.Config
	Session *syncauth.Session
	Guard   *syncauth.Guard
	Client  *api.Client

	closers []func() error
}

// NewApp wires store, session, guard and API client from cfg. When store is
// nil it is opened from cfg.Session.Driver.
func NewApp(ctx context.Context, cfg *config.Config, store syncauth.Store, stderr io.Writer) (*App, error) {
	logger := newLogger(cfg.Logging, stderr)
	app := &App{Config: cfg, Logger: logger}

	if store == nil {
		opened, closer, err := openStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store = opened
		if closer != nil {
			app.closers = append(app.closers, closer)
		}
	}
	app.Store = store

	opts := []syncauth.ConfigOption{
		syncauth.WithStore(store),
		syncauth.WithLogger(logger),
		syncauth.WithLoginPath(cfg.Session.LoginPath),
		syncauth.WithPublicPathSegment(cfg.Session.PublicSegment),
	}
	if cfg.Session.PresenceOnly {
		opts = append(opts, syncauth.WithPresenceOnlyGuard())
	}
	authCfg, err := syncauth.NewConfig(opts...)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Auth = authCfg
	app.Session = syncauth.NewSession(authCfg)
	app.Guard = syncauth.NewGuard(authCfg, &loginHint{w: stderr})

	httpClient := &http.Client{
		Timeout:   cfg.API.Timeout(),
		Transport: syncauth.NewAuthenticator(authCfg).Transport(nil),
	}
	app.Client, err = api.NewClient(api.Config{
		BaseURL:       cfg.API.BaseURL,
		HTTPClient:    httpClient,
		Logger:        logger,
		Unauthorized:  app.Guard.Invalidate,
		PublicSegment: authCfg.PublicSegment(),
	})
	if err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// Close releases backend connections
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// RequireSession runs the guard and returns the allowed decision
func (a *App) RequireSession(ctx context.Context) (syncauth.Decision, error) {
	decision := a.Guard.Check(ctx)
	if !decision.Allowed {
		return decision, fmt.Errorf("%w (%s)", ErrNotSignedIn, decision.Reason)
	}
	return decision, nil
}

func openStore(ctx context.Context, cfg *config.Config) (syncauth.Store, func() error, error) {
	switch cfg.Session.Driver {
	case config.DriverMemory:
		return syncauth.NewMemoryStore(), nil, nil
	case config.DriverFile:
		s, err := syncauth.NewFileStore(cfg.Session.Path)
		return s, nil, err
	case config.DriverRedis:
		s, err := redisstore.New(ctx, redisstore.Options{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			Namespace: cfg.Session.Namespace,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.DriverPostgres:
		s, err := pgstore.Open(ctx, cfg.Postgres.DSN, cfg.Session.Namespace)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown session driver %q", cfg.Session.Driver)
	}
}
