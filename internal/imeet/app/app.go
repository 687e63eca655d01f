package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aussiebroadwan/imeet/pkg/auth"
	"github.com/aussiebroadwan/imeet/pkg/imeetsdk"
	"github.com/aussiebroadwan/imeet/pkg/session"
	"github.com/aussiebroadwan/imeet/pkg/session/drivers/memory"
	redisstore "github.com/aussiebroadwan/imeet/pkg/session/drivers/redis"
	"github.com/aussiebroadwan/imeet/pkg/session/drivers/sqlite"
	"github.com/aussiebroadwan/imeet/pkg/slogx"
	"github.com/aussiebroadwan/imeet/pkg/statusmsg"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion is overridden at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the session store, the backend client and the auth
// reconciler behind the imeet command.
type Application struct {
	cfg    Config
	logger *slog.Logger

	store   session.Store
	client  *imeetsdk.SDKClient
	service *auth.Service
	msgs    *statusmsg.Localizer

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// Option configures an Application.
type Option func(*Application)

// WithIO replaces the standard streams.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(app *Application) {
		app.stdin, app.stdout, app.stderr = stdin, stdout, stderr
	}
}

// WithStore uses store instead of the configured driver.
func WithStore(store session.Store) Option {
	return func(app *Application) { app.store = store }
}

// New creates an Application with all dependencies initialised.
func New(cfg Config, opts ...Option) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg:    cfg,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(app)
	}

	app.logger = slogx.New(slogx.Config{
		Service: "imeet",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  app.stderr,
	})
	app.msgs = statusmsg.New(cfg.Locale)

	if app.store == nil {
		store, err := app.openStore()
		if err != nil {
			return nil, err
		}
		app.store = store
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()
	jar, err := session.NewCookieJar(ctx, app.store, app.logger)
	if err != nil {
		_ = app.store.Close()
		return nil, fmt.Errorf("failed to load session cookies: %w", err)
	}

	app.client = imeetsdk.NewSDKClient(cfg.APIBaseURL,
		imeetsdk.WithLogger(app.logger),
		imeetsdk.WithRateLimit(cfg.RateLimit, 1),
		imeetsdk.WithCookieJar(jar),
	)
	app.service = auth.NewService(app.client, session.NewCache(app.store, app.logger),
		auth.WithConfig(cfg.AuthConfig()),
		auth.WithSessionCookies(jar),
		auth.WithNavigator(auth.NavigatorFunc(app.navigate)),
		auth.WithLogger(app.logger),
	)

	return app, nil
}

// openStore opens the configured session driver.
func (app *Application) openStore() (session.Store, error) {
	switch app.cfg.Store {
	case StoreMemory:
		return memory.New(), nil

	case StoreSQLite:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.StorePath)
		var opts []sqlite.Option
		if app.cfg.StorePassphrase != "" {
			opts = append(opts, sqlite.WithPassphrase(app.cfg.StorePassphrase))
		}
		store, err := sqlite.NewStore(dsn, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to open session database: %w", err)
		}
		app.logger.Debug("session store opened", "driver", StoreSQLite, "path", app.cfg.StorePath, "sealed", store.Sealed())
		return store, nil

	case StoreRedis:
		rdb := redis.NewClient(&redis.Options{Addr: app.cfg.RedisAddr})
		store := redisstore.NewStore(rdb, app.cfg.RedisPrefix, app.cfg.RedisTTL)

		ctx, cancel := context.WithTimeout(context.Background(), app.cfg.RequestTimeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", app.cfg.RedisAddr, err)
		}
		app.logger.Debug("session store opened", "driver", StoreRedis, "addr", app.cfg.RedisAddr)
		return store, nil
	}
	return nil, fmt.Errorf("unknown session store %q", app.cfg.Store)
}

// navigate prints the redirect for the user to follow.
func (app *Application) navigate(url string) {
	fmt.Fprintf(app.stdout, "open: %s\n", url)
}

// Service returns the auth reconciler.
func (app *Application) Service() *auth.Service { return app.service }

// Localize renders err in the configured locale.
func (app *Application) Localize(err error) string { return app.msgs.Error(err) }

// Close releases the session store.
func (app *Application) Close() error {
	if err := app.store.Close(); err != nil {
		app.logger.Error("error closing session store", "error", err)
		return err
	}
	return nil
}
