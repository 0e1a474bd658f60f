package main

import (
	"context"
	"fmt"
	"io"

	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-sweetshop"
	"github.com/goliatone/go-sweetshop/storage/filestore"
	"github.com/joho/godotenv"
)

// App holds what every command needs. Commands build their own session
// over the credential store.
type App struct {
	config *AppConfig
	logger *glog.BaseLogger
	client *sweetshop.Client
	store  sweetshop.Storage
	out    io.Writer
	json   bool
}

// GetLogger returns a named logger.
func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

// Config returns the loaded configuration.
func (a *App) Config() *AppConfig {
	return a.config
}

func newLogger(debug bool) *glog.BaseLogger {
	level := glog.Info
	if debug {
		level = glog.Trace
	}
	return glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(level),
		glog.WithName("app"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)
}

// loadConfig reads .env, then the go-config sources, then applies defaults.
func loadConfig(ctx context.Context, lgr *glog.BaseLogger, envFiles ...string) (*AppConfig, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		lgr.GetLogger("config").Debug("no .env file loaded", "error", err)
	}

	cfg := gconfig.New(DefaultConfig()).
		WithLogger(lgr.GetLogger("config"))

	if err := cfg.Load(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "unable to load configuration")
	}

	raw := cfg.Raw()
	raw.applyDefaults()
	return raw, nil
}

// overrides are the persistent flags that win over loaded configuration.
type overrides struct {
	apiURL      string
	credentials string
	debug       bool
	json        bool
}

func (o overrides) apply(cfg *AppConfig) {
	if o.apiURL != "" {
		cfg.Client.APIBaseURL = o.apiURL
	}
	if o.credentials != "" {
		cfg.Credentials = o.credentials
	}
	if o.debug {
		cfg.Debug = true
	}
}

// newApp wires the client and the credential store for cfg.
func newApp(cfg *AppConfig, lgr *glog.BaseLogger, out io.Writer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid configuration")
	}

	path := cfg.Credentials
	if path == "" {
		p, err := filestore.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	app := &App{
		config: cfg,
		logger: lgr,
		store:  filestore.New(path),
		out:    out,
	}

	app.client = sweetshop.NewClient(cfg.Client,
		sweetshop.WithClientLogger(app.GetLogger("api")),
		sweetshop.WithClientDebug(cfg.Debug),
	)

	return app, nil
}

// session returns an initialized session over the credential store.
func (a *App) session(ctx context.Context) (*sweetshop.Session, *sweetshop.Client) {
	bound := a.client.Bind(a.store)
	s := sweetshop.NewSession(
		sweetshop.NewAuthService(bound),
		a.store,
		sweetshop.WithSessionLogger(a.GetLogger("session")),
		sweetshop.WithSessionListener(sweetshop.LogListener(a.GetLogger("session"))),
	)
	s.Initialize(ctx)
	return s, bound
}

// ErrNotLoggedIn is returned by commands that need credentials.
var ErrNotLoggedIn = errors.New("not logged in, run `sweetshop login` first", errors.CategoryAuth).
	WithTextCode("SWEETSHOP_CLI_NOT_LOGGED_IN").
	WithCode(errors.CodeUnauthorized)

// ErrAlreadyLoggedIn is returned by login and register while a session is active.
var ErrAlreadyLoggedIn = errors.New("already logged in, run `sweetshop logout` first", errors.CategoryConflict).
	WithTextCode("SWEETSHOP_CLI_LOGGED_IN").
	WithCode(errors.CodeConflict)

// guard applies the route guard to a command of class.
func guard(s *sweetshop.Session, class sweetshop.RouteClass) error {
	switch sweetshop.Decide(s.State(), class) {
	case sweetshop.OutcomeRedirectLogin:
		return ErrNotLoggedIn
	case sweetshop.OutcomeRedirectLanding:
		if identity := s.Identity(); identity != nil {
			return ErrAlreadyLoggedIn.Clone().WithMetadata(map[string]any{"email": identity.Email})
		}
		return ErrAlreadyLoggedIn
	case sweetshop.OutcomeLoading:
		return fmt.Errorf("session is still initializing")
	default:
		return nil
	}
}
