package main

import (
	"context"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
	mflash "github.com/goliatone/go-router/middleware/flash"
	"github.com/goliatone/go-sweetshop/middleware/csrf"
	"github.com/goliatone/go-sweetshop/web"
	"github.com/spf13/cobra"
)

func newServeCmd(app func() *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web front end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			if addr != "" {
				a.config.Server.Address = addr
			}

			srv, err := a.httpServer()
			if err != nil {
				return err
			}

			logger := a.GetLogger("server")
			logger.Info("serving sweet shop", "address", a.config.Server.Address, "api", a.config.Client.GetAPIBaseURL())

			srv.Serve(a.config.Server.Address)

			sig := WaitExitSignal()
			logger.Info("shutting down", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, defaults to "+defaultAddress)
	return cmd
}

const (
	staticPrefix = "/static"
	flashCookie  = "sweetshop_flash"
)

// httpServer wires the fiber adapter: flash, browser id, CSRF, the
// per request session and the front end routes. Unknown paths redirect
// home.
func (a *App) httpServer() (router.Server[*fiber.App], error) {
	var override fs.FS
	if dir := a.config.Server.ViewsDir; dir != "" {
		override = os.DirFS(dir)
	}

	engine, err := web.NewViewEngine(override, a.config.Server.ReloadViews)
	if err != nil {
		return nil, err
	}

	srv := router.NewFiberAdapter(func(f *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			StrictRouting:     false,
			PassLocalsToViews: true,
			Views:             engine,
		}))
	})

	cfg := a.config.Client
	r := srv.Router()
	r.WithLogger(a.GetLogger("router"))

	// handlers flash through the package default, the middleware must read
	// the same cookie
	flash.Default(flash.Config{
		Name:     flashCookie,
		Path:     "/",
		HTTPOnly: true,
		Secure:   cfg.GetSecureCookies(),
	})
	r.Use(mflash.New(mflash.Config{Flash: flash.DefaultFlash}))
	r.Use(web.BrowserID(cfg))
	r.Use(csrf.New(csrf.Config{
		SecureKey: a.config.Server.csrfKey(),
	}))
	r.Use(web.SessionMiddleware(a.client, cfg, a.GetLogger("session"), web.SkipPrefix(staticPrefix)))

	r.Static(staticPrefix, ".", router.Static{
		FS:   web.PublicFS(),
		Root: ".",
	})

	controller := web.RegisterRoutes(r,
		web.WithControllerLogger(a.GetLogger("web")),
		web.WithControllerConfig(cfg),
		web.WithControllerDebug(a.config.Debug),
	)
	csrf.RegisterRoutes(r)

	// static routes are only added on Init, the fallback must come after them
	srv.Init()
	web.RegisterFallback(r, controller.Routes)

	return srv, nil
}

// WaitExitSignal blocks until the process is asked to stop.
func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
