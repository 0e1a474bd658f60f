// Command sweetshop is the terminal and web front end of the sweet shop
// inventory API.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goliatone/go-logger/glog"
	"github.com/spf13/cobra"
)

type configLoader func(ctx context.Context, lgr *glog.BaseLogger) (*AppConfig, error)

func defaultLoader(ctx context.Context, lgr *glog.BaseLogger) (*AppConfig, error) {
	return loadConfig(ctx, lgr)
}

// newRootCmd builds the command tree. App is created lazily by the
// persistent pre run so --help works without configuration.
func newRootCmd(out io.Writer, load configLoader) *cobra.Command {
	var (
		app   *App
		flags overrides
	)

	root := &cobra.Command{
		Use:           "sweetshop",
		Short:         "Browse and manage the sweet shop inventory",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			lgr := newLogger(flags.debug)

			cfg, err := load(cmd.Context(), lgr)
			if err != nil {
				return err
			}
			flags.apply(cfg)

			if cfg.Debug && !flags.debug {
				lgr = newLogger(true)
			}

			app, err = newApp(cfg, lgr, out)
			if err != nil {
				return err
			}
			app.json = flags.json
			return nil
		},
	}

	root.SetOut(out)
	root.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "base URL of the inventory API")
	root.PersistentFlags().StringVar(&flags.credentials, "credentials", "", "credential file (defaults to the user config dir)")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "verbose logging")
	root.PersistentFlags().BoolVar(&flags.json, "json", false, "print JSON instead of text")

	current := func() *App { return app }

	root.AddCommand(
		newServeCmd(current),
		newLoginCmd(current),
		newLogoutCmd(current),
		newRegisterCmd(current),
		newWhoamiCmd(current),
		newListCmd(current),
		newSearchCmd(current),
		newPurchaseCmd(current),
		newRestockCmd(current),
		newCreateCmd(current),
		newUpdateCmd(current),
		newDeleteCmd(current),
	)

	return root
}

func main() {
	root := newRootCmd(os.Stdout, defaultLoader)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		os.Exit(1)
	}
}
