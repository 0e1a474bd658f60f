package main

import (
	"os"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-sweetshop"
	"github.com/goliatone/go-sweetshop/web"
	"github.com/spf13/cobra"
)

// PasswordEnv is read when --password is not given.
const PasswordEnv = "SWEETSHOP_PASSWORD"

func passwordFlag(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(PasswordEnv)
}

func newLoginCmd(app func() *App) *cobra.Command {
	var req web.LoginRequest

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			s, _ := a.session(cmd.Context())
			if err := guard(s, sweetshop.RouteAnonymousOnly); err != nil {
				return err
			}

			req.Email = strings.TrimSpace(req.Email)
			req.Password = passwordFlag(req.Password)
			if err := req.Validate(); err != nil {
				return err
			}

			res := s.Login(cmd.Context(), req.Email, req.Password)
			if !res.Success {
				return errors.New(res.Message, errors.CategoryAuth).
					WithTextCode(sweetshop.TextCodeUnauthenticated).
					WithCode(errors.CodeUnauthorized)
			}

			if a.json {
				a.printJSON(res.Identity)
				return nil
			}
			a.printMessage("Signed in as " + res.Identity.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password (or "+PasswordEnv+")")
	return cmd
}

func newLogoutCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			s, _ := a.session(cmd.Context())
			s.Logout(cmd.Context())
			a.printMessage("Signed out")
			return nil
		},
	}
}

func newRegisterCmd(app func() *App) *cobra.Command {
	var req web.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long:  "Create an account. Registering does not sign in; run login afterwards.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			s, _ := a.session(cmd.Context())
			if err := guard(s, sweetshop.RouteAnonymousOnly); err != nil {
				return err
			}

			req.Password = passwordFlag(req.Password)
			if req.ConfirmPassword == "" {
				req.ConfirmPassword = req.Password
			}
			if err := req.Validate(); err != nil {
				return err
			}

			res := s.Register(cmd.Context(), req.Registration())
			if !res.Success {
				return errors.New(res.Message, errors.CategoryBadInput).
					WithTextCode(sweetshop.TextCodeInvalid).
					WithCode(errors.CodeBadRequest)
			}

			if a.json {
				a.printJSON(res.Identity)
				return nil
			}
			a.printMessage("Registered " + res.Identity.Email + ", run `sweetshop login` to sign in")
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password (or "+PasswordEnv+")")
	cmd.Flags().StringVar(&req.ConfirmPassword, "confirm-password", "", "repeat the password, defaults to --password")
	return cmd
}

func newWhoamiCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			s, _ := a.session(cmd.Context())
			if err := guard(s, sweetshop.RouteProtected); err != nil {
				return err
			}
			a.printIdentity(s.Identity())
			return nil
		},
	}
}
