package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"financas/internal/log"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Long: `Sign in with email and password. Missing values are prompted for;
the password is read without echo when stdin is a terminal.

The session is kept by the configured backend until logout or until the
API rejects the token.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email == "" {
				if email, err = opts.prompt(cmd, "Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = readPassword(cmd, opts); err != nil {
					return err
				}
			}

			return opts.withApp(cmd.Context(), false, func(a *app) error {
				user, err := a.auth.Login(cmd.Context(), email, password)
				if err != nil {
					return err
				}
				return opts.out.Session(&user, true)
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	return cmd
}

func readPassword(cmd *cobra.Command, opts *rootOptions) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	return opts.prompt(cmd, "Password: ")
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), false, func(a *app) error {
				if err := a.txs.Forget(cmd.Context()); err != nil {
					a.logger.WarnContext(cmd.Context(), "Failed to drop local data", log.FieldError, err)
				}
				if err := a.auth.Logout(cmd.Context()); err != nil {
					return err
				}
				return opts.out.Message("Logged out")
			})
		},
	}
}

func newSessionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Verify the stored session against the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), false, func(a *app) error {
				v := a.auth.VerifySession(cmd.Context())
				return opts.out.Session(v.User, v.Valid)
			})
		},
	}
}
