package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/PabloGalante/tubot/internal/adapters/storage/localstate"
	"github.com/PabloGalante/tubot/internal/shell"
)

var errSignedOut = errors.New("not signed in, run `tubot login` first")

// userError keeps the form message and drops the wrapping for display.
func userError(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(shell.Describe(err))
}

func newSignUpCmd(opts *options) *cobra.Command {
	var email, username string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPrompter(cmd.OutOrStdout())
			name, err := p.line("Username: ", username)
			if err != nil {
				return err
			}
			addr, err := p.line("Email: ", email)
			if err != nil {
				return err
			}
			password, err := p.password("Password: ")
			if err != nil {
				return err
			}
			confirm, err := p.password("Confirm password: ")
			if err != nil {
				return err
			}

			rec, err := opts.account().SignUp(cmd.Context(), name, addr, password, confirm)
			if err != nil {
				return userError(err)
			}
			printWelcome(cmd, rec)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&username, "username", "", "display name")
	return cmd
}

func newLoginCmd(opts *options) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPrompter(cmd.OutOrStdout())
			addr, err := p.line("Email: ", email)
			if err != nil {
				return err
			}
			password, err := p.password("Password: ")
			if err != nil {
				return err
			}

			rec, err := opts.account().SignIn(cmd.Context(), addr, password)
			if err != nil {
				return userError(err)
			}
			printWelcome(cmd, rec)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func newLogoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.account().SignOut(cmd.Context()); err != nil {
				// The local record is already gone at this point.
				cmd.PrintErrln("warning: " + shell.Describe(err))
			}
			cmd.Println("Sesión cerrada.")
			return nil
		},
	}
}

func newWhoAmICmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, ok, err := opts.account().Current()
			if err != nil {
				return err
			}
			if !ok {
				return errSignedOut
			}
			cmd.Printf("%s <%s>\n", rec.User.Username, rec.User.Email)
			return nil
		},
	}
}

func printWelcome(cmd *cobra.Command, rec localstate.Record) {
	cmd.Printf("Bienvenido, %s.\n", rec.User.Username)
	if rec.Session == nil {
		cmd.Println("Revisa tu correo para confirmar la cuenta.")
	}
}
