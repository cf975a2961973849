package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JeevithaAnandhan/marksheetpro/internal/cli/formatter"
	"github.com/JeevithaAnandhan/marksheetpro/internal/processing"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// errLoggedOut is returned by commands that need a session.
var errLoggedOut = errors.New("not logged in (run `marksheet login`)")

func errRequired(field string) error {
	return fmt.Errorf("%s is required", field)
}

func newLoginCmd(app *App) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the processing service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (username == "" || password == "") && app.interactive() {
				form := huh.NewForm(huh.NewGroup(
					huh.NewInput().Title("Username").Value(&username).Validate(required("username")),
					huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password).Validate(required("password")),
				)).WithTheme(marksheetHuhTheme()).WithShowHelp(false)
				if err := form.Run(); err != nil {
					return err
				}
			}
			if username = strings.TrimSpace(username); username == "" {
				return errRequired("--username")
			}
			if password == "" {
				return errRequired("--password")
			}

			res, err := app.Accounts.Login(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("login: %s", processing.UserMessage(err))
			}
			switch r := res.(type) {
			case processing.LoginSuccess:
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatUser(r.User))
				return nil
			case processing.LoginFailure:
				return errors.New(r.Message)
			default:
				return fmt.Errorf("login: unexpected result %T", res)
			}
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")

	return cmd
}

func newRegisterCmd(app *App) *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account on the processing service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (username == "" || password == "") && app.interactive() {
				form := huh.NewForm(huh.NewGroup(
					huh.NewInput().Title("Username").Value(&username).Validate(required("username")),
					huh.NewInput().Title("Email").Description("Optional").Value(&email),
					huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password).Validate(required("password")),
				)).WithTheme(marksheetHuhTheme()).WithShowHelp(false)
				if err := form.Run(); err != nil {
					return err
				}
			}
			if username = strings.TrimSpace(username); username == "" {
				return errRequired("--username")
			}
			if password == "" {
				return errRequired("--password")
			}

			res, err := app.Accounts.Register(cmd.Context(), username, strings.TrimSpace(email), password)
			if err != nil {
				return fmt.Errorf("register: %s", processing.UserMessage(err))
			}
			switch r := res.(type) {
			case processing.RegisterSuccess:
				msg := r.Message
				if msg == "" {
					msg = "Registration successful"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.StyleGreen.Render("✔"), msg)
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Sign in with `marksheet login`."))
				return nil
			case processing.RegisterFailure:
				return errors.New(r.Message)
			default:
				return fmt.Errorf("register: unexpected result %T", res)
			}
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")

	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Accounts.Logout(cmd.Context()); err != nil {
				// The local session is gone either way.
				fmt.Fprintln(cmd.ErrOrStderr(), formatter.StyleYellow.Render("Remote logout failed: "+processing.UserMessage(err)))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Accounts.CurrentUser(cmd.Context())
			if err != nil {
				return fmt.Errorf("whoami: %s", processing.UserMessage(err))
			}
			in, ok := res.(processing.LoggedIn)
			if !ok {
				return errLoggedOut
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatUser(in.User))
			return nil
		},
	}
}
