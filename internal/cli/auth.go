package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/sadopc/taskhub/internal/api"
	"github.com/sadopc/taskhub/internal/model"
	"github.com/sadopc/taskhub/internal/validate"
)

var errAborted = errors.New("aborted")

// promptPassword reads a password without echo.
func promptPassword(prompt string) (string, error) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	pw, err := line.PasswordPrompt(prompt)
	if err == liner.ErrPromptAborted || err == io.EOF {
		return "", errAborted
	}
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return pw, nil
}

func newSignUpCmd(app *App) *cobra.Command {
	var form validate.SignUp

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if form.Password == "" {
				var err error
				if form.Password, err = app.Password("Password: "); err != nil {
					return err
				}
				if form.ConfirmPassword, err = app.Password("Confirm password: "); err != nil {
					return err
				}
			} else if form.ConfirmPassword == "" {
				form.ConfirmPassword = form.Password
			}

			s, err := open(cmd, app, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			u, err := s.hub.SignUp(cmd.Context(), form)
			if err != nil {
				return err
			}
			s.saveProfile(u)
			return writeUser(cmd, app, u, "Signed up as")
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&form.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&form.Password, "password", "", "Password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLoginCmd(app *App) *cobra.Command {
	var form validate.Login

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in; later commands reuse the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if form.Password == "" {
				var err error
				if form.Password, err = app.Password("Password: "); err != nil {
					return err
				}
			}

			s, err := open(cmd, app, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			u, err := s.hub.Login(cmd.Context(), form)
			if err != nil {
				return err
			}
			s.saveProfile(u)
			return writeUser(cmd, app, u, "Logged in as")
		},
	}

	cmd.Flags().StringVar(&form.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&form.Password, "password", "", "Password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, app, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			err = s.hub.Logout(cmd.Context())
			// The local copy goes even when the service is unreachable.
			s.forget()
			if err != nil && !api.IsStatus(err, http.StatusUnauthorized) {
				return err
			}
			return writeOut(cmd, app, map[string]bool{"logged_out": true}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, "Logged out")
				return err
			})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, app, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			u, err := s.hub.CheckSession(cmd.Context())
			if api.IsStatus(err, http.StatusUnauthorized) {
				s.forget()
				return errNotLoggedIn
			}
			if err != nil {
				return err
			}
			s.saveProfile(u)
			return writeUser(cmd, app, u, "Signed in as")
		},
	}
}

func writeUser(cmd *cobra.Command, app *App, u model.User, verb string) error {
	return writeOut(cmd, app, u, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s %s <%s>\n", verb, u.Name, u.Email)
		return err
	})
}
