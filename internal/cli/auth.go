package cli

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"campusmarket/internal/domain/user"
	"campusmarket/internal/infra/api"
)

type credentialFlags struct {
	name     string
	email    string
	password string
}

func (f *credentialFlags) bind(cmd *cobra.Command, withName bool) {
	if withName {
		cmd.Flags().StringVar(&f.name, "name", "", "display name")
	}
	cmd.Flags().StringVar(&f.email, "email", "", "account email")
	cmd.Flags().StringVar(&f.password, "password", "", "account password (default $CMP_PASSWORD)")
}

func (f *credentialFlags) credentials() user.Credentials {
	password := f.password
	if password == "" {
		password = os.Getenv("CMP_PASSWORD")
	}
	return user.Credentials{Name: f.name, Email: f.email, Password: password}
}

func newLoginCmd(open opener) *cobra.Command {
	flags := &credentialFlags{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(open, func(a *app) error {
				result, err := a.client.Login(cmd.Context(), flags.credentials())
				if err != nil {
					return userMessage(err)
				}
				if err := a.session.SignIn(result.User, result.Token); err != nil {
					return err
				}
				a.printf("Logged in as %s\n", result.User.DisplayName())
				return nil
			})
		},
	}
	flags.bind(cmd, false)
	return cmd
}

func newRegisterCmd(open opener) *cobra.Command {
	flags := &credentialFlags{}
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(open, func(a *app) error {
				result, err := a.client.Register(cmd.Context(), flags.credentials())
				if err != nil {
					return userMessage(err)
				}
				if err := a.session.SignIn(result.User, result.Token); err != nil {
					return err
				}
				a.printf("Welcome, %s\n", result.User.DisplayName())
				return nil
			})
		},
	}
	flags.bind(cmd, true)
	return cmd
}

func newLogoutCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(open, func(a *app) error {
				if _, ok := a.session.Current(); !ok {
					a.println("Not logged in.")
					return nil
				}
				if err := a.client.Logout(cmd.Context()); err != nil {
					a.logger.Warn("server logout failed", "error", err)
				}
				if err := a.session.SignOut(); err != nil {
					return err
				}
				a.println("Logged out.")
				return nil
			})
		},
	}
}

func newWhoamiCmd(open opener) *cobra.Command {
	var verify bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(open, func(a *app) error {
				current, ok := a.session.Current()
				if !ok {
					a.println("Not logged in.")
					return nil
				}
				if verify {
					if err := checkToken(cmd.Context(), a); err != nil {
						return err
					}
				}
				a.printf("%s <%s> (id %s)\n", current.DisplayName(), current.Email, current.ID)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "confirm the saved token with the server")
	return cmd
}

// checkToken drops a session the server no longer accepts.
func checkToken(ctx context.Context, a *app) error {
	_, err := a.client.Me(ctx)
	if err == nil {
		return nil
	}
	if isUnauthorized(err) {
		if signOutErr := a.session.SignOut(); signOutErr != nil {
			return errors.Join(err, signOutErr)
		}
		return errors.New("Saved session expired. Please login again.")
	}
	return userMessage(err)
}

func isUnauthorized(err error) bool {
	return api.IsStatus(err, http.StatusUnauthorized)
}
