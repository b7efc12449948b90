package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/hako/durafmt"
	apperrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/users"
	"github.com/spf13/cobra"
)

const profilePath = "/profile"

func newLoginCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the storefront",
		Long: `Log in with your username and password. The password is read from stdin
when --password is not given.

Examples:
  storefront login --username jane --password secret1
  echo secret1 | storefront login --username jane`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.session.IsAuthenticated() {
				fmt.Fprintf(cmd.OutOrStdout(), "Already logged in as %s\n", a.session.User().DisplayName())
				return nil
			}

			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			if username == "" {
				return fmt.Errorf("--username is required")
			}
			if password == "" {
				var err error
				if password, err = readLine(cmd, "Password: "); err != nil {
					return err
				}
			}

			if err := a.auth.Login(cmd.Context(), a.session, username, password); err != nil {
				if apperrors.Is(err, apperrors.ErrInvalidCredentials) {
					fmt.Fprintln(cmd.ErrOrStderr(), "Invalid credentials")
					return apperrors.ErrInvalidCredentials
				}
				return fmt.Errorf("login failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", a.session.User().DisplayName())
			return nil
		},
	}
	cmd.Flags().String("username", "", "Username (required)")
	cmd.Flags().String("password", "", "Password")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a storefront account",
		Long: `Create a new account. Log in afterwards with 'storefront login'.

Examples:
  storefront register --username jane --email jane@example.com --password secret1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			registration := users.Registration{Username: username, Email: email, Password: password}.Normalize()
			if err := registration.Validate(); err != nil {
				return err
			}
			if err := a.auth.Register(cmd.Context(), registration); err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Account created, please log in.")
			return nil
		},
	}
	cmd.Flags().String("username", "", "Username (required)")
	cmd.Flags().String("email", "", "Email address (required)")
	cmd.Flags().String("password", "", "Password (required)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and remove stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.session.IsAuthenticated() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}

			name := a.session.User().DisplayName()
			if err := a.auth.Logout(cmd.Context(), a.session); err != nil {
				return fmt.Errorf("logout failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged out %s\n", name)
			return nil
		},
	}
}

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(cmd, profilePath); err != nil {
				return err
			}

			user := a.session.User()
			if refresh, _ := cmd.Flags().GetBool("refresh"); refresh {
				fresh, err := a.auth.Profile(cmd.Context(), a.session.AccessToken())
				if err != nil {
					_, err = a.intercept(cmd, profilePath, err)
					return err
				}
				user = fresh
			}

			out := cmd.OutOrStdout()
			if user == nil {
				fmt.Fprintln(out, "No user data")
			} else {
				fmt.Fprintf(out, "Username: %s\n", user.Username)
				fmt.Fprintf(out, "Email:    %s\n", user.Email)
				if user.Role != "" {
					fmt.Fprintf(out, "Role:     %s\n", user.Role)
				}
			}
			remaining, err := a.auth.SessionRemaining(a.session)
			switch {
			case apperrors.Is(err, apperrors.ErrSessionExpired):
				fmt.Fprintln(out, "Session token has expired.")
			case err == nil && remaining > 0:
				fmt.Fprintf(out, "Session expires in %s\n", durafmt.Parse(remaining).LimitFirstN(2))
			}
			return nil
		},
	}
	cmd.Flags().Bool("refresh", false, "Fetch the profile from the API instead of the stored copy")
	return cmd
}

func readLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
