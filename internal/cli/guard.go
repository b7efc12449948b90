package cli

import (
	"fmt"

	"github.com/jrsteele09/go-storefront/guard"
	apperrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/spf13/cobra"
)

// requireSession runs the route guard for a protected command. A terminal
// cannot redirect, so a denied navigation prints the login hint instead.
func (a *app) requireSession(cmd *cobra.Command, path string) error {
	decision := a.guard.Check(a.session, guard.Navigation{Path: path})
	if decision.Allow {
		return nil
	}
	a.printDecision(cmd, decision)
	return apperrors.ErrNotAuthenticated
}

// intercept applies the shared API response policy and reports whether it
// handled err. Unhandled errors come back unchanged.
func (a *app) intercept(cmd *cobra.Command, path string, err error) (bool, error) {
	decision, handled := a.guard.Intercept(cmd.Context(), a.session, guard.Navigation{Path: path}, err)
	if !handled {
		return false, err
	}
	a.printDecision(cmd, decision)
	if decision.Redirect == a.guard.UnauthorizedPath {
		return true, apperrors.Wrapf(err, "forbidden")
	}
	return true, apperrors.ErrSessionExpired
}

func (a *app) printDecision(cmd *cobra.Command, decision guard.Decision) {
	out := cmd.ErrOrStderr()
	if decision.Notice != "" {
		fmt.Fprintln(out, decision.Notice)
	}
	if decision.Redirect == a.guard.UnauthorizedPath {
		fmt.Fprintln(out, "You do not have permission to view that page.")
		return
	}
	fmt.Fprintln(out, "Login required. Use 'storefront login' to log in.")
}
