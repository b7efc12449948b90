package guard

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-storefront/apiclient"
	"github.com/jrsteele09/go-storefront/sessions"
	"github.com/rs/zerolog/log"
)

const (
	DefaultLoginPath        = "/login"
	DefaultUnauthorizedPath = "/unauthorized"
	DefaultHomePath         = "/profile"

	// NoticeSessionExpired is shown once on the login view after a forced logout
	NoticeSessionExpired = "Session expired, please log in again."
)

// Navigation is a request to enter a view
type Navigation struct {
	Path   string // Requested local path including any query
	Notice string // Message to carry to the login view, if any
}

// Decision is the result of evaluating a navigation
type Decision struct {
	Allow    bool
	Redirect string
	Notice   string
}

// Guard gates protected views on the session's authentication state
type Guard struct {
	LoginPath        string
	UnauthorizedPath string
}

// New returns a Guard using the default login and unauthorized paths
func New() *Guard {
	return &Guard{
		LoginPath:        DefaultLoginPath,
		UnauthorizedPath: DefaultUnauthorizedPath,
	}
}

// Check is evaluated on every navigation. Nothing is cached between calls.
func (g *Guard) Check(session sessions.Session, nav Navigation) Decision {
	if session != nil && session.IsAuthenticated() {
		return Decision{Allow: true}
	}
	return Decision{Redirect: g.LoginRedirect(nav), Notice: nav.Notice}
}

// LoginRedirect builds the login location that returns to nav.Path afterwards.
// The notice travels with this single redirect so it is displayed at most once.
func (g *Guard) LoginRedirect(nav Navigation) string {
	q := url.Values{}
	if next := SafeReturn(nav.Path); next != "" && next != g.LoginPath {
		q.Set("next", next)
	}
	if nav.Notice != "" {
		q.Set("error", nav.Notice)
	}
	if len(q) == 0 {
		return g.LoginPath
	}
	return g.LoginPath + "?" + q.Encode()
}

// Intercept applies the response policy shared by every view.
// It returns handled=false when the calling view should deal with err itself.
func (g *Guard) Intercept(ctx context.Context, session sessions.Session, nav Navigation, err error) (Decision, bool) {
	switch {
	case err == nil:
		return Decision{}, false
	case errors.Is(err, apiclient.ErrUnauthenticated):
		if session == nil || !session.IsAuthenticated() {
			return Decision{}, false
		}
		if logoutErr := session.Logout(ctx); logoutErr != nil {
			log.Err(logoutErr).Msg("failed to clear session after authentication failure")
		}
		nav.Notice = NoticeSessionExpired
		return Decision{Redirect: g.LoginRedirect(nav), Notice: nav.Notice}, true
	case errors.Is(err, apiclient.ErrForbidden):
		return Decision{Redirect: g.UnauthorizedPath}, true
	default:
		return Decision{}, false
	}
}

// SafeReturn accepts only local absolute paths as a post-login destination
func SafeReturn(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return ""
	}
	return next
}
