package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-storefront/apiclient"
	"github.com/jrsteele09/go-storefront/guard"
	"github.com/jrsteele09/go-storefront/sessions"
	"github.com/jrsteele09/go-storefront/storage"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyBrowserID stores the id from the browser session cookie
	ContextKeyBrowserID ContextKey = "browser_id"
)

// LoadSession restores the browser's session store from durable storage on
// every request, the server side equivalent of a page load.
func (s *Server) LoadSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		browserID := ""
		if cookie, err := r.Cookie(browserSessionCookieName); err == nil {
			if id, err := uuid.Parse(cookie.Value); err == nil {
				browserID = id.String()
			}
		}
		if browserID == "" {
			browserID = uuid.NewString()
		}
		// Refresh the cookie so active browsers keep their session
		s.SetBrowserSessionCookie(w, browserID, r, int(s.sessionTTL.Seconds()))

		store := sessions.NewStore(storage.Scope(s.storage, browserID))
		if err := store.Restore(r.Context()); err != nil {
			log.Err(err).Msg("Failed to restore session, continuing anonymous")
		}

		ctx := context.WithValue(r.Context(), ContextKeyBrowserID, browserID)
		ctx = sessions.NewContext(ctx, store)
		ctx = apiclient.ContextWithCredentials(ctx, store)
		next(w, r.WithContext(ctx))
	}
}

// RequireSession gates protected views on the route guard
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		decision := s.guard.Check(sessionFrom(r), guard.Navigation{Path: navigationPath(r)})
		if !decision.Allow {
			redirectSuccess(w, r, decision.Redirect)
			return
		}
		next(w, r)
	}
}

// interceptAPIError applies the shared response policy. It reports whether
// the response has been written.
func (s *Server) interceptAPIError(w http.ResponseWriter, r *http.Request, err error) bool {
	decision, handled := s.guard.Intercept(r.Context(), sessionFrom(r), guard.Navigation{Path: navigationPath(r)}, err)
	if !handled {
		return false
	}
	if decision.Redirect != s.guard.UnauthorizedPath {
		// Forced logout, drop the listing fetched with the revoked credential
		if err := s.views.Unmount(browserIDFrom(r)); err != nil {
			log.Err(err).Msg("Failed to unmount products view")
		}
	}
	redirectSuccess(w, r, decision.Redirect)
	return true
}

func sessionFrom(r *http.Request) sessions.Session {
	session, ok := sessions.FromContext(r.Context())
	if !ok {
		return nil
	}
	return session
}

func browserIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(ContextKeyBrowserID).(string)
	return id
}

// navigationPath is where the user should return after logging in. Form
// posts return to the view they were posted from.
func navigationPath(r *http.Request) string {
	if r.Method == http.MethodGet {
		return r.URL.RequestURI()
	}
	switch r.URL.Path {
	case RouteProductsNext, RouteProductsPrevious:
		return RouteProducts
	}
	return ""
}
