package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-storefront/guard"
	apperrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgRegistered         = "Account created, please log in."
	msgLogoutFailed       = "Logout did not complete, please try again."
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	Layout
	Error    string
	Notice   string
	Next     string
	Username string // Preserve username on error
}

// LoginPageUIHandler displays the login page (GET /login). An authenticated
// session is sent on to its destination, so a successful submit lands here first.
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	loginTmpl := mustParseTemplate("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		next := guard.SafeReturn(query.Get("next"))

		if session := sessionFrom(r); session != nil && session.IsAuthenticated() {
			if next == "" || next == RouteLogin {
				next = guard.DefaultHomePath
			}
			redirectSuccess(w, r, next)
			return
		}

		data := LoginPageData{
			Layout:   s.layout(r, "Login"),
			Error:    query.Get("error"),
			Next:     next,
			Username: query.Get("username"),
		}
		if query.Get("registered") != "" {
			data.Notice = msgRegistered
		}
		render(w, r, loginTmpl, http.StatusOK, "", data)
	}
}

// LoginSubmissionHandler processes the login form submission (POST /login)
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	loginTmpl := mustParseTemplate("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		username := r.FormValue("username")
		password := r.FormValue("password")
		next := guard.SafeReturn(r.FormValue("next"))

		session := sessionFrom(r)
		if session == nil {
			redirectSuccess(w, r, RouteError)
			return
		}

		if err := s.auth.Login(r.Context(), session, username, password); err != nil {
			if !apperrors.Is(err, apperrors.ErrInvalidCredentials) {
				log.Err(err).Str("username", username).Msg("Login failed")
			}
			render(w, r, loginTmpl, http.StatusOK, "", LoginPageData{
				Layout:   s.layout(r, "Login"),
				Error:    msgInvalidCredentials,
				Next:     next,
				Username: username,
			})
			return
		}

		// Back to the login view, which moves on once it sees the authenticated session
		target := RouteLogin
		if next != "" {
			target += "?next=" + url.QueryEscape(next)
		}
		redirectSuccess(w, r, target)
	}
}

// LogoutHandler revokes the refresh token and clears the session (POST /logout)
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if owner := browserIDFrom(r); owner != "" {
			_ = s.views.Unmount(owner)
		}

		if session := sessionFrom(r); session != nil {
			if err := s.auth.Logout(r.Context(), session); err != nil {
				log.Err(err).Msg("Logout failed")
				redirectWithError(w, r, RouteLogin, msgLogoutFailed)
				return
			}
		}
		redirectSuccess(w, r, RouteLogin)
	}
}
