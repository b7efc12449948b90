package server

import (
	"net/http"

	"github.com/jrsteele09/go-storefront/users"
	"github.com/rs/zerolog/log"
)

const msgRegistrationFailed = "Registration failed. Please check your details and try again."

// RegisterPageData contains data for rendering the registration page
type RegisterPageData struct {
	Layout
	Error    string
	Username string
	Email    string
}

// RegisterPageUIHandler displays the registration form (GET /register)
func (s *Server) RegisterPageUIHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("register.html")
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, tmpl, http.StatusOK, "", RegisterPageData{
			Layout: s.layout(r, "Register"),
			Error:  r.URL.Query().Get("error"),
		})
	}
}

// RegisterSubmissionHandler creates the account (POST /register)
func (s *Server) RegisterSubmissionHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("register.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		registration := users.Registration{
			Username: r.FormValue("username"),
			Email:    r.FormValue("email"),
			Password: r.FormValue("password"),
		}.Normalize()

		failed := func(message string) {
			render(w, r, tmpl, http.StatusOK, "", RegisterPageData{
				Layout:   s.layout(r, "Register"),
				Error:    message,
				Username: registration.Username,
				Email:    registration.Email,
			})
		}

		// Form level checks get a specific message
		if err := registration.Validate(); err != nil {
			failed(err.Error())
			return
		}

		if err := s.auth.Register(r.Context(), registration); err != nil {
			log.Err(err).Str("username", registration.Username).Msg("Registration failed")
			failed(msgRegistrationFailed)
			return
		}

		redirectSuccess(w, r, RouteLogin+"?registered=1")
	}
}
