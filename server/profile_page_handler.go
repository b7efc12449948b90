package server

import (
	"net/http"

	"github.com/hako/durafmt"
	apperrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/users"
	"github.com/rs/zerolog/log"
)

// ProfilePageData contains data for rendering the profile page
type ProfilePageData struct {
	Layout
	User      *users.User
	ExpiresIn string // Empty when the token carries no usable expiry
	Expired   bool
}

// ProfileHandler shows the signed in user (GET /profile)
func (s *Server) ProfileHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("profile.html")
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFrom(r)
		data := ProfilePageData{
			Layout: s.layout(r, "Profile"),
			User:   session.User(),
		}

		remaining, err := s.auth.SessionRemaining(session)
		switch {
		case apperrors.Is(err, apperrors.ErrSessionExpired):
			data.Expired = true
		case err != nil:
			log.Debug().Err(err).Msg("Session expiry unavailable")
		case remaining > 0:
			data.ExpiresIn = durafmt.Parse(remaining).LimitFirstN(2).String()
		}

		render(w, r, tmpl, http.StatusOK, "", data)
	}
}
