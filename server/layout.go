package server

import "net/http"

// Layout is the data every page shares
type Layout struct {
	AppName       string
	Title         string
	Authenticated bool
	Username      string
}

func (s *Server) layout(r *http.Request, title string) Layout {
	l := Layout{
		AppName: s.config.GetAppName(),
		Title:   title,
	}
	if session := sessionFrom(r); session != nil && session.IsAuthenticated() {
		l.Authenticated = true
		l.Username = session.User().DisplayName()
	}
	return l
}
