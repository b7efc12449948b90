package server

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatusPageData contains data for the unauthorized, error and not found pages
type StatusPageData struct {
	Layout
	Code    int
	Message string
}

func (s *Server) statusPage(title, message string, code int) http.HandlerFunc {
	tmpl := mustParseTemplate("status.html")
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, tmpl, code, "", StatusPageData{
			Layout:  s.layout(r, title),
			Code:    code,
			Message: message,
		})
	}
}

// IndexHandler sends visitors to the product listing
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, RouteProducts, http.StatusSeeOther)
	}
}

func (s *Server) UnauthorizedHandler() http.HandlerFunc {
	return s.statusPage("Unauthorized", "You do not have permission to view that page.", http.StatusForbidden)
}

func (s *Server) ErrorPageHandler() http.HandlerFunc {
	return s.statusPage("Error", "Something went wrong. Please try again later.", http.StatusInternalServerError)
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return s.statusPage("Not Found", "The page you are looking for does not exist.", http.StatusNotFound)
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (s *Server) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})
}
