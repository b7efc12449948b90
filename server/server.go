package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-storefront/apiclient"
	"github.com/jrsteele09/go-storefront/auth"
	"github.com/jrsteele09/go-storefront/catalog"
	"github.com/jrsteele09/go-storefront/guard"
	"github.com/jrsteele09/go-storefront/internal/config"
	"github.com/jrsteele09/go-storefront/server/viewrepo"
	"github.com/jrsteele09/go-storefront/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Deps holds the collaborators the server is built from
type Deps struct {
	API      *apiclient.Client   // Shared REST API client
	Storage  storage.Storage     // Backend for per-browser session keys
	Views    viewrepo.Repo       // Mounted product listings
	Gatherer prometheus.Gatherer // Source for /metrics, nil disables it
}

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	api        *apiclient.Client
	auth       *auth.Service
	catalog    *catalog.Service
	guard      *guard.Guard
	storage    storage.Storage
	views      viewrepo.Repo
	gatherer   prometheus.Gatherer
	sessionTTL time.Duration
	secure     bool // Public base URL is https
	nowTime    func() time.Time
}

func New(config config.Config, deps Deps) (*Server, error) {
	if deps.API == nil {
		return nil, fmt.Errorf("[Server New] API client is required")
	}
	if deps.Storage == nil {
		return nil, fmt.Errorf("[Server New] session storage is required")
	}
	if deps.Views == nil {
		deps.Views = viewrepo.NewInMemoryRepo(config.GetViewTTL())
	}

	authService, err := auth.NewService(deps.API)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create auth service: %w", err)
	}

	s := &Server{
		env:        config.GetEnv(),
		mux:        http.NewServeMux(),
		config:     config,
		api:        deps.API,
		auth:       authService,
		catalog:    catalog.NewService(deps.API, config.GetPageSize()),
		guard:      guard.New(),
		storage:    deps.Storage,
		views:      deps.Views,
		gatherer:   deps.Gatherer,
		sessionTTL: config.GetSessionTTL(),
		secure:     strings.HasPrefix(strings.ToLower(config.GetBaseURL()), "https://"),
		nowTime:    time.Now,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// SweepViews unmounts idle product listings
func (s *Server) SweepViews() int {
	return s.views.Sweep()
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Debug().Msgf("[%-19s] %s", coloredMethod(method), path)
}

func logError(method, path, error string) {
	log.Error().Msgf("[%-19s] %s %s", coloredMethod(method), path, Red+error+ResetColor)
}

func coloredMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
