package server

import (
	"net/http"
	"strings"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))

	// LOGIN / REGISTER / LOGOUT
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageUIHandler(), s.SessionMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.SessionMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteRegister, ChainMiddleware(s.RegisterPageUIHandler(), s.SessionMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteRegister, ChainMiddleware(s.RegisterSubmissionHandler(), s.SessionMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.SessionMiddleWare()...))

	// Protected views
	s.RegisterRouteHandler("GET "+RouteProfile, ChainMiddleware(s.ProfileHandler(), s.SessionMiddleWare(s.RequireSession)...))
	s.RegisterRouteHandler("GET "+RouteProducts, ChainMiddleware(s.ProductsHandler(), s.SessionMiddleWare(s.RequireSession)...))
	s.RegisterRouteHandler("POST "+RouteProductsNext, ChainMiddleware(s.ProductsNavigateHandler(navigateNext), s.SessionMiddleWare(s.RequireSession)...))
	s.RegisterRouteHandler("POST "+RouteProductsPrevious, ChainMiddleware(s.ProductsNavigateHandler(navigatePrevious), s.SessionMiddleWare(s.RequireSession)...))

	// Status views
	s.RegisterRouteHandler("GET "+RouteUnauthorized, ChainMiddleware(s.UnauthorizedHandler(), s.SessionMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteError, ChainMiddleware(s.ErrorPageHandler(), s.SessionMiddleWare()...))

	// Operational
	s.RegisterRouteFunc("GET "+RouteHealthz, s.HealthHandler())
	if s.gatherer != nil {
		s.RegisterRouteHandler("GET "+RouteMetrics, s.MetricsHandler())
	}

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.HTMLMiddleWare(s.CacheMiddleware, s.CompressionMiddleware)...))
	s.RegisterRouteHandler("/", ChainMiddleware(s.NotFoundHandler(), s.SessionMiddleWare()...))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	notFound := s.NotFoundHandler()
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, "/")
		if filePath == "" {
			notFound(w, r)
			return
		}
		err := StreamFile(w, r, filePath)
		if err != nil {
			logError("GET", filePath, err.Error())
			notFound(w, r)
			return
		}
	}
}
