package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteLogin    = "/login"
	RouteLogout   = "/logout"
	RouteRegister = "/register"

	// Protected Routes
	RouteProfile          = "/profile"
	RouteProducts         = "/products"
	RouteProductsNext     = "/products/next"
	RouteProductsPrevious = "/products/previous"

	// Status Routes
	RouteUnauthorized = "/unauthorized"
	RouteError        = "/error"

	// Operational Routes
	RouteMetrics = "/metrics"
	RouteHealthz = "/healthz"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
)
