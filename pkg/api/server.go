package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/authgate/pkg/httputil"
	"github.com/platinummonkey/authgate/pkg/observability"
)

// DefaultMaxBodyBytes bounds request bodies; auth payloads are tiny
const DefaultMaxBodyBytes = 1 << 20

// ServerOptions configures the HTTP stack around the routes
type ServerOptions struct {
	AllowedOrigins []string
	MaxBodyBytes   int64
	// Tracing wraps the stack in an otelhttp handler
	Tracing bool
}

// Server represents our API server
type Server struct {
	router  *mux.Router
	handler http.Handler
}

// RouteRegistrar is an interface for types that can register routes
type RouteRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

// NewServer creates the API server with the given route groups
func NewServer(logger *observability.Logger, metrics *observability.Metrics, opts ServerOptions, registrars ...RouteRegistrar) *Server {
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	router.Use(observability.HTTPMetricsMiddleware(metrics))

	for _, r := range registrars {
		r.RegisterRoutes(router)
	}

	var handler http.Handler = httputil.Chain(
		httputil.RecoveryMiddleware(logger),
		httputil.RequestIDMiddleware(logger),
		httputil.LoggingMiddleware(logger),
		httputil.CORSMiddleware(opts.AllowedOrigins),
		httputil.MaxBytesMiddleware(opts.MaxBodyBytes),
		httputil.ContentTypeMiddleware,
	)(router)

	if opts.Tracing {
		handler = otelhttp.NewHandler(handler, "authgate",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}

	return &Server{
		router:  router,
		handler: handler,
	}
}

// Router exposes the route table, mainly for tests
func (s *Server) Router() *mux.Router {
	return s.router
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{
		Error:   "not_found",
		Message: "route not found",
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.ErrorResponse{
		Error:   "method_not_allowed",
		Message: "method not allowed",
	})
}
