// Package api exposes the HTTP surface: the streaming artist resolution
// endpoint, cache invalidation, and the health check.
package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/soundmap/soundmap/internal/api/middleware"
	"github.com/soundmap/soundmap/internal/cache"
	"github.com/soundmap/soundmap/internal/geocode"
)

// RouterDeps bundles all dependencies needed by the HTTP router.
type RouterDeps struct {
	Resolver     Resolver
	Geocoder     *geocode.Cascade
	Store        cache.Store // nil runs cache-less
	CacheTTL     time.Duration
	ResolveDelay time.Duration
	MaxBatch     int
	Logger       *slog.Logger
	BasePath     string
}

// Router sets up all HTTP routes for the application.
type Router struct {
	handlers *Handlers
	logger   *slog.Logger
	basePath string
}

// NewRouter creates a new Router with all routes configured.
func NewRouter(deps RouterDeps) *Router {
	return &Router{
		handlers: &Handlers{
			resolver: deps.Resolver,
			geocoder: deps.Geocoder,
			store:    deps.Store,
			ttl:      deps.CacheTTL,
			delay:    deps.ResolveDelay,
			maxBatch: deps.MaxBatch,
			logger:   deps.Logger.With(slog.String("component", "api")),
		},
		logger:   deps.Logger,
		basePath: strings.TrimRight(deps.BasePath, "/"),
	}
}

// Handler returns the fully wired http.Handler.
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	bp := rt.basePath

	mux.HandleFunc("GET "+bp+"/health", rt.handlers.Health)
	mux.HandleFunc("POST "+bp+"/api/artists", rt.handlers.ResolveArtists)
	mux.HandleFunc("GET "+bp+"/api/artists/{name}", rt.handlers.GetArtist)
	mux.HandleFunc("DELETE "+bp+"/api/cache", rt.handlers.InvalidateCache)
	mux.HandleFunc("/", rt.handlers.NotFound)

	var handler http.Handler = mux
	handler = middleware.CORS(handler)
	handler = middleware.Logging(rt.logger)(handler)
	return handler
}
