// Package server exposes the contact directory over HTTP: a REST API built
// with huma, an HTML form page, health probes and Prometheus metrics.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// Directory is what the server needs from the contact directory.
type Directory interface {
	types.Directory
	Len() int
}

// Options configures NewRouter.
type Options struct {
	Title   string
	Version string
	Prefix  string                          // API mount point, default /api.
	Ready   func(ctx context.Context) error // readiness probe; nil means always ready.
	Logger  *slog.Logger
}

// NewRouter returns the full HTTP handler for dir.
func NewRouter(dir Directory, options Options) http.Handler {
	if options.Prefix == "" {
		options.Prefix = "/api"
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.DiscardHandler)
	}

	set := metrics.NewSet()
	metered := newMeteredDirectory(dir, set)

	mux := http.NewServeMux()
	mux.HandleFunc("/liveness", func(http.ResponseWriter, *http.Request) {})
	mux.HandleFunc("/readiness", func(w http.ResponseWriter, r *http.Request) {
		if options.Ready == nil {
			return
		}
		if err := options.Ready(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
		}
	})
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		writeBuildInfo(w, options.Version)
		set.WritePrometheus(w)
		metrics.WriteProcessMetrics(w)
	})

	root := humago.New(mux, huma.DefaultConfig(options.Title, options.Version))
	api := huma.NewGroup(root, options.Prefix)
	api.UseMiddleware(
		requestLogger(options.Logger),
		meterRequests(set),
		recoverPanics(options.Logger),
	)
	(&Contacts{Dir: metered, ErrorHandler: logErrors(options.Logger)}).Register(api)

	(&Form{Title: options.Title, Dir: metered, Logger: options.Logger}).Register(mux)

	return mux
}

// ServerOptions configures the listening http.Server.
type ServerOptions struct {
	Addr              string
	ReadHeaderTimeout time.Duration
}

// NewServer wraps handler in an http.Server whose internal errors go to logger.
func NewServer(options ServerOptions, handler http.Handler, logger *slog.Logger) *http.Server {
	if options.ReadHeaderTimeout == 0 {
		options.ReadHeaderTimeout = 15 * time.Second
	}
	return &http.Server{
		Addr:              options.Addr,
		ReadHeaderTimeout: options.ReadHeaderTimeout,
		Handler:           handler,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}
