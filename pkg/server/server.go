// Package server exposes the polytree pipeline over HTTP.
//
// # Routes
//
//	GET  /healthz             build information
//	GET  /presets             built-in presets
//	POST /polymer/{format}    render a polymer (svg, png, pdf, json)
//	POST /license/{format}    render a license
//	POST /solve/{kind}        puzzle answers as JSON
//
// The request body is the raw input. Render parameters are query
// parameters named like the CLI flags, for example
//
//	curl --data-binary @polymer.txt 'localhost:8080/polymer/svg?preset=classic&zoom=0.5&ignored=c'
//
// Every response carries an X-Request-ID header, taken from the request
// when present. Errors are JSON objects with a machine-readable code.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/polytree/pkg/pipeline"
)

// DefaultAddr is the default listen address.
const DefaultAddr = "localhost:8080"

const (
	requestTimeout  = time.Minute
	shutdownTimeout = 10 * time.Second
)

// Server serves the HTTP API.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// New returns a server that renders with runner. A nil logger logs to the
// default logger.
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: runner, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handle(s.healthz))
	r.Get("/presets", s.handle(s.presets))
	r.Post("/polymer/{format}", s.handle(s.render(pipeline.KindPolymer)))
	r.Post("/license/{format}", s.handle(s.render(pipeline.KindLicense)))
	r.Post("/solve/{kind}", s.handle(s.solve))
	r.NotFound(s.handle(s.notFound))
	return r
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != http.ErrServerClosed {
		return err
	}
	return nil
}
