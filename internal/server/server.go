package server

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options carries the collaborators the server depends on. Tests construct
// this directly with fakes.
type Options struct {
	Config   Config
	Logger   *Logger
	DB       *sql.DB
	Repo     Repository
	Storage  ObjectStorage
	Verifier TokenVerifier
}

// Server wires handlers, middleware, and collaborators together.
type Server struct {
	cfg        Config
	logger     *Logger
	db         *sql.DB
	repo       Repository
	storage    ObjectStorage
	gate       *Gate
	httpServer *http.Server
}

func New(opts Options) *Server {
	s := &Server{
		cfg:     opts.Config,
		logger:  opts.Logger,
		db:      opts.DB,
		repo:    opts.Repo,
		storage: opts.Storage,
		gate:    NewGate(opts.Config, opts.Verifier),
	}
	if s.logger == nil {
		s.logger = NewLogger(opts.Config.LogFormat, opts.Config.LogLevel)
	}

	mux := http.NewServeMux()

	// Public surface
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /sections", s.handleListSections)
	mux.HandleFunc("GET /dashboard", s.handleGetDashboard)
	mux.HandleFunc("GET /entries/{section}", s.handleListEntries)

	// Admin surface, all behind the gate
	mux.Handle("POST /admin/upload", s.gate.requireAdmin(http.HandlerFunc(s.handleUpload)))
	mux.Handle("POST /admin/entry", s.gate.requireAdmin(http.HandlerFunc(s.handleCreateEntry)))
	mux.Handle("PUT /admin/dashboard", s.gate.requireAdmin(http.HandlerFunc(s.handleUpdateDashboard)))
	mux.Handle("DELETE /admin/entry/{entry_id}", s.gate.requireAdmin(http.HandlerFunc(s.handleDeleteEntry)))

	// Wrap middleware: requestID -> logging -> metrics -> headers -> CORS -> mux
	var handler http.Handler = mux
	handler = corsMiddleware(opts.Config.AllowedOrigins)(handler)
	handler = securityHeadersMiddleware(handler)
	handler = metricsMiddleware(handler)
	handler = loggingMiddleware(s.logger)(handler)
	handler = requestIDMiddleware(handler)

	s.httpServer = &http.Server{
		Addr:              opts.Config.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Handler exposes the full middleware chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
