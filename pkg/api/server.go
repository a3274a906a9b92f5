// Package api serves the wiregraph pipeline over HTTP.
//
// All snapshot bodies use the JSON snapshot format of package io, optionally
// with a components array so that pins can be bound. Routes:
//
//	GET    /health
//	GET    /metrics                     only with [WithMetrics]
//	POST   /v1/cleanup                  cleaned snapshot
//	POST   /v1/nets                     nets of the posted snapshot
//	GET    /v1/documents                stored documents, newest first
//	POST   /v1/documents?name=...       store a new document
//	GET    /v1/documents/{id}           stored snapshot
//	PUT    /v1/documents/{id}?name=...  create or replace a document
//	DELETE /v1/documents/{id}
//	GET    /v1/documents/{id}/nets      nets of a stored document
//
// The nets routes accept format, node_only, cleanup, labels, scale and
// refresh query parameters, mirroring the flags of `wiregraph nets`. Every
// request works on a freshly decoded store; the server holds no topology
// state between requests.
//
// Errors are returned as
//
//	{"error": {"code": "INVALID_SNAPSHOT", "message": "..."}}
//
// with the status given by [errors.HTTPStatus].
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/wiregraph/pkg/pipeline"
	"github.com/matzehuels/wiregraph/pkg/storage"
)

// DefaultMaxBody limits request bodies to 8 MiB.
const DefaultMaxBody = 8 << 20

// DefaultTimeout bounds the handling time of a single request.
const DefaultTimeout = 30 * time.Second

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	runner  *pipeline.Runner
	store   storage.Store
	logger  *log.Logger
	maxBody int64
	timeout time.Duration
	metrics http.Handler
}

// Option configures a [Server].
type Option func(*Server)

// WithMaxBody sets the request body limit in bytes.
func WithMaxBody(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMetrics serves h at GET /metrics, outside the request timeout.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// New creates a server. A nil runner runs the pipeline without caching, a
// nil store keeps documents in memory and a nil logger uses log.Default().
func New(runner *pipeline.Runner, store storage.Store, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	if store == nil {
		store = storage.NewMemoryStore()
	}
	s := &Server{
		runner:  runner,
		store:   store,
		logger:  logger,
		maxBody: DefaultMaxBody,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router with all routes and middleware installed.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(s.logger))
	router.Use(hooks)

	if s.metrics != nil {
		router.Handle("/metrics", s.metrics)
	}

	router.Group(func(g chi.Router) {
		g.Use(chimiddleware.Timeout(s.timeout))

		g.Get("/health", s.health)

		g.Route("/v1", func(r chi.Router) {
			r.Post("/cleanup", s.cleanup)
			r.Post("/nets", s.nets)

			r.Route("/documents", func(r chi.Router) {
				r.Get("/", s.listDocuments)
				r.Post("/", s.createDocument)
				r.Get("/{id}", s.getDocument)
				r.Put("/{id}", s.putDocument)
				r.Delete("/{id}", s.deleteDocument)
				r.Get("/{id}/nets", s.documentNets)
			})
		})
	})

	return router
}

// Close releases the runner cache and the document store.
func (s *Server) Close() error {
	err := s.runner.Close()
	if serr := s.store.Close(); err == nil {
		err = serr
	}
	return err
}
