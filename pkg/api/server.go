// Package api exposes the analysis engine over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/gofastercloud/attackgraph/pkg/analysis"
	"github.com/gofastercloud/attackgraph/pkg/graphql"
	"github.com/gofastercloud/attackgraph/pkg/logging"
	"github.com/gofastercloud/attackgraph/pkg/metrics"
	"github.com/gofastercloud/attackgraph/pkg/snapshot"
)

// maxBodyBytes bounds analysis request payloads; the largest legitimate
// request is a few hundred identifiers.
const maxBodyBytes = 1 << 20

// Server routes API requests to the analysis engine. It owns no
// listener; callers mount Handler() on an http.Server.
type Server struct {
	router  *mux.Router
	engine  *analysis.Engine
	handle  *snapshot.Handle
	log     logging.Logger
	reg     *metrics.Registry
	started time.Time
}

// NewServer creates an API server. logger and registry may be nil.
func NewServer(engine *analysis.Engine, handle *snapshot.Handle, log logging.Logger, reg *metrics.Registry) *Server {
	if log == nil {
		log = logging.NewNopLogger()
	}
	s := &Server{
		router:  mux.NewRouter(),
		engine:  engine,
		handle:  handle,
		log:     log.With(logging.Component("api")),
		reg:     reg,
		started: time.Now(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	// Route-aware middleware goes through mux so the metrics path label is
	// the route template rather than the raw URL.
	s.router.Use(s.requestIDMiddleware, s.loggingMiddleware, s.metricsMiddleware)

	s.router.HandleFunc("/api/v1/analysis/attack-path", s.handleAttackPath).Methods("POST")
	s.router.HandleFunc("/api/v1/analysis/coverage-gaps", s.handleCoverageGaps).Methods("POST")
	s.router.HandleFunc("/api/v1/analysis/traverse", s.handleTraverse).Methods("POST")

	s.router.HandleFunc("/api/v1/entities/{id}", s.handleGetEntity).Methods("GET")
	s.router.HandleFunc("/api/v1/entities/{id}/neighbors", s.handleNeighbors).Methods("GET")
	s.router.HandleFunc("/api/v1/killchain", s.handleKillChain).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	if schema, err := graphql.BuildSchema(s.engine); err != nil {
		s.log.Error("graphql schema build failed", logging.Error(err))
	} else {
		s.router.Handle("/graphql", graphql.NewHandler(schema)).Methods("POST", "OPTIONS")
	}

	if s.reg != nil {
		s.router.Handle("/metrics", s.reg.Handler()).Methods("GET")
	}
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = s.corsMiddleware(h)
	h = s.bodySizeLimitMiddleware(h, maxBodyBytes)
	h = s.panicRecoveryMiddleware(h)
	return h
}
