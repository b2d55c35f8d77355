// Package server serves one built graph view and its JSON over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matsen/termgraph/internal/interact"
	"github.com/matsen/termgraph/internal/logging"
	"github.com/matsen/termgraph/internal/metadata"
	"github.com/matsen/termgraph/internal/metrics"
	"github.com/matsen/termgraph/internal/view"
	"github.com/matsen/termgraph/internal/viz"
)

// ShutdownTimeout bounds graceful shutdown after the run context ends.
const ShutdownTimeout = 5 * time.Second

// Server delivers a single immutable view.
type Server struct {
	view    *view.View
	logger  *zap.Logger
	metrics *metrics.Collector
	origins []string
	addr    string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and lifecycle logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics records request metrics and serves them on /metrics.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithAllowedOrigins enables CORS for the given origins.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) {
		s.addr = addr
	}
}

// New creates a server for v.
func New(v *view.View, opts ...Option) *Server {
	s := &Server{view: v, addr: "localhost:8080"}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger)
	return s
}

// Handler returns the router with all middleware installed.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(Logger(s.logger, s.metrics))

	if len(s.origins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	router.Get("/", s.index)
	router.Get("/graph.json", s.graph)
	router.Get("/search", s.search)
	router.Get("/state", s.state)
	router.Route("/nodes/{id}", func(r chi.Router) {
		r.Get("/neighbors", s.neighbors)
		r.Get("/state", s.state)
	})
	router.Get("/health", s.health)
	if s.metrics != nil {
		router.Handle("/metrics", s.metrics.Handler())
	}

	return router
}

// Run mounts the view, serves until ctx is done, then shuts down
// gracefully and unmounts the view.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if err := s.view.Mount(); err != nil {
		ln.Close()
		return err
	}
	defer s.view.Unmount()

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("serving graph view",
			zap.String("addr", ln.Addr().String()),
			zap.String("view", s.view.ID()),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// GraphResponse is the body of GET /graph.json.
type GraphResponse struct {
	ID        string              `json:"id"`
	Stats     viz.Stats           `json:"stats"`
	Nodes     []viz.Node          `json:"nodes"`
	Edges     []viz.Edge          `json:"edges"`
	Adjacency map[string][]string `json:"adjacency"`
	Metadata  metadata.Report     `json:"metadata"`
}

// NeighborsResponse is the body of GET /nodes/{id}/neighbors.
type NeighborsResponse struct {
	ID        string   `json:"id"`
	Neighbors []string `json:"neighbors"`
}

// SearchResponse is the body of GET /search.
type SearchResponse struct {
	Query string   `json:"query"`
	IDs   []string `json:"ids"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	page, err := s.view.HTML()
	if err != nil {
		s.logger.Error("rendering page", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "rendering page failed"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(page))
}

func (s *Server) graph(w http.ResponseWriter, r *http.Request) {
	g := s.view.Graph()
	s.writeJSON(w, http.StatusOK, GraphResponse{
		ID:        s.view.ID(),
		Stats:     g.Stats(),
		Nodes:     g.Nodes,
		Edges:     g.Edges,
		Adjacency: g.Adjacency(),
		Metadata:  s.view.Report(),
	})
}

func (s *Server) neighbors(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ids, err := s.view.Neighbors(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, NeighborsResponse{ID: id, Neighbors: ids})
}

// state serves the highlight state for a focus node, or the neutral state
// on /state.
func (s *Server) state(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id != "" && !s.view.Graph().Has(id) {
		s.writeError(w, view.ErrUnknownNode)
		return
	}
	s.writeJSON(w, http.StatusOK, interact.Compute(s.view.Graph(), id))
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	ids := s.view.Graph().Search(q)
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, SearchResponse{Query: q, IDs: ids})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if !s.view.Mounted() {
		status = "unmounted"
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": status, "view": s.view.ID()})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, view.ErrUnknownNode) {
		code = http.StatusNotFound
	}
	s.writeJSON(w, code, ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encoding response", zap.Error(err))
	}
}
