package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/depforce/internal/validation"
	"github.com/matzehuels/depforce/pkg/errors"
	"github.com/matzehuels/depforce/pkg/force"
	"github.com/matzehuels/depforce/pkg/graph"
	"github.com/matzehuels/depforce/pkg/metrics"
	"github.com/matzehuels/depforce/pkg/pipeline"
	"github.com/matzehuels/depforce/pkg/render"
	"github.com/matzehuels/depforce/pkg/sim"
)

// Defaults for Config.
const (
	DefaultAddr         = "127.0.0.1:8080"
	DefaultMaxFPS       = 60.0
	DefaultTickInterval = sim.DefaultFrameInterval
	shutdownTimeout     = 5 * time.Second
)

// Config holds server settings.
type Config struct {
	Addr string `toml:"addr" yaml:"addr" validate:"required"`

	// MaxFPS caps frames pushed per connection; 0 sends every tick.
	MaxFPS float64 `toml:"max_fps" yaml:"max_fps" validate:"gte=0"`

	// TickInterval paces each live run.
	TickInterval time.Duration `toml:"tick_interval" yaml:"tick_interval" validate:"gte=0"`

	Seed   uint64       `toml:"seed" yaml:"seed"`
	Params force.Params `toml:"forces" yaml:"forces"`
}

// DefaultConfig returns a Config listening on localhost.
func DefaultConfig() Config {
	return Config{
		Addr:         DefaultAddr,
		MaxFPS:       DefaultMaxFPS,
		TickInterval: DefaultTickInterval,
		Seed:         sim.DefaultSeed,
		Params:       force.DefaultParams(),
	}
}

// LoadFunc returns the current snapshot. refresh bypasses any cache.
type LoadFunc func(ctx context.Context, refresh bool) (graph.GraphData, error)

// Option configures a Server.
type Option func(*Server)

// WithMetrics sets the registry used for /metrics and connection gauges.
func WithMetrics(r *metrics.Registry) Option {
	return func(s *Server) {
		if r != nil {
			s.metrics = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server serves the live view and the layout API.
type Server struct {
	cfg      Config
	runner   *pipeline.Runner
	load     LoadFunc
	metrics  *metrics.Registry
	logger   *log.Logger
	upgrader websocket.Upgrader
	router   chi.Router
	page     []byte

	mu       sync.RWMutex
	graph    graph.GraphData
	loaded   bool
	sessions map[string]*session
}

// New validates cfg and builds the router. runner computes API layouts;
// load supplies the snapshot.
func New(cfg Config, runner *pipeline.Runner, load LoadFunc, opts ...Option) (*Server, error) {
	if err := validation.Struct(cfg); err != nil {
		return nil, err
	}
	if load == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "server needs a snapshot loader")
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, nil)
	}

	page, err := render.LivePage(render.PageOptions{SocketPath: "/ws"})
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		runner:  runner,
		load:    load,
		metrics: metrics.NewRegistry(),
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		page:     page,
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)
	r.Use(s.logRequests)

	r.Get("/", s.handlePage)
	r.Get("/ws", s.handleSocket)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/graph", s.handleGraph)
		r.Get("/layout", s.handleLayout)
		r.Post("/layout", s.handleLayoutPost)
		r.Get("/render.{format}", s.handleRender)
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on cfg.Addr until ctx is done, then shuts down
// gracefully and closes every live connection.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving live view", "addr", "http://"+s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(errors.ErrCodeNetwork, err, "listen on %s", s.cfg.Addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.closeSessions()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "shutdown")
	}
	return nil
}

// Graph returns the current snapshot, loading it on first use.
func (s *Server) Graph(ctx context.Context) (graph.GraphData, error) {
	s.mu.RLock()
	g, ok := s.graph, s.loaded
	s.mu.RUnlock()
	if ok {
		return g, nil
	}
	return s.Reload(ctx, false)
}

// Reload fetches the snapshot again and pushes it to every connection.
func (s *Server) Reload(ctx context.Context, refresh bool) (graph.GraphData, error) {
	g, err := s.load(ctx, refresh)
	if err != nil {
		s.logger.Warn("snapshot load failed", "err", err)
		return graph.GraphData{}, err
	}
	s.SetGraph(g)
	return g, nil
}

// SetGraph replaces the snapshot. Connections with a known viewport start
// a new run; identical snapshots leave running layouts untouched.
func (s *Server) SetGraph(g graph.GraphData) {
	s.mu.Lock()
	s.graph, s.loaded = g, true
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	s.logger.Debug("snapshot updated", "nodes", len(g.Nodes), "edges", len(g.Edges), "connections", len(sessions))
	for _, sess := range sessions {
		sess.refresh(g)
	}
}

func (s *Server) addSession(sess *session) {
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	s.metrics.SocketOpened()
}

func (s *Server) removeSession(sess *session) {
	s.mu.Lock()
	_, ok := s.sessions[sess.id]
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	if ok {
		s.metrics.SocketClosed()
	}
}

func (s *Server) closeSessions() {
	s.mu.RLock()
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()
	for _, sess := range sessions {
		sess.close()
	}
}

// layoutOptions carries the configured seed and forces into API layouts.
func (s *Server) layoutOptions() pipeline.Options {
	params := s.cfg.Params
	return pipeline.Options{Seed: s.cfg.Seed, Params: &params}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
