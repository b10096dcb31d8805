// Package server exposes an adapter's capabilities and decoded schema over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/koustreak/rsadapter/internal/config"
	"github.com/koustreak/rsadapter/internal/database"
	"github.com/koustreak/rsadapter/internal/logger"
	"github.com/koustreak/rsadapter/internal/schema"
)

// Service is the adapter surface the HTTP handlers read from.
type Service interface {
	Name() string
	Ping(ctx context.Context) error
	FeatureSet() database.FeatureSet
	NativeTypes() map[database.ColumnKind]database.NativeType
	Columns(ctx context.Context, table string) ([]database.Column, error)
	ClearSchemaCache(tables ...string)
}

// Server routes requests to a Service.
type Server struct {
	svc       Service
	reader    schema.Reader
	snapshots *schema.SnapshotStore
	log       *logger.Logger
	router    chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithReader enables the schema listing routes.
func WithReader(r schema.Reader) Option {
	return func(s *Server) { s.reader = r }
}

// WithSnapshots enables the snapshot routes. They also need a Reader.
func WithSnapshots(st *schema.SnapshotStore) Option {
	return func(s *Server) { s.snapshots = st }
}

// New builds the router.
func New(svc Service, opts ...Option) *Server {
	s := &Server{svc: svc, log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/capabilities", s.handleCapabilities)
	r.Get("/native-types", s.handleNativeTypes)

	r.Route("/tables/{table}", func(r chi.Router) {
		r.Get("/columns", s.handleColumns)
		r.Delete("/columns", s.handleClearColumns)
	})

	if s.reader != nil {
		r.Route("/schemas/{schema}", func(r chi.Router) {
			r.Get("/tables", s.handleListTables)
			if s.snapshots != nil {
				r.Get("/snapshots", s.handleListSnapshots)
				r.Post("/snapshots", s.handleTakeSnapshot)
				r.Get("/snapshots/latest", s.handleLatestSnapshot)
			}
		})
	}

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoWith("http server listening", map[string]any{"addr": cfg.Addr, "adapter": s.svc.Name()})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	s.log.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(s.log.WithContext(r.Context())))

		s.log.HTTPEvent().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}
