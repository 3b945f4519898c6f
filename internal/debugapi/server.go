package debugapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Server is the small chi-routed HTTP surface fronting health and bulk
// export download.
type Server struct {
	http *http.Server
	log  zerolog.Logger
}

// Options configures a new Server.
type Options struct {
	Addr         string
	AuthToken    string // empty disables auth
	MQTT         MQTTStatus
	Store        Store
	Version      string
	StartTime    time.Time
	Log          zerolog.Logger
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewServer builds a Server. Callers decide whether to run it at all;
// nothing in the engine depends on it being reachable.
func NewServer(opts Options) *Server {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recoverer)
	r.Use(Logger(opts.Log))

	health := NewHealthHandler(opts.MQTT, opts.Store, opts.Version, opts.StartTime)
	r.Get("/api/v1/health", health.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(opts.AuthToken))
		r.Get("/api/v1/export", NewExportHandler(opts.Store).ServeHTTP)
	})

	srv := &http.Server{
		Addr:         opts.Addr,
		Handler:      r,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  opts.IdleTimeout,
	}
	return &Server{http: srv, log: opts.Log}
}

// Start runs the HTTP server until it is shut down. A clean shutdown
// reports a nil error.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("debug http server starting")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("debug http server shutting down")
	return s.http.Shutdown(ctx)
}
