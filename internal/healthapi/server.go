package healthapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/moviegrab/moviegrab-go-bot/internal/config"
)

// HealthResponse is the liveness payload. External uptime monitors pin the
// exact body, so the strings never change.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ReadinessProbe reports whether the bot behind this server is up. A nil
// probe means the server is always ready.
type ReadinessProbe func(ctx context.Context) error

// Server is the health-check HTTP surface that fronts the bot process.
type Server struct {
	cfg    config.ServerConfig
	probe  ReadinessProbe
	logger *zerolog.Logger
	srv    *http.Server
}

func NewServer(cfg config.ServerConfig, probe ReadinessProbe, logger *zerolog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		probe:  probe,
		logger: logger,
	}
	s.srv = &http.Server{
		Addr:         cfg.Bind,
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  cfg.IdleTimeout(),
	}
	return s
}

// Router builds the handler tree. Exposed so tests can drive it without a
// listener.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	r.Get("/", s.handleHealth)
	r.Get("/health", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Run serves until ctx is cancelled, then shuts down within the configured
// graceful timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("bind", s.cfg.Bind).Msg("health-check server listening")
		err := s.srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(err, "serving health endpoint")
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout())
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("graceful shutdown failed")
		return errors.Wrap(err, "shutting down health endpoint")
	}
	<-errCh

	s.logger.Info().Msg("health-check server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(HealthResponse{
		Status:  "OK",
		Message: "Bot is running!",
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.probe != nil {
		if err := s.probe(r.Context()); err != nil {
			probeFailures.Inc()
			s.logger.Warn().Err(err).Msg("readiness probe failed")
			writeJSONError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request handled")
	})
}
