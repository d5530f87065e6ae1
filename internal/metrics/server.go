package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// HealthFunc reports daemon health for /healthz.
type HealthFunc func() Health

// Health is the /healthz body.
type Health struct {
	Status     string `json:"status"`
	QueueDepth int    `json:"queue_depth"`
	Sheet      string `json:"sheet,omitempty"`
}

// NewRouter builds the metrics HTTP router.
func NewRouter(health HealthFunc) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, health())
	})
	return r
}

// Server serves the router on a TCP address. A zero Server (empty address)
// does nothing.
type Server struct {
	addr   string
	health HealthFunc
	logger *zap.Logger
	srv    *http.Server
}

// NewServer creates a server for addr.
func NewServer(addr string, health HealthFunc, logger *zap.Logger) *Server {
	return &Server{addr: addr, health: health, logger: logger}
}

// Start listens and serves in the background.
func (s *Server) Start() error {
	if s.addr == "" {
		return nil
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.srv = &http.Server{
		Handler:           NewRouter(s.health),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("metrics listening", zap.String("addr", ln.Addr().String()))
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
