package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"

	"github.com/matheus3301/nikki/internal/api"
	"github.com/matheus3301/nikki/internal/profile"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Server manages the gRPC server lifecycle for a profile daemon. It is also
// a monitor probe: a listener that died or a socket file that vanished is
// recreated.
type Server struct {
	grpcServer *grpc.Server
	socketPath string
	logger     *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	serving  atomic.Int32
	stopped  atomic.Bool
}

// NewServer creates a gRPC server bound to the profile's Unix domain socket.
func NewServer(p Params, logger *zap.Logger, svc *api.Service) (*Server, error) {
	socketPath := p.SocketPath
	if socketPath == "" {
		socketPath = profile.SocketPath(p.Profile)
	}

	listener, err := listen(socketPath)
	if err != nil {
		return nil, err
	}

	srv := grpc.NewServer()
	api.Register(srv, svc)

	return &Server{
		grpcServer: srv,
		listener:   listener,
		socketPath: socketPath,
		logger:     logger,
	}, nil
}

func listen(socketPath string) (net.Listener, error) {
	// Clean stale socket if it exists.
	if _, err := os.Stat(socketPath); err == nil {
		_ = os.Remove(socketPath)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("listen unix socket: %w", err)
	}

	if err := os.Chmod(socketPath, 0600); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("chmod socket: %w", err)
	}
	return listener, nil
}

// Start begins serving gRPC requests. Blocks until stopped or the listener
// fails.
func (s *Server) Start() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	s.serving.Add(1)
	defer s.serving.Add(-1)
	s.logger.Info("gRPC server starting", zap.String("socket", s.socketPath))
	err := s.grpcServer.Serve(ln)
	if s.stopped.Load() || errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	s.mu.Lock()
	replaced := s.listener != ln
	s.mu.Unlock()
	if replaced {
		return nil
	}
	return err
}

// Stop performs a graceful shutdown and removes the socket file.
func (s *Server) Stop(_ context.Context) {
	s.stopped.Store(true)
	s.logger.Info("gRPC server stopping")
	s.grpcServer.GracefulStop()
	_ = os.Remove(s.socketPath)
}

// Name identifies the probe.
func (s *Server) Name() string { return "control" }

// Alive reports whether a serve loop is running on an existing socket file.
func (s *Server) Alive() bool {
	if s.stopped.Load() {
		return true
	}
	if s.serving.Load() == 0 {
		return false
	}
	_, err := os.Stat(s.socketPath)
	return err == nil
}

// Restore replaces the listener and starts a new serve loop.
func (s *Server) Restore(_ context.Context) error {
	if s.stopped.Load() {
		return nil
	}
	s.mu.Lock()
	old := s.listener
	s.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}

	ln, err := listen(s.socketPath)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("gRPC server error", zap.Error(err))
		}
	}()
	return nil
}
