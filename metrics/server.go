package metrics

import (
	"context"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/distributedio/respio/conf"
)

// Server is the status server exporting prometheus metrics and pprof
type Server struct {
	statusServer *http.Server
	addr         string
}

// NewServer creates a status server
func NewServer(config *conf.Status) *Server {
	return &Server{
		addr:         config.Listen,
		statusServer: &http.Server{Handler: http.DefaultServeMux},
	}
}

// Serve accepts incoming connections on the listener lis
func (s *Server) Serve(lis net.Listener) error {
	zap.L().Info("status server start", zap.String("addr", s.addr))
	return s.statusServer.Serve(lis)
}

// Stop closes the status server
func (s *Server) Stop() error {
	zap.L().Info("status server stop", zap.String("addr", s.addr))
	if s.statusServer != nil {
		return s.statusServer.Close()
	}
	return nil
}

// GracefulStop drains connections before stopping
func (s *Server) GracefulStop() error {
	zap.L().Info("status server graceful stop", zap.String("addr", s.addr))
	if s.statusServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return s.statusServer.Shutdown(ctx)
	}
	return nil
}

// ListenAndServe starts the service on addr
func (s *Server) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}
