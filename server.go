package respio

import (
	"crypto/tls"
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/distributedio/respio/command"
	"github.com/distributedio/respio/context"
	"github.com/distributedio/respio/metrics"
	"github.com/distributedio/respio/resp"
)

// Server implements a RESP protocol server whose commands are served by the
// handlers registered in its registry.
type Server struct {
	servCtx *context.ServerContext
	reg     *command.Registry
	tlsConf *tls.Config
	lis     net.Listener
	idgen   func() int64
	online  int64
}

// Option customizes the server.
type Option func(*Server)

// WithTLS makes the server wrap accepted listeners with the given TLS config.
func WithTLS(conf *tls.Config) Option {
	return func(s *Server) { s.tlsConf = conf }
}

// New a server instance
func New(ctx *context.ServerContext, reg *command.Registry, opts ...Option) *Server {
	// id generator starts from 1(the first client's id is 2, the same as redis)
	s := &Server{servCtx: ctx, reg: reg, idgen: GetClientID()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve the RESP requests
func (s *Server) Serve(lis net.Listener) error {
	if s.tlsConf != nil {
		lis = tls.NewListener(lis, s.tlsConf)
	}
	zap.L().Info("respio server start", zap.String("addr", lis.Addr().String()))
	s.servCtx.StartAt = time.Now()
	s.lis = lis
	for {
		conn, err := lis.Accept()
		if err != nil {
			zap.L().Error("server accept failed", zap.String("addr", lis.Addr().String()), zap.Error(err))
			return err
		}

		if max := s.servCtx.MaxConnection; max > 0 && atomic.LoadInt64(&s.online) >= max {
			var reply resp.Reply
			reply.SetError("ERR max number of clients reached")
			reply.Encode(conn)
			conn.Close()
			continue
		}

		cliCtx := context.NewClientContext(s.idgen(), conn)
		s.servCtx.Clients.Store(cliCtx.ID, cliCtx)

		cli := newClient(cliCtx, s, command.NewDispatcher(s.reg))

		zap.L().Info("recv connection", zap.String("addr", cliCtx.RemoteAddr),
			zap.Int64("clientid", cliCtx.ID))

		atomic.AddInt64(&s.online, 1)
		go func(cli *client, conn net.Conn) {
			metrics.GetMetrics().ConnectionOnlineGauge.Inc()
			if err := cli.serve(conn); err != nil {
				zap.L().Error("serve conn failed", zap.String("addr", cli.cliCtx.RemoteAddr),
					zap.Int64("clientid", cli.cliCtx.ID), zap.Error(err))
			}
			metrics.GetMetrics().ConnectionOnlineGauge.Dec()
			atomic.AddInt64(&s.online, -1)
			s.servCtx.Clients.Delete(cli.cliCtx.ID)
		}(cli, conn)
	}
}

// ListenAndServe serves on a specified address
func (s *Server) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

// Stop the server
func (s *Server) Stop() error {
	zap.L().Info("respio server stop", zap.String("addr", s.lis.Addr().String()))
	return s.lis.Close()
}

// GracefulStop the server, TODO close clients connections first
func (s *Server) GracefulStop() error {
	zap.L().Info("respio server graceful", zap.String("addr", s.lis.Addr().String()))
	return s.lis.Close()
}
