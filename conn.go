package respio

import (
	"bytes"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/distributedio/respio/command"
	"github.com/distributedio/respio/context"
	"github.com/distributedio/respio/metrics"
	"github.com/distributedio/respio/resp"
)

type client struct {
	cliCtx     *context.ClientContext
	server     *Server
	conn       net.Conn
	dispatcher *command.Dispatcher

	// quit stops the reader goroutine when serve returns
	quit chan struct{}
}

func newClient(cliCtx *context.ClientContext, s *Server, dispatcher *command.Dispatcher) *client {
	return &client{
		cliCtx:     cliCtx,
		server:     s,
		dispatcher: dispatcher,
		quit:       make(chan struct{}),
	}
}

// Write to conn and log error if needed
func (c *client) Write(p []byte) (int, error) {
	n, err := c.conn.Write(p)
	if err != nil {
		zap.L().Error("write net failed", zap.String("addr", c.cliCtx.RemoteAddr),
			zap.Int64("clientid", c.cliCtx.ID),
			zap.String("command", c.cliCtx.LastCmd))
		c.conn.Close()
	}
	return n, err
}

func (c *client) serve(conn net.Conn) error {
	c.conn = conn
	defer close(c.quit)

	rootCtx, rootCancel := context.WithCancel(context.New(c.cliCtx, c.server.servCtx))
	defer rootCancel()

	// Use a separate goroutine to keep reading commands
	// then we can detect a closed connection as soon as possible.
	// It only works when the cmd channel is not blocked
	cmdc := make(chan []string, 128)
	errc := make(chan error)
	go c.readCommands(cmdc, errc)

	for {
		var cmd []string
		select {
		case <-c.cliCtx.Done:
			return c.conn.Close()
		case cmd = <-cmdc:
		case err := <-errc:
			zap.L().Error("read command failed", zap.String("addr", c.cliCtx.RemoteAddr),
				zap.Int64("clientid", c.cliCtx.ID), zap.Error(err))
			c.conn.Close()
			return err
		}
		if len(cmd) == 0 {
			continue
		}

		c.cliCtx.Updated = time.Now()
		c.cliCtx.LastCmd = cmd[0]

		ctx := &command.Context{
			Name:       cmd[0],
			Args:       cmd[1:],
			Reply:      &resp.Reply{},
			Completion: command.NewCompletion(),
			TraceID:    GenerateTraceID(),
		}
		ctx.Context = rootCtx

		if env := zap.L().Check(zap.DebugLevel, "recv client command"); env != nil {
			env.Write(zap.String("addr", c.cliCtx.RemoteAddr),
				zap.Int64("clientid", c.cliCtx.ID),
				zap.String("traceid", ctx.TraceID),
				zap.String("command", ctx.Name))
		}

		capturing := c.dispatcher.Capturing()
		start := time.Now()
		if err := c.dispatcher.Dispatch(ctx); err != nil {
			metrics.GetMetrics().UnknownCommandCounterVec.WithLabelValues(strings.ToLower(ctx.Name)).Inc()
			var reply resp.Reply
			reply.SetError(err.Error())
			if err := reply.Encode(c); err != nil {
				return err
			}
			continue
		}
		if capturing {
			metrics.GetMetrics().CapturedCommandCounter.Inc()
		}

		// wait for the handler's completion before the next command; on
		// teardown the in-flight reply is silently discarded
		select {
		case <-ctx.Completion.Done():
		case <-c.cliCtx.Done:
			return c.conn.Close()
		}
		if !ctx.Reply.IsNil() {
			if err := ctx.Reply.Encode(c); err != nil {
				return err
			}
		}
		cost := time.Since(start).Seconds()
		metrics.GetMetrics().CommandCallHistogramVec.WithLabelValues(strings.ToLower(ctx.Name)).Observe(cost)
	}
}

// readCommands feeds complete inbound commands to cmdc. Commands arrive as
// RESP arrays of bulk strings and go through the same incremental decoder as
// client-side replies, so a desynchronized stream is detected exactly once
// and tears the connection down.
func (c *client) readCommands(cmdc chan<- []string, errc chan<- error) {
	var buf resp.Buffer
	chunk := make([]byte, 4096)
	for {
		for buf.Len() > 0 {
			cmd, err := parseCommand(&buf)
			if err == resp.ErrNeedMoreData {
				break
			}
			if err != nil {
				metrics.GetMetrics().ProtocolErrorCounter.Inc()
				select {
				case errc <- err:
				case <-c.quit:
				}
				return
			}
			select {
			case cmdc <- cmd:
			case <-c.quit:
				return
			}
		}

		n, err := c.conn.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if err != nil {
			select {
			case errc <- err:
			case <-c.quit:
			}
			return
		}
	}
}

// parseCommand extracts one complete command from buf, or returns
// ErrNeedMoreData leaving buf untouched. Lines not starting with '*' are
// parsed as inline commands.
func parseCommand(buf *resp.Buffer) ([]string, error) {
	data := buf.Bytes()
	if len(data) == 0 {
		return nil, resp.ErrNeedMoreData
	}
	if data[0] != '*' {
		return parseInlineCommand(buf)
	}

	res := resp.NewResponse()
	if err := res.ConsumePartial(buf, 1); err != nil {
		return nil, err
	}
	array := res.Reply(0)
	argv := make([]string, 0, array.Size())
	for i := 0; i < array.Size(); i++ {
		arg := array.Element(i)
		if arg.Type() != resp.TypeBulkString || arg.IsNull() {
			return nil, resp.ErrInvalidProtocol
		}
		argv = append(argv, string(arg.Bytes()))
	}
	return argv, nil
}

func parseInlineCommand(buf *resp.Buffer) ([]string, error) {
	data := buf.Bytes()
	idx := bytes.IndexByte(data, '\n')
	if idx < 0 {
		return nil, resp.ErrNeedMoreData
	}
	line := strings.TrimRight(string(data[:idx]), "\r")
	buf.Discard(idx + 1)
	return strings.Fields(line), nil
}
