// Package client is a pipelined RESP client built on resp.Request and
// resp.Response: encode any number of commands into one request, send it over
// a pooled connection and read back exactly as many replies.
package client

import (
	"context"
	"errors"
	"net"
	"time"

	pool "github.com/jolestar/go-commons-pool/v2"
	"github.com/shafreeck/retry"
	"go.uber.org/zap"

	"github.com/distributedio/respio/resp"
)

// ErrCorruptedRequest rejects a request whose sticky error flag is set.
var ErrCorruptedRequest = errors.New("refusing to send a corrupted request")

// Client talks RESP to one server address over a pool of connections. A Do
// call owns one pooled connection for the whole round trip, so pipelined
// replies of different calls never interleave.
type Client struct {
	addr string
	pool *pool.ObjectPool
}

// conn couples a socket with the buffer of bytes read but not yet consumed
// by the decoder.
type conn struct {
	nc  net.Conn
	buf resp.Buffer
}

// Option customizes the client.
type Option func(*Client)

// MaxActive bounds the number of pooled connections.
func MaxActive(n int) Option {
	return func(c *Client) { c.pool.Config.MaxTotal = n }
}

// New returns a client for addr. Connections are dialed lazily.
func New(addr string, opts ...Option) *Client {
	factory := pool.NewPooledObjectFactory(
		func(ctx context.Context) (interface{}, error) {
			nc, err := net.Dial("tcp", addr)
			if err != nil {
				return nil, err
			}
			return &conn{nc: nc}, nil
		},
		func(ctx context.Context, obj *pool.PooledObject) error {
			return obj.Object.(*conn).nc.Close()
		},
		nil, nil, nil)

	c := &Client{addr: addr}
	c.pool = pool.NewObjectPoolWithDefaultConfig(context.Background(), factory)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends req and decodes exactly req.CommandSize() replies. Dial failures
// are retried until ctx expires; a request that was already written is never
// retried, so no command can run twice.
func (c *Client) Do(ctx context.Context, req *resp.Request) (*resp.Response, error) {
	if req.HasError() {
		return nil, ErrCorruptedRequest
	}

	var res *resp.Response
	err := retry.Ensure(ctx, func() error {
		obj, err := c.pool.BorrowObject(ctx)
		if err != nil {
			zap.L().Debug("borrow connection failed", zap.String("addr", c.addr), zap.Error(err))
			return retry.Retriable(err)
		}
		cn := obj.(*conn)

		r, err := cn.roundtrip(ctx, req)
		if err != nil {
			c.pool.InvalidateObject(ctx, obj)
			return err
		}
		c.pool.ReturnObject(ctx, obj)
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// roundtrip writes the request and consumes replies until the response is
// complete.
func (cn *conn) roundtrip(ctx context.Context, req *resp.Request) (*resp.Response, error) {
	if deadline, ok := ctx.Deadline(); ok {
		cn.nc.SetDeadline(deadline)
		defer cn.nc.SetDeadline(time.Time{})
	}

	if err := req.SerializeTo(cn.nc); err != nil {
		return nil, err
	}

	res := resp.NewResponse()
	chunk := make([]byte, 4096)
	for {
		err := res.ConsumePartial(&cn.buf, req.CommandSize()-res.ReplySize())
		if err == nil {
			return res, nil
		}
		if err != resp.ErrNeedMoreData {
			return nil, err
		}
		n, rerr := cn.nc.Read(chunk)
		if n > 0 {
			cn.buf.Write(chunk[:n])
		}
		if rerr != nil {
			return nil, rerr
		}
	}
}

// Close tears the connection pool down.
func (c *Client) Close() {
	c.pool.Close(context.Background())
}
