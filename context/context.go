package context

import (
	"context"
	"net"
	"sync"
	"time"
)

// Version information.
var (
	ReleaseVersion = "None"
	BuildTS        = "None"
	GitHash        = "None"
	GitBranch      = "None"
	GitLog         = "None"
	GolangVersion  = "None"
	ConfigFile     = "None"
)

// ClientContext is the runtime context of a client connection
type ClientContext struct {
	RemoteAddr string // Client remote address
	ID         int64  // Client uniq ID
	Name       string // Name is set by client setname
	Created    time.Time
	Updated    time.Time
	LastCmd    string
	Close      func() error

	// Done is closed to tear the connection down; an in-flight handler
	// completion after that is discarded
	Done chan struct{}
}

// NewClientContext new client context object, id must be uniq
func NewClientContext(id int64, conn net.Conn) *ClientContext {
	now := time.Now()
	return &ClientContext{
		ID:         id,
		Created:    now,
		Updated:    now,
		RemoteAddr: conn.RemoteAddr().String(),
		Done:       make(chan struct{}),
		Close:      conn.Close,
	}
}

// ServerContext is the runtime context of the server
type ServerContext struct {
	MaxConnection int64
	Clients       sync.Map
	StartAt       time.Time
}

// Context combines the client and server context
type Context struct {
	context.Context
	Client *ClientContext
	Server *ServerContext
}

// New a context
func New(c *ClientContext, s *ServerContext) *Context {
	return &Context{Context: context.Background(), Client: c, Server: s}
}

// CancelFunc tells an operation to abandon its work
type CancelFunc context.CancelFunc

// WithCancel returns a copy of parent with a new Done channel
func WithCancel(parent *Context) (*Context, CancelFunc) {
	ctx := *parent
	child, cancel := context.WithCancel(parent.Context)
	ctx.Context = child
	return &ctx, CancelFunc(cancel)
}

// WithTimeout returns a copy of parent that is canceled after timeout
func WithTimeout(parent *Context, timeout time.Duration) (*Context, CancelFunc) {
	ctx := *parent
	child, cancel := context.WithTimeout(parent.Context, timeout)
	ctx.Context = child
	return &ctx, CancelFunc(cancel)
}
