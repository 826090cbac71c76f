package command

import (
	"github.com/distributedio/respio/context"
	"github.com/distributedio/respio/resp"
)

// Result is the outcome of a handler invocation.
type Result int

const (
	// OK means the command is finished. If the connection's active slot is
	// held by this handler it is cleared and dispatch-table lookups resume.
	OK Result = iota

	// Continue makes the handler capture every subsequent command on the
	// connection, whatever its name, until it returns OK. This is the whole
	// transaction mechanism: a MULTI-style handler returns Continue from the
	// opening command through the commands it queues, and OK on the ending
	// marker.
	Continue
)

// Handler serves the commands of one name on one connection.
//
// Serve fills ctx.Reply and fires ctx.Completion exactly once when the reply
// is ready to flush; it may do so from another goroutine after returning, so
// long-running work never blocks other connections. The connection does not
// dispatch its next command until the completion fires.
//
// New returns a fresh instance. The server calls it once per connection per
// command name, lazily at first use, so a handler can keep per-connection
// state across invocations.
type Handler interface {
	Serve(ctx *Context) Result
	New() Handler
}

// Context is the runtime context of a command.
type Context struct {
	Name       string
	Args       []string
	Reply      *resp.Reply
	Completion *Completion
	TraceID    string
	*context.Context
}

// HandlerFunc adapts a stateless function to a Handler. Stateless handlers
// are shared rather than cloned.
type HandlerFunc func(ctx *Context) Result

// Serve calls f.
func (f HandlerFunc) Serve(ctx *Context) Result { return f(ctx) }

// New returns f itself; a function carries no per-connection state.
func (f HandlerFunc) New() Handler { return f }
