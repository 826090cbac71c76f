package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/distributedio/respio/resp"
)

// countingHandler records which instance served which commands.
type countingHandler struct {
	created *int
	served  []string
}

func (h *countingHandler) Serve(ctx *Context) Result {
	h.served = append(h.served, ctx.Name)
	ctx.Reply.SetSimpleString("OK")
	ctx.Completion.Complete()
	return OK
}

func (h *countingHandler) New() Handler {
	*h.created++
	return &countingHandler{created: h.created}
}

// txnHandler captures commands until it sees the end marker.
type txnHandler struct {
	end    string
	queued []string
}

func (h *txnHandler) Serve(ctx *Context) Result {
	if strings.EqualFold(ctx.Name, h.end) {
		ctx.Reply.SetInteger(int64(len(h.queued)))
		ctx.Completion.Complete()
		h.queued = nil
		return OK
	}
	h.queued = append(h.queued, ctx.Name)
	ctx.Reply.SetSimpleString(Queued)
	ctx.Completion.Complete()
	return Continue
}

func (h *txnHandler) New() Handler {
	return &txnHandler{end: h.end}
}

func newTestContext(name string, args ...string) *Context {
	return &Context{
		Name:       name,
		Args:       args,
		Reply:      &resp.Reply{},
		Completion: NewCompletion(),
	}
}

func TestRegisterDuplicate(t *testing.T) {
	reg := NewRegistry()
	created := 0
	assert.NoError(t, reg.Register("get", &countingHandler{created: &created}))
	assert.Error(t, reg.Register("get", &countingHandler{created: &created}))
	// names are case-insensitive
	assert.Error(t, reg.Register("GET", &countingHandler{created: &created}))
	assert.Error(t, reg.Register("set", nil))
}

func TestDispatchUnknownCommand(t *testing.T) {
	reg := NewRegistry()
	created := 0
	assert.NoError(t, reg.Register("get", &countingHandler{created: &created}))

	d := NewDispatcher(reg)
	err := d.Dispatch(newTestContext("nosuch"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command 'nosuch'")

	// the connection stays usable afterwards
	assert.NoError(t, d.Dispatch(newTestContext("GET", "k")))
}

func TestDispatchLazyInstancePerConnection(t *testing.T) {
	reg := NewRegistry()
	created := 0
	assert.NoError(t, reg.Register("get", &countingHandler{created: &created}))

	d1 := NewDispatcher(reg)
	assert.Zero(t, created, "instances are created lazily, not at setup")

	assert.NoError(t, d1.Dispatch(newTestContext("get")))
	assert.NoError(t, d1.Dispatch(newTestContext("GET")))
	assert.Equal(t, 1, created, "same connection reuses its instance")

	d2 := NewDispatcher(reg)
	assert.NoError(t, d2.Dispatch(newTestContext("get")))
	assert.Equal(t, 2, created, "another connection gets its own instance")
}

func TestDispatchTransactionCapture(t *testing.T) {
	reg := NewRegistry()
	created := 0
	getProto := &countingHandler{created: &created}
	assert.NoError(t, reg.Register("multi", &txnHandler{end: "exec"}))
	assert.NoError(t, reg.Register("get", getProto))

	d := NewDispatcher(reg)

	// multi opens the capture
	ctx := newTestContext("multi")
	assert.NoError(t, d.Dispatch(ctx))
	assert.True(t, d.Capturing())
	assert.Equal(t, Queued, ctx.Reply.Text())

	// commands with foreign names are routed to the capturing handler,
	// not to their own handlers
	for _, name := range []string{"get", "set", "whatever"} {
		ctx = newTestContext(name)
		assert.NoError(t, d.Dispatch(ctx))
		assert.True(t, d.Capturing())
		assert.Equal(t, Queued, ctx.Reply.Text())
	}
	assert.Zero(t, created, "captured get never reached the get handler")

	// the end marker closes the capture: multi + 3 captured commands
	ctx = newTestContext("exec")
	assert.NoError(t, d.Dispatch(ctx))
	assert.False(t, d.Capturing())
	assert.Equal(t, int64(4), ctx.Reply.Integer())

	// dispatch-table lookups resume
	assert.NoError(t, d.Dispatch(newTestContext("get")))
	assert.Equal(t, 1, created)

	// unknown names fail again outside the capture
	assert.Error(t, d.Dispatch(newTestContext("whatever")))
}

func TestCompletionIsSingleShot(t *testing.T) {
	c := NewCompletion()
	select {
	case <-c.Done():
		t.Fatal("completion fired before Complete")
	default:
	}
	c.Complete()
	c.Complete() // second call is a no-op
	<-c.Done()
}

func TestHandlerFunc(t *testing.T) {
	reg := NewRegistry()
	assert.NoError(t, reg.Register("ping", HandlerFunc(func(ctx *Context) Result {
		ctx.Reply.SetSimpleString("PONG")
		ctx.Completion.Complete()
		return OK
	})))

	d := NewDispatcher(reg)
	ctx := newTestContext("ping")
	assert.NoError(t, d.Dispatch(ctx))
	assert.Equal(t, "PONG", ctx.Reply.Text())
	<-ctx.Completion.Done()
}
