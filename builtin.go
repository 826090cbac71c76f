package respio

import (
	"github.com/distributedio/respio/command"
)

// ping replies PONG, or echoes its single argument like redis-server.
func ping(ctx *command.Context) command.Result {
	switch len(ctx.Args) {
	case 0:
		ctx.Reply.SetSimpleString("PONG")
	case 1:
		ctx.Reply.SetBulkString([]byte(ctx.Args[0]))
	default:
		ctx.Reply.SetError("ERR wrong number of arguments for 'ping' command")
	}
	ctx.Completion.Complete()
	return command.OK
}

// echo replies its single argument as a bulk string.
func echo(ctx *command.Context) command.Result {
	if len(ctx.Args) != 1 {
		ctx.Reply.SetError("ERR wrong number of arguments for 'echo' command")
	} else {
		ctx.Reply.SetBulkString([]byte(ctx.Args[0]))
	}
	ctx.Completion.Complete()
	return command.OK
}

// DefaultRegistry returns a registry preloaded with the liveness commands a
// bare server answers; applications register their own handlers on top.
func DefaultRegistry() *command.Registry {
	reg := command.NewRegistry()
	reg.Register("ping", command.HandlerFunc(ping))
	reg.Register("echo", command.HandlerFunc(echo))
	return reg
}
