package command

import (
	"strings"
)

// Dispatcher routes the commands of a single connection to handler
// instances. Instances are created lazily from the registry's prototypes and
// live until the connection closes, so all commands of one name on one
// connection hit the same instance.
//
// The active slot realizes transaction capture: while a handler that
// returned Continue holds it, every arriving command is routed to that
// handler regardless of its own name. The dispatcher has no notion of
// "transaction" beyond this rule.
//
// A Dispatcher belongs to exactly one connection and processes one command
// at a time; it needs no locking.
type Dispatcher struct {
	prototypes map[string]Handler
	instances  map[string]Handler
	active     Handler
}

// NewDispatcher returns a dispatcher over a snapshot of reg.
func NewDispatcher(reg *Registry) *Dispatcher {
	return &Dispatcher{
		prototypes: reg.Handlers(),
		instances:  make(map[string]Handler),
	}
}

// Dispatch routes ctx to the active handler, or to the instance for
// ctx.Name after a registry lookup. An unknown name at a non-capture
// boundary returns ErrUnKnownCommand and changes no state; the connection
// stays usable.
//
// The caller must not dispatch the next command until ctx.Completion fired.
func (d *Dispatcher) Dispatch(ctx *Context) error {
	h := d.active
	if h == nil {
		name := strings.ToLower(ctx.Name)
		prototype, ok := d.prototypes[name]
		if !ok {
			return ErrUnKnownCommand(ctx.Name)
		}
		if h, ok = d.instances[name]; !ok {
			h = prototype.New()
			d.instances[name] = h
		}
	}

	// When the active slot is non-empty it is h itself that was routed to,
	// so Continue keeps (or takes) the slot and OK releases it.
	switch h.Serve(ctx) {
	case Continue:
		d.active = h
	default:
		d.active = nil
	}
	return nil
}

// Capturing reports whether a handler currently holds the active slot.
func (d *Dispatcher) Capturing() bool {
	return d.active != nil
}
