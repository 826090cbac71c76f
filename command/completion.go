package command

import "sync"

// Completion is the single-shot signal a handler fires when its reply is
// ready to flush. The connection waits for it before dispatching the next
// queued command, which keeps per-connection processing strictly sequential
// while the handler itself may finish on any goroutine.
//
// Completing more than once is a no-op, as is completing after the
// connection is gone; the reply is then silently discarded.
type Completion struct {
	once sync.Once
	done chan struct{}
}

// NewCompletion returns an unfired completion.
func NewCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

// Complete fires the signal.
func (c *Completion) Complete() {
	c.once.Do(func() { close(c.done) })
}

// Done returns a channel that is closed once Complete was called.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}
