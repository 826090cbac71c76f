package command

import (
	"errors"
	"fmt"
)

const (
	// UnKnownCommandStr is the reply for a command name missing from the registry
	UnKnownCommandStr = "ERR unknown command '%s'"
)

var (
	// Queued is the simple string "QUEUED" returned while a transaction captures commands
	Queued = "QUEUED"

	// ErrNilHandler rejects registering a nil handler prototype
	ErrNilHandler = errors.New("nil handler prototype")
)

// ErrUnKnownCommand returns the dispatch error for cmd
func ErrUnKnownCommand(cmd string) error {
	return fmt.Errorf(UnKnownCommandStr, cmd)
}
