package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds    = errors.New("history index out of range")
	ErrEditDeclined   = errors.New("decline edit")
	ErrUnknownName    = errors.New("name is not bound")
	ErrMissingOperand = errors.New("command requires an argument")
)
