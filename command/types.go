// Package command recognizes session control words typed instead of trip details.
package command

import "context"

// Command is a session control action. None means the input is a normal chat turn.
type Command uint8

const (
	None Command = iota
	Cancel
	Restart
)

func (c Command) String() string {
	switch c {
	case Cancel:
		return "cancel"
	case Restart:
		return "restart"
	default:
		return "none"
	}
}

type Parser interface {
	ParseCommand(ctx context.Context, input string) (Command, error)
}
