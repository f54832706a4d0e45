package state

import (
	"errors"
	"fmt"
)

var (
	ErrUnexpectedCommand = errors.New("command not valid now")
	ErrGameOver          = errors.New("game is over")
	ErrNotStarted        = errors.New("game has not started")
	ErrAlreadyStarted    = errors.New("game already started")
	ErrUnknownRecipe     = errors.New("unknown recipe")
	ErrUnknownActivity   = errors.New("unknown evening activity")
	ErrUnknownCommand    = errors.New("unknown command")
)

// PhaseError reports a command sent while the engine waits for something else.
type PhaseError struct {
	Command CommandType
	Phase   Phase
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s is not valid during %s", e.Command, e.Phase)
}

func (e *PhaseError) Unwrap() error { return ErrUnexpectedCommand }
