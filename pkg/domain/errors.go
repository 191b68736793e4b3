package domain

import (
	"errors"
	"fmt"
)

// ErrForeignState is raised when a state owned by another machine (or already removed) is used.
var ErrForeignState = errors.New("state is not owned by this machine")

// ErrForeignTransition is raised when a transition owned by another machine (or already removed) is used.
var ErrForeignTransition = errors.New("transition is not owned by this machine")

// ErrVectorLength is raised when a signal vector does not match the machine layout.
var ErrVectorLength = errors.New("signal vector length mismatch")

// ErrIndexOutOfRange is raised when a signal or encoding index is outside its vector.
var ErrIndexOutOfRange = errors.New("index out of range")

// ErrInvalidSignal is returned when a textual signal value is not part of the alphabet.
var ErrInvalidSignal = errors.New("invalid signal value")

// fault panics with err wrapped in a formatted message.
func fault(err error, format string, args ...any) {
	panic(fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...)))
}
