package world

import "errors"

// ErrTimeStepRange is returned when a time step falls outside [MinTimeStep, MaxTimeStep].
var ErrTimeStepRange = errors.New("time step out of range")
