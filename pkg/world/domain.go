package world

import "github.com/aretw0/automata/pkg/domain"

// Status is what a Domain reports after every tick.
type Status struct {
	Done    bool           `json:"done"`
	Details map[string]any `json:"details,omitempty"`
}

// Domain is the application a World drives, such as a robot in an arena.
// Hooks are called with the world lock held.
type Domain interface {
	// OnReset reinitializes domain state. Sensor and actuator values are already zero.
	OnReset(io *IO)
	// OnStep advances the domain after the machine produced io.Actuators.
	// It typically updates io.Sensors for the next tick.
	OnStep(io *IO)
	// Status reports whether the run is over.
	Status() Status
}

// IO exposes the world's signal vectors to Domain hooks.
type IO struct {
	Layout    domain.Layout
	Sensors   domain.Bits
	Actuators domain.Bits
}

// Sensor returns the named sensor value. Unknown names read as false.
func (io *IO) Sensor(name string) bool {
	i := io.Layout.SensorIndex(name)
	return i >= 0 && io.Sensors[i] == domain.One
}

// SetSensor sets the named sensor. Unknown names are ignored.
func (io *IO) SetSensor(name string, on bool) {
	if i := io.Layout.SensorIndex(name); i >= 0 {
		io.Sensors[i] = bit(on)
	}
}

// Actuator returns the named actuator value. Unknown names read as false.
func (io *IO) Actuator(name string) bool {
	i := io.Layout.ActuatorIndex(name)
	return i >= 0 && io.Actuators[i] == domain.One
}

func bit(on bool) domain.Bit {
	if on {
		return domain.One
	}
	return domain.Zero
}

// idle is the Domain used when none is configured: it never finishes.
type idle struct{}

func (idle) OnReset(*IO)    {}
func (idle) OnStep(*IO)     {}
func (idle) Status() Status { return Status{} }
