package domain

import (
	"fmt"
	"strings"
)

// Bit is a boolean signal value: a sensor reading or an actuator output.
type Bit uint8

const (
	Zero Bit = 0
	One  Bit = 1
)

// ParseBit parses "0" or "1".
func ParseBit(s string) (Bit, error) {
	switch s {
	case "0":
		return Zero, nil
	case "1":
		return One, nil
	}
	return Zero, fmt.Errorf("%w: bit %q", ErrInvalidSignal, s)
}

func (b Bit) String() string {
	if b == One {
		return "1"
	}
	return "0"
}

// Bits is an ordered vector of bits.
type Bits []Bit

// ZeroBits returns an all-zero vector of length n.
func ZeroBits(n int) Bits {
	return make(Bits, n)
}

// ParseBits parses a compact string such as "101".
func ParseBits(s string) (Bits, error) {
	out := make(Bits, 0, len(s))
	for _, r := range s {
		b, err := ParseBit(string(r))
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Or returns the element-wise union of v and o. Both must have the same length.
func (v Bits) Or(o Bits) Bits {
	if len(v) != len(o) {
		fault(ErrVectorLength, "or of %d and %d bits", len(v), len(o))
	}
	out := make(Bits, len(v))
	for i := range v {
		if v[i] == One || o[i] == One {
			out[i] = One
		}
	}
	return out
}

// Clone returns an independent copy of v.
func (v Bits) Clone() Bits {
	if v == nil {
		return nil
	}
	out := make(Bits, len(v))
	copy(out, v)
	return out
}

// Equal reports whether v and o hold the same values.
func (v Bits) Equal(o Bits) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if v[i] != o[i] {
			return false
		}
	}
	return true
}

func (v Bits) String() string {
	var sb strings.Builder
	for _, b := range v {
		sb.WriteString(b.String())
	}
	return sb.String()
}

// Guard is one element of a transition input vector.
type Guard uint8

const (
	GuardZero Guard = iota
	GuardOne
	GuardAny // "don't care"
)

// ParseGuard parses "0", "1" or the wildcard "-".
func ParseGuard(s string) (Guard, error) {
	switch s {
	case "0":
		return GuardZero, nil
	case "1":
		return GuardOne, nil
	case "-":
		return GuardAny, nil
	}
	return GuardAny, fmt.Errorf("%w: guard %q", ErrInvalidSignal, s)
}

// GuardOf returns the exact guard for a bit.
func GuardOf(b Bit) Guard {
	if b == One {
		return GuardOne
	}
	return GuardZero
}

// Accepts reports whether the guard matches the bit.
func (g Guard) Accepts(b Bit) bool {
	switch g {
	case GuardAny:
		return true
	case GuardOne:
		return b == One
	default:
		return b == Zero
	}
}

func (g Guard) String() string {
	switch g {
	case GuardOne:
		return "1"
	case GuardAny:
		return "-"
	}
	return "0"
}

// Guards is an ordered input guard vector.
type Guards []Guard

// AnyGuards returns a vector of n wildcards.
func AnyGuards(n int) Guards {
	out := make(Guards, n)
	for i := range out {
		out[i] = GuardAny
	}
	return out
}

// ParseGuards parses a compact string such as "1-0".
func ParseGuards(s string) (Guards, error) {
	out := make(Guards, 0, len(s))
	for _, r := range s {
		g, err := ParseGuard(string(r))
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// Accepts reports whether every guard matches the bit at the same index.
func (v Guards) Accepts(bits Bits) bool {
	if len(v) != len(bits) {
		fault(ErrVectorLength, "%d guards against %d sensor values", len(v), len(bits))
	}
	for i, g := range v {
		if !g.Accepts(bits[i]) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of v.
func (v Guards) Clone() Guards {
	if v == nil {
		return nil
	}
	out := make(Guards, len(v))
	copy(out, v)
	return out
}

func (v Guards) String() string {
	var sb strings.Builder
	for _, g := range v {
		sb.WriteString(g.String())
	}
	return sb.String()
}

// Signal describes a named boolean sensor or actuator.
type Signal struct {
	Name        string
	Description string
}

// Layout is the fixed set of sensors and actuators a machine is wired to.
type Layout struct {
	Sensors   []Signal
	Actuators []Signal
}

// SensorIndex returns the index of the named sensor or -1.
func (l Layout) SensorIndex(name string) int {
	return indexOfSignal(l.Sensors, name)
}

// ActuatorIndex returns the index of the named actuator or -1.
func (l Layout) ActuatorIndex(name string) int {
	return indexOfSignal(l.Actuators, name)
}

func indexOfSignal(signals []Signal, name string) int {
	for i, s := range signals {
		if s.Name == name {
			return i
		}
	}
	return -1
}
