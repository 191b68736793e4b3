// Package robot is a demo domain: a robot in a walled grid arena, driven by
// one obstacle sensor and two actuators (forward, turn right).
package robot

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/schema"
	"github.com/aretw0/automata/pkg/world"
)

const (
	SensorObstacle  = "obstacle"
	ActuatorForward = "forward"
	ActuatorTurn    = "turn"

	DefaultMaxSteps = 200
)

//go:embed wall_follower.yaml
var wallFollower []byte

// Layout is the signal layout every robot machine must be wired to.
func Layout() domain.Layout {
	return domain.Layout{
		Sensors:   []domain.Signal{{Name: SensorObstacle}},
		Actuators: []domain.Signal{{Name: ActuatorForward}, {Name: ActuatorTurn}},
	}
}

// WallFollower returns a fresh copy of the bundled machine that solves Cornered.
func WallFollower() *schema.Document {
	doc, err := schema.Unmarshal(wallFollower, schema.FormatYAML)
	if err != nil {
		panic(fmt.Sprintf("robot: bundled machine: %v", err))
	}
	return doc
}

type Heading int

const (
	East Heading = iota
	South
	West
	North
)

func (h Heading) String() string {
	return [...]string{"east", "south", "west", "north"}[h]
}

// Right returns the heading a quarter turn clockwise.
func (h Heading) Right() Heading {
	return (h + 1) % 4
}

func (h Heading) delta() Point {
	return [...]Point{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}[h]
}

type Point struct {
	X, Y int
}

func (p Point) add(o Point) Point {
	return Point{p.X + o.X, p.Y + o.Y}
}

// Arena is a rectangular grid. Cells outside the grid count as walls.
type Arena struct {
	Width, Height int
	Walls         map[Point]bool
	Start         Point
	Heading       Heading
	Goal          Point
	MaxSteps      int
}

// Cornered is an empty room: start in the top-left corner facing east,
// the goal waits in the opposite corner.
func Cornered() Arena {
	const w, h = 20, 13
	a := Arena{
		Width:    w,
		Height:   h,
		Walls:    make(map[Point]bool),
		Start:    Point{1, 1},
		Heading:  East,
		Goal:     Point{w - 2, h - 2},
		MaxSteps: DefaultMaxSteps,
	}
	for x := 0; x < w; x++ {
		a.Walls[Point{x, 0}] = true
		a.Walls[Point{x, h - 1}] = true
	}
	for y := 0; y < h; y++ {
		a.Walls[Point{0, y}] = true
		a.Walls[Point{w - 1, y}] = true
	}
	return a
}

// ParseArena reads a map drawn with '#' for walls, 'S' for the start
// (facing east) and 'G' for the goal. Any other rune is floor.
func ParseArena(text string) (Arena, error) {
	a := Arena{Walls: make(map[Point]bool), MaxSteps: DefaultMaxSteps}
	var start, goal bool
	lines := strings.Split(strings.Trim(text, "\n"), "\n")
	for y, line := range lines {
		for x, r := range []rune(line) {
			p := Point{x, y}
			switch r {
			case '#':
				a.Walls[p] = true
			case 'S':
				a.Start, start = p, true
			case 'G':
				a.Goal, goal = p, true
			}
			a.Width = max(a.Width, x+1)
		}
	}
	a.Height = len(lines)
	if !start || !goal {
		return Arena{}, fmt.Errorf("robot: arena needs both S and G")
	}
	return a, nil
}

// Blocked reports whether p is a wall or off the grid.
func (a Arena) Blocked(p Point) bool {
	return p.X < 0 || p.Y < 0 || p.X >= a.Width || p.Y >= a.Height || a.Walls[p]
}

// Robot implements world.Domain for an arena.
type Robot struct {
	arena   Arena
	pos     Point
	heading Heading
	steps   int
}

var _ world.Domain = (*Robot)(nil)

func New(arena Arena) *Robot {
	if arena.MaxSteps <= 0 {
		arena.MaxSteps = DefaultMaxSteps
	}
	return &Robot{arena: arena, pos: arena.Start, heading: arena.Heading}
}

func (r *Robot) OnReset(io *world.IO) {
	r.pos = r.arena.Start
	r.heading = r.arena.Heading
	r.steps = 0
	io.SetSensor(SensorObstacle, r.obstacle())
}

// OnStep turns first, then moves forward unless blocked.
func (r *Robot) OnStep(io *world.IO) {
	r.steps++
	if io.Actuator(ActuatorTurn) {
		r.heading = r.heading.Right()
	}
	if io.Actuator(ActuatorForward) && !r.obstacle() {
		r.pos = r.ahead()
	}
	io.SetSensor(SensorObstacle, r.obstacle())
}

func (r *Robot) Status() world.Status {
	won := r.pos == r.arena.Goal
	return world.Status{
		Done: won || r.steps >= r.arena.MaxSteps,
		Details: map[string]any{
			"won":     won,
			"x":       r.pos.X,
			"y":       r.pos.Y,
			"heading": r.heading.String(),
			"steps":   r.steps,
		},
	}
}

// Render draws the arena with the robot as an arrow.
func (r *Robot) Render() string {
	var sb strings.Builder
	for y := 0; y < r.arena.Height; y++ {
		for x := 0; x < r.arena.Width; x++ {
			p := Point{x, y}
			switch {
			case p == r.pos:
				sb.WriteRune([...]rune{'>', 'v', '<', '^'}[r.heading])
			case r.arena.Walls[p]:
				sb.WriteByte('#')
			case p == r.arena.Goal:
				sb.WriteByte('G')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (r *Robot) ahead() Point {
	return r.pos.add(r.heading.delta())
}

func (r *Robot) obstacle() bool {
	return r.arena.Blocked(r.ahead())
}
