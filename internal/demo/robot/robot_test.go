package robot_test

import (
	"testing"
	"time"

	"github.com/aretw0/automata/internal/demo/robot"
	"github.com/aretw0/automata/internal/testutils"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWallFollower_SolvesCornered(t *testing.T) {
	clock := testutils.NewManualClock()
	r := robot.New(robot.Cornered())
	w := world.New(robot.Layout(), world.WithDomain(r), world.WithClock(clock))

	_, err := w.Load(robot.WallFollower())
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, w.TimeStep())

	var done []world.Status
	w.AddListener(domain.EventDone, func(e domain.Event) {
		done = append(done, e.Payload.(world.Status))
	})

	w.Start()
	clock.Advance(10 * time.Second)

	require.Len(t, done, 1)
	assert.False(t, w.IsRunning(), "done pauses the world")
	assert.Equal(t, true, done[0].Details["won"])
	// 17 cells east, one turn, 10 cells south
	assert.Equal(t, 28, done[0].Details["steps"])
	assert.Equal(t, "south", done[0].Details["heading"])
	assert.Equal(t, 0, clock.Pending())
}

func TestRobot_StepLimit(t *testing.T) {
	arena, err := robot.ParseArena(`
#####
#S.G#
#####
`)
	require.NoError(t, err)
	arena.MaxSteps = 3

	r := robot.New(arena)
	w := world.New(robot.Layout(), world.WithDomain(r))
	// a machine that only ever turns
	w.Edit(func(m *domain.StateMachine) {
		s := m.CreateState()
		m.CreateTransition(s, s).SetOutputs(domain.Bits{domain.Zero, domain.One})
	})
	w.Reset()

	for i := 0; i < 3; i++ {
		w.StepOnce()
	}
	st := w.Status()
	assert.True(t, st.Done)
	assert.Equal(t, false, st.Details["won"])
	assert.Equal(t, 1, st.Details["x"])
	assert.Equal(t, "north", st.Details["heading"])
}

func TestRobot_BlockedForwardDoesNotMove(t *testing.T) {
	arena, err := robot.ParseArena(`
###
#S#
#G#
###
`)
	require.NoError(t, err)
	r := robot.New(arena)
	io := &world.IO{Layout: robot.Layout(), Sensors: domain.ZeroBits(1), Actuators: domain.ZeroBits(2)}

	r.OnReset(io)
	assert.True(t, io.Sensor(robot.SensorObstacle), "facing the east wall")

	io.Actuators = domain.Bits{domain.One, domain.Zero}
	r.OnStep(io)
	assert.Equal(t, 1, r.Status().Details["y"])

	// turn and move in the same tick
	io.Actuators = domain.Bits{domain.One, domain.One}
	r.OnStep(io)
	st := r.Status()
	assert.True(t, st.Done)
	assert.Equal(t, true, st.Details["won"])
	assert.True(t, io.Sensor(robot.SensorObstacle))
}

func TestParseArena(t *testing.T) {
	_, err := robot.ParseArena("#S#")
	assert.Error(t, err)

	a := robot.Cornered()
	assert.True(t, a.Blocked(robot.Point{X: 0, Y: 5}))
	assert.True(t, a.Blocked(robot.Point{X: -1, Y: 5}))
	assert.False(t, a.Blocked(a.Start))
	assert.Equal(t, robot.Point{X: 18, Y: 11}, a.Goal)
}

func TestRender(t *testing.T) {
	arena, err := robot.ParseArena("####\n#SG#\n####")
	require.NoError(t, err)
	r := robot.New(arena)
	assert.Equal(t, "####\n#>G#\n####\n", r.Render())
}
