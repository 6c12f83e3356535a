package systems

import (
	"math"

	"github.com/pthm-cable/predprey/components"
	"github.com/pthm-cable/predprey/config"
)

// Bounds represents the simulation bounds.
type Bounds struct {
	Width, Height float64
}

// Move advances one agent by one tick.
//
// Velocity ramps up by the species acceleration and is clamped to
// [MinSpeed, MaxSpeed]. speedFactor scales only the displacement, so a
// slowed predator keeps its cruise velocity. Walls reflect: crossing a
// vertical wall mirrors the heading horizontally (pi - dir), crossing a
// horizontal wall mirrors it vertically (-dir), and the position is clamped
// back into bounds.
func Move(pos *components.Position, m *components.Motion, sp config.SpeciesConfig, speedFactor float64, b Bounds) {
	m.Velocity = clamp(m.Velocity+sp.Acceleration, sp.MinSpeed, sp.MaxSpeed)

	step := m.Velocity * speedFactor
	pos.X += math.Cos(m.Direction) * step
	pos.Y += math.Sin(m.Direction) * step

	if pos.X < 0 || pos.X > b.Width {
		m.Direction = math.Pi - m.Direction
		pos.X = clamp(pos.X, 0, b.Width)
	}
	if pos.Y < 0 || pos.Y > b.Height {
		m.Direction = -m.Direction
		pos.Y = clamp(pos.Y, 0, b.Height)
	}
}

// Steer applies a controller decision: out[0] turns the heading by
// out[0]*turn - turn/2, out[1] sets velocity to out[1]*maxSpeed.
func Steer(m *components.Motion, out0, out1 float64, sp config.SpeciesConfig) {
	m.Direction += out0*sp.TurnAngle - sp.TurnAngle/2
	m.Velocity = clamp(out1*sp.MaxSpeed, 0, sp.MaxSpeed)
}

// Reverse turns the heading around.
func Reverse(m *components.Motion) {
	m.Direction += math.Pi
}

// MovementCost returns the per-tick energy cost of moving at velocity.
func MovementCost(sp config.SpeciesConfig, velocity float64) float64 {
	return sp.BaseCost + sp.MoveCost*velocity
}
